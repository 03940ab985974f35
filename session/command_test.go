package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teamspace/presence/constants"
	"github.com/teamspace/presence/protocol"
)

func awaitTeleport(t *testing.T, ch <-chan *protocol.TeleportResult) (*protocol.TeleportResult, bool) {
	select {
	case res, ok := <-ch:
		return res, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for teleport result")
		return nil, false
	}
}

func awaitSpawnPref(t *testing.T, ch <-chan *protocol.SpawnPreferenceUpdated) (*protocol.SpawnPreferenceUpdated, bool) {
	select {
	case res, ok := <-ch:
		return res, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for spawn preference result")
		return nil, false
	}
}

func TestTeleportSuccess(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	ch, err := s.Teleport("workshop")
	assert.NoError(t, err)
	assert.Equal(t, 1, conn.countSent(protocol.TypeTeleport))

	dest := "workshop"
	conn.push(t, &protocol.TeleportResult{
		Type:        protocol.TypeTeleportResult,
		Success:     true,
		Destination: &dest,
	})

	res, ok := awaitTeleport(t, ch)
	assert.True(t, ok)
	assert.True(t, res.Success)
	assert.Equal(t, "workshop", *res.Destination)
}

func TestTeleportFailureReported(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	ch, err := s.Teleport("void")
	assert.NoError(t, err)

	reason := "no such room"
	conn.push(t, &protocol.TeleportResult{
		Type:    protocol.TypeTeleportResult,
		Success: false,
		Error:   &reason,
	})

	res, ok := awaitTeleport(t, ch)
	assert.True(t, ok)
	assert.False(t, res.Success)
	assert.Equal(t, "no such room", *res.Error)
	// A failed teleport leaves the session connected.
	assert.Equal(t, StatusJoined, s.Status())
}

func TestTeleportEmptyDestination(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	_, err := s.Teleport("")
	assert.Equal(t, constants.ErrEmptyDestination, err)
}

func TestTeleportWhileDisconnected(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	_, err := s.Teleport("workshop")
	assert.Equal(t, constants.ErrSessionNotConnected, err)
	assert.Empty(t, conn.sentTypes())
}

func TestSecondTeleportWhilePending(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	_, err := s.Teleport("workshop")
	assert.NoError(t, err)
	_, err = s.Teleport("atrium")
	assert.Equal(t, constants.ErrCommandPending, err)
	assert.Equal(t, 1, conn.countSent(protocol.TypeTeleport))
}

func TestPendingCommandsOfDifferentTypesCoexist(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	_, err := s.Teleport("workshop")
	assert.NoError(t, err)
	_, err = s.SetSpawnPreference(nil)
	assert.NoError(t, err)
}

func TestDisconnectFailsPendingCommand(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, nil)
	connect(t, s, "u1")

	ch, err := s.Teleport("workshop")
	assert.NoError(t, err)

	s.Disconnect()

	res, ok := awaitTeleport(t, ch)
	assert.False(t, ok)
	assert.Nil(t, res)
}

func TestSetSpawnPreferenceSuccessUpdatesCache(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()
	assert.Nil(t, s.SpawnPreference())

	slug := "atlas"
	ch, err := s.SetSpawnPreference(&slug)
	assert.NoError(t, err)
	assert.Equal(t, 1, conn.countSent(protocol.TypeSetSpawnPreference))

	conn.push(t, &protocol.SpawnPreferenceUpdated{
		Type:        protocol.TypeSpawnPreferenceUpdated,
		Success:     true,
		ProjectSlug: &slug,
	})

	res, ok := awaitSpawnPref(t, ch)
	assert.True(t, ok)
	assert.True(t, res.Success)
	assert.Equal(t, "atlas", *s.SpawnPreference())
}

func TestSetSpawnPreferenceFailureLeavesCache(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	slug := "atlas"
	ch, err := s.SetSpawnPreference(&slug)
	assert.NoError(t, err)

	conn.push(t, &protocol.SpawnPreferenceUpdated{
		Type:    protocol.TypeSpawnPreferenceUpdated,
		Success: false,
	})

	res, ok := awaitSpawnPref(t, ch)
	assert.True(t, ok)
	assert.False(t, res.Success)
	assert.Nil(t, s.SpawnPreference())
}

func TestUnsolicitedAcknowledgmentDropped(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	connect(t, s, "u1")
	defer s.Disconnect()

	// No command outstanding; the ack must not blow up the dispatch loop.
	conn.push(t, &protocol.TeleportResult{Type: protocol.TypeTeleportResult, Success: true})
	conn.push(t, &protocol.PlayerJoined{Type: protocol.TypePlayerJoined, Player: record("u2")})
	assert.Eventually(t, func() bool { return s.Store().Count() == 1 }, time.Second, time.Millisecond)
}

func TestServerErrorSurfacedToCallback(t *testing.T) {
	t.Parallel()

	s, conn := newTestSession(t, nil)
	errCh := make(chan error, 1)
	s.OnError(func(err error) { errCh <- err })

	connect(t, s, "u1")
	defer s.Disconnect()

	conn.push(t, &protocol.ServerError{Type: protocol.TypeError, Message: "rate limited"})

	select {
	case err := <-errCh:
		assert.EqualError(t, err, "rate limited")
	case <-time.After(time.Second):
		t.Fatal("error callback never fired")
	}
	assert.Equal(t, StatusJoined, s.Status())
}
