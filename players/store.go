package players

import (
	"sync"
	"time"

	"github.com/teamspace/presence/logger"
	"github.com/teamspace/presence/metrics"
	"github.com/teamspace/presence/protocol"
)

// Store holds the reconciled state of every remote participant on the
// session. Mutation happens on the session dispatch goroutine and the
// reaper only; renderers read copies through Snapshot and Get.
type Store struct {
	mu      sync.RWMutex
	localID string
	players Map

	reporters []metrics.Reporter
	eventLog  *logger.EventLog

	reaperMu   sync.Mutex
	reaperStop chan struct{}
}

// NewStore creates an empty store. reporters may be nil.
func NewStore(reporters []metrics.Reporter, eventLog *logger.EventLog) *Store {
	return &Store{
		players:   Map{},
		reporters: reporters,
		eventLog:  eventLog,
	}
}

// Bind records the local participant id so every reconciliation path can
// filter self-referential messages. Called once per connection, before
// any inbound message is applied.
func (s *Store) Bind(localID string) {
	s.mu.Lock()
	s.localID = localID
	s.mu.Unlock()
}

// LocalID returns the currently bound local participant id.
func (s *Store) LocalID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localID
}

// ApplySnapshot replaces the whole store with the given records. Entries
// carrying the local id are excluded even if the server failed to.
func (s *Store) ApplySnapshot(records []protocol.PlayerRecord) {
	now := time.Now()
	s.mu.Lock()
	s.players = make(Map, len(records))
	for _, rec := range records {
		if rec.ID == s.localID || rec.ID == "" {
			continue
		}
		s.players.Add(fromRecord(rec, now))
	}
	count := len(s.players)
	s.mu.Unlock()

	s.reportCount(count)
	logger.Debugf("players: applied snapshot with %d remote players", count)
}

// ApplyJoined inserts (or overwrites) the entry for a joining
// participant. A join echoing the local id is suppressed.
func (s *Store) ApplyJoined(rec protocol.PlayerRecord) bool {
	s.mu.Lock()
	if rec.ID == s.localID || rec.ID == "" {
		s.mu.Unlock()
		s.dropped("self")
		return false
	}
	s.players.Add(fromRecord(rec, time.Now()))
	count := len(s.players)
	s.mu.Unlock()

	s.reportCount(count)
	s.eventLog.Record("player_joined", rec.ID, "zone="+rec.CurrentZone)
	return true
}

// ApplyLeft removes the entry for the given id. Unknown ids are a no-op.
func (s *Store) ApplyLeft(id string) bool {
	s.mu.Lock()
	if s.players.Get(id) == nil {
		s.mu.Unlock()
		return false
	}
	s.players.Del(id)
	count := len(s.players)
	s.mu.Unlock()

	s.reportCount(count)
	s.eventLog.Record("player_left", id, "")
	return true
}

// ApplyPosition updates the spatial fields of an existing entry. Updates
// for the local id or an unknown id are dropped, the store never
// fabricates an entry from a position broadcast alone.
func (s *Store) ApplyPosition(msg *protocol.PositionBroadcast) bool {
	s.mu.Lock()
	if msg.PlayerID == s.localID {
		s.mu.Unlock()
		s.dropped("self")
		return false
	}
	p := s.players.Get(msg.PlayerID)
	if p == nil {
		s.mu.Unlock()
		s.dropped("unknown_id")
		return false
	}
	p.Position = msg.Position
	p.Rotation = msg.Rotation
	p.CurrentZone = msg.CurrentZone
	p.IsMoving = msg.IsMoving
	p.LastUpdate = time.Now()
	s.mu.Unlock()
	return true
}

// ApplyEquipment updates only the equipment map of an existing entry,
// with the same self and unknown-id filtering as position broadcasts.
func (s *Store) ApplyEquipment(msg *protocol.EquipmentBroadcast) bool {
	s.mu.Lock()
	if msg.PlayerID == s.localID {
		s.mu.Unlock()
		s.dropped("self")
		return false
	}
	p := s.players.Get(msg.PlayerID)
	if p == nil {
		s.mu.Unlock()
		s.dropped("unknown_id")
		return false
	}
	p.Equipment = protocol.NormalizeEquipment(msg.Equipment)
	p.LastUpdate = time.Now()
	s.mu.Unlock()
	return true
}

// Get returns a copy of the entry for id.
func (s *Store) Get(id string) (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.players.Get(id)
	if p == nil {
		return Player{}, false
	}
	return p.clone(), true
}

// Snapshot returns copies of every entry, for renderers to iterate
// without holding any store lock.
func (s *Store) Snapshot() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.clone())
	}
	return out
}

// Count returns the number of remote participants.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Clear empties the store and unbinds the local id. Called on every
// disconnect, a closed connection never leaves stale remote state.
func (s *Store) Clear() {
	s.mu.Lock()
	s.players = Map{}
	s.localID = ""
	s.mu.Unlock()
	s.reportCount(0)
}

// StartReaper begins periodically removing entries whose LastUpdate is
// older than timeout, covering peers that dropped without a clean leave.
func (s *Store) StartReaper(interval, timeout time.Duration) {
	s.reaperMu.Lock()
	defer s.reaperMu.Unlock()
	if s.reaperStop != nil {
		return
	}
	s.reaperStop = make(chan struct{})
	go s.reapLoop(interval, timeout, s.reaperStop)
}

// StopReaper stops the reaper goroutine. Safe to call when the reaper
// was never started.
func (s *Store) StopReaper() {
	s.reaperMu.Lock()
	defer s.reaperMu.Unlock()
	if s.reaperStop != nil {
		close(s.reaperStop)
		s.reaperStop = nil
	}
}

func (s *Store) reapLoop(interval, timeout time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, id := range s.reap(timeout) {
				logger.Warnf("players: reaped stale player %s", id)
				s.eventLog.Record("player_reaped", id, "")
			}
		case <-stop:
			return
		}
	}
}

func (s *Store) reap(timeout time.Duration) []string {
	deadline := time.Now().Add(-timeout)
	var reaped []string
	s.mu.Lock()
	for id, p := range s.players {
		if p.LastUpdate.Before(deadline) {
			s.players.Del(id)
			reaped = append(reaped, id)
		}
	}
	count := len(s.players)
	s.mu.Unlock()

	if len(reaped) > 0 {
		s.reportCount(count)
		metrics.ReportCount(s.reporters, metrics.ReapedPlayers, map[string]string{}, float64(len(reaped)))
	}
	return reaped
}

func (s *Store) reportCount(count int) {
	metrics.ReportGauge(s.reporters, metrics.RemotePlayerCount, map[string]string{}, float64(count))
}

func (s *Store) dropped(reason string) {
	metrics.ReportCount(s.reporters, metrics.DroppedUpdates, map[string]string{"reason": reason}, 1)
}
