package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamspace/presence/constants"
)

func TestDecodeDispatchesByType(t *testing.T) {
	t.Parallel()

	tables := map[string]struct {
		payload string
		check   func(t *testing.T, msg interface{})
	}{
		"players_snapshot": {
			payload: `{"type":"players_snapshot","players":[{"id":"u2","display_name":"Bea","current_zone":"lobby"}]}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*PlayersSnapshot)
				assert.True(t, ok)
				assert.Len(t, m.Players, 1)
				assert.Equal(t, "u2", m.Players[0].ID)
				assert.Equal(t, "lobby", m.Players[0].CurrentZone)
			},
		},
		"player_joined": {
			payload: `{"type":"player_joined","player":{"id":"u3","is_admin":true}}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*PlayerJoined)
				assert.True(t, ok)
				assert.Equal(t, "u3", m.Player.ID)
				assert.True(t, m.Player.IsAdmin)
			},
		},
		"player_left": {
			payload: `{"type":"player_left","player_id":"u2"}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*PlayerLeft)
				assert.True(t, ok)
				assert.Equal(t, "u2", m.PlayerID)
			},
		},
		"position_broadcast": {
			payload: `{"type":"position_broadcast","player_id":"u2","position":{"x":1,"y":2,"z":3},"rotation":{"yaw":90,"pitch":-10},"current_zone":"atrium","is_moving":true}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*PositionBroadcast)
				assert.True(t, ok)
				assert.Equal(t, Vector3{X: 1, Y: 2, Z: 3}, m.Position)
				assert.Equal(t, Rotation{Yaw: 90, Pitch: -10}, m.Rotation)
				assert.True(t, m.IsMoving)
			},
		},
		"equipment_broadcast": {
			payload: `{"type":"equipment_broadcast","player_id":"u2","equipment":{"head":"hat-42","left_hand":null}}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*EquipmentBroadcast)
				assert.True(t, ok)
				assert.Equal(t, "hat-42", *m.Equipment["head"])
				assert.Nil(t, m.Equipment["left_hand"])
			},
		},
		"spawn_preference_updated": {
			payload: `{"type":"spawn_preference_updated","success":true,"project_slug":"atlas"}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*SpawnPreferenceUpdated)
				assert.True(t, ok)
				assert.True(t, m.Success)
				assert.Equal(t, "atlas", *m.ProjectSlug)
			},
		},
		"teleport_result_failure": {
			payload: `{"type":"teleport_result","success":false,"error":"no such room"}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*TeleportResult)
				assert.True(t, ok)
				assert.False(t, m.Success)
				assert.Equal(t, "no such room", *m.Error)
				assert.Nil(t, m.Destination)
			},
		},
		"error": {
			payload: `{"type":"error","message":"rate limited"}`,
			check: func(t *testing.T, msg interface{}) {
				m, ok := msg.(*ServerError)
				assert.True(t, ok)
				assert.Equal(t, "rate limited", m.Message)
			},
		},
	}

	for name, table := range tables {
		table := table
		t.Run(name, func(t *testing.T) {
			msg, err := Decode([]byte(table.payload))
			assert.NoError(t, err)
			table.check(t, msg)
		})
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrInvalidMessage))
}

func TestDecodeWrongFieldShape(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type":"player_left","player_id":42}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrInvalidMessage))
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type":"ping"}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrUnknownMessageType))
}

func TestEncodeJoinRoundTrip(t *testing.T) {
	t.Parallel()

	slug := "atlas"
	join := &Join{
		Type:            TypeJoin,
		UserID:          "u1",
		Username:        "ada",
		DisplayName:     "Ada",
		AvatarURL:       "https://cdn/avatars/ada.png",
		IsAdmin:         false,
		Equipment:       NormalizeEquipment(nil),
		SpawnPreference: &slug,
	}
	data, err := Encode(join)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"type":"join"`)
	assert.Contains(t, string(data), `"user_id":"u1"`)
	assert.Contains(t, string(data), `"spawn_preference":"atlas"`)
}

func TestNormalizeEquipmentCoversAllSlots(t *testing.T) {
	t.Parallel()

	hat := "hat-42"
	e := NormalizeEquipment(Equipment{"head": &hat})
	assert.Len(t, e, len(EquipSlots))
	for _, slot := range EquipSlots {
		_, present := e[slot]
		assert.True(t, present, "slot %s missing", slot)
	}
	assert.Equal(t, "hat-42", *e["head"])
	assert.Nil(t, e["torso"])
}

func TestCloneEquipmentIsDeep(t *testing.T) {
	t.Parallel()

	hat := "hat-42"
	src := Equipment{"head": &hat, "torso": nil}
	dst := CloneEquipment(src)

	hat = "hat-1"
	assert.Equal(t, "hat-42", *dst["head"])
	assert.Nil(t, dst["torso"])
}
