package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/teamspace/presence/constants"
)

// envelope is the minimal shape every message shares.
type envelope struct {
	Type string `json:"type"`
}

// Encode serializes a message for the wire.
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode presence message: %w", err)
	}
	return data, nil
}

// Decode parses one inbound server message into its concrete type.
// Malformed payloads yield constants.ErrInvalidMessage, unrecognized
// discriminators yield constants.ErrUnknownMessageType. Decode never
// panics on hostile input.
func Decode(data []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidMessage, err)
	}

	var msg interface{}
	switch env.Type {
	case TypePlayersSnapshot:
		msg = &PlayersSnapshot{}
	case TypePlayerJoined:
		msg = &PlayerJoined{}
	case TypePlayerLeft:
		msg = &PlayerLeft{}
	case TypePositionBroadcast:
		msg = &PositionBroadcast{}
	case TypeEquipmentBroadcast:
		msg = &EquipmentBroadcast{}
	case TypeSpawnPreferenceUpdated:
		msg = &SpawnPreferenceUpdated{}
	case TypeTeleportResult:
		msg = &TeleportResult{}
	case TypeError:
		msg = &ServerError{}
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownMessageType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %s", constants.ErrInvalidMessage, env.Type, err)
	}
	return msg, nil
}
