package players

import (
	"time"

	"github.com/teamspace/presence/protocol"
)

// Player is the reconciled view of one remote participant. Identity
// fields are set once at join and never change; spatial fields track the
// last received broadcast only.
type Player struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	IsAdmin     bool

	Position    protocol.Vector3
	Rotation    protocol.Rotation
	CurrentZone string
	IsMoving    bool
	Equipment   protocol.Equipment

	LastUpdate time.Time
}

func fromRecord(rec protocol.PlayerRecord, now time.Time) *Player {
	return &Player{
		ID:          rec.ID,
		Username:    rec.Username,
		DisplayName: rec.DisplayName,
		AvatarURL:   rec.AvatarURL,
		IsAdmin:     rec.IsAdmin,
		Position:    rec.Position,
		Rotation:    rec.Rotation,
		CurrentZone: rec.CurrentZone,
		IsMoving:    rec.IsMoving,
		Equipment:   protocol.NormalizeEquipment(rec.Equipment),
		LastUpdate:  now,
	}
}

func (p *Player) clone() Player {
	out := *p
	out.Equipment = protocol.CloneEquipment(p.Equipment)
	return out
}

// Map is the data structure maintaining player IDs to players
type Map map[string]*Player

// Add adds a player to the Map
func (m Map) Add(p *Player) {
	m[p.ID] = p
}

// Del deletes a player from the Map
func (m Map) Del(id string) {
	delete(m, id)
}

// Get returns the player of specified ID in the Map
func (m Map) Get(id string) *Player {
	return m[id]
}

// Keys return keys of the Map in a slice
func (m Map) Keys() (keys []string) {
	for id := range m {
		keys = append(keys, id)
	}
	return
}
