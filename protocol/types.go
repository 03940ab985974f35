package protocol

// Vector3 is a position in world space.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is an avatar orientation in degrees.
type Rotation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Equipment maps an equip slot to the equipped item id. An unequipped
// slot carries an explicit nil, never a missing key.
type Equipment map[string]*string

// EquipSlots is the canonical slot set every equipment map covers.
var EquipSlots = []string{"head", "torso", "left_hand", "right_hand", "back"}

// NormalizeEquipment returns a copy of e covering every canonical slot,
// filling absent slots with nil. A nil input yields an all-empty map.
func NormalizeEquipment(e Equipment) Equipment {
	out := make(Equipment, len(EquipSlots))
	for _, slot := range EquipSlots {
		out[slot] = nil
	}
	for slot, item := range e {
		out[slot] = item
	}
	return out
}

// CloneEquipment returns a deep copy of e.
func CloneEquipment(e Equipment) Equipment {
	out := make(Equipment, len(e))
	for slot, item := range e {
		if item != nil {
			v := *item
			out[slot] = &v
		} else {
			out[slot] = nil
		}
	}
	return out
}

// PlayerRecord is the full remote participant record carried by
// players_snapshot and player_joined.
type PlayerRecord struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	IsAdmin     bool      `json:"is_admin"`
	Position    Vector3   `json:"position"`
	Rotation    Rotation  `json:"rotation"`
	CurrentZone string    `json:"current_zone"`
	IsMoving    bool      `json:"is_moving"`
	Equipment   Equipment `json:"equipment"`
}
