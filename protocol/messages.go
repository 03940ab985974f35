package protocol

// Client to server message types
const (
	TypeJoin               = "join"
	TypeLeave              = "leave"
	TypePositionUpdate     = "position_update"
	TypeEquipmentUpdate    = "equipment_update"
	TypeSetSpawnPreference = "set_spawn_preference"
	TypeTeleport           = "teleport"
)

// Server to client message types
const (
	TypePlayersSnapshot        = "players_snapshot"
	TypePlayerJoined           = "player_joined"
	TypePlayerLeft             = "player_left"
	TypePositionBroadcast      = "position_broadcast"
	TypeEquipmentBroadcast     = "equipment_broadcast"
	TypeSpawnPreferenceUpdated = "spawn_preference_updated"
	TypeTeleportResult         = "teleport_result"
	TypeError                  = "error"
)

// Join announces the local participant and its starting equipment.
type Join struct {
	Type            string    `json:"type"`
	UserID          string    `json:"user_id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	AvatarURL       string    `json:"avatar_url"`
	IsAdmin         bool      `json:"is_admin"`
	Equipment       Equipment `json:"equipment"`
	SpawnPreference *string   `json:"spawn_preference"`
}

// Leave is the best-effort goodbye sent before closing the connection.
type Leave struct {
	Type string `json:"type"`
}

// PositionUpdate carries the local avatar's spatial state.
type PositionUpdate struct {
	Type        string   `json:"type"`
	Position    Vector3  `json:"position"`
	Rotation    Rotation `json:"rotation"`
	CurrentZone string   `json:"current_zone"`
	IsMoving    bool     `json:"is_moving"`
}

// EquipmentUpdate carries the local avatar's full equipment map.
type EquipmentUpdate struct {
	Type      string    `json:"type"`
	Equipment Equipment `json:"equipment"`
}

// SetSpawnPreference asks the server to remember a preferred spawn zone.
// A nil ProjectSlug clears the preference.
type SetSpawnPreference struct {
	Type        string  `json:"type"`
	ProjectSlug *string `json:"project_slug"`
}

// Teleport asks the server to move the local avatar to a named
// destination. The position change, if granted, arrives later as a
// regular position_broadcast.
type Teleport struct {
	Type        string `json:"type"`
	Destination string `json:"destination"`
}

// PlayersSnapshot fully replaces the remote participant view.
type PlayersSnapshot struct {
	Type    string         `json:"type"`
	Players []PlayerRecord `json:"players"`
}

// PlayerJoined announces one participant entering the space.
type PlayerJoined struct {
	Type   string       `json:"type"`
	Player PlayerRecord `json:"player"`
}

// PlayerLeft announces one participant leaving the space.
type PlayerLeft struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

// PositionBroadcast is a partial update of one participant's spatial
// state.
type PositionBroadcast struct {
	Type        string   `json:"type"`
	PlayerID    string   `json:"player_id"`
	Position    Vector3  `json:"position"`
	Rotation    Rotation `json:"rotation"`
	CurrentZone string   `json:"current_zone"`
	IsMoving    bool     `json:"is_moving"`
}

// EquipmentBroadcast is a partial update of one participant's equipment.
type EquipmentBroadcast struct {
	Type      string    `json:"type"`
	PlayerID  string    `json:"player_id"`
	Equipment Equipment `json:"equipment"`
}

// SpawnPreferenceUpdated acknowledges a set_spawn_preference command.
type SpawnPreferenceUpdated struct {
	Type        string  `json:"type"`
	Success     bool    `json:"success"`
	ProjectSlug *string `json:"project_slug"`
}

// TeleportResult acknowledges a teleport command.
type TeleportResult struct {
	Type        string  `json:"type"`
	Success     bool    `json:"success"`
	Destination *string `json:"destination,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// ServerError is a server-reported protocol error. It does not
// terminate the session.
type ServerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
