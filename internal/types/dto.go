package types

type LoginRequest struct {
	Credential string `json:"credential"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

type PlayerInfo struct {
	UserID UserID `json:"user_id"`
	Name   string `json:"name"`
}

type RoomInfoResponse struct {
	RoomName       string       `json:"room_name"`
	Host           UserID       `json:"host"`
	Players        []PlayerInfo `json:"players"`
	CurrentPlayers int          `json:"current_players"`
	MaxPlayers     int          `json:"max_players"`
}

type RoomSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Host           UserID `json:"host"`
	CurrentPlayers int    `json:"current_players"`
	MaxPlayers     int    `json:"max_players"`
}

type RoomListResponse struct {
	Rooms      []RoomSummary `json:"rooms"`
	TotalPages int           `json:"total_pages"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
