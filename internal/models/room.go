package models

import "github.com/Hyun-hyo-min/QuickDraw/internal/types"

type Player struct {
	UserID types.UserID `json:"user_id"`
	Name   string       `json:"name"`
}

// Room invariants: CurrentPlayers never exceeds MaxPlayers and the host is
// always a member. Both are enforced server-side; the client only reads.
type Room struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Host           types.UserID `json:"host"`
	Players        []Player     `json:"players"`
	CurrentPlayers int          `json:"current_players"`
	MaxPlayers     int          `json:"max_players"`
}

func (r *Room) IsHost(user types.UserID) bool {
	return user != "" && r.Host == user
}

func (r *Room) HasPlayer(user types.UserID) bool {
	for _, p := range r.Players {
		if p.UserID == user {
			return true
		}
	}
	return false
}

func (r *Room) IsFull() bool {
	return r.CurrentPlayers >= r.MaxPlayers
}
