package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostChecks(t *testing.T) {
	r := &Room{
		ID:   "abc123",
		Host: "alice",
		Players: []Player{
			{UserID: "alice"},
			{UserID: "bob"},
		},
		CurrentPlayers: 2,
		MaxPlayers:     2,
	}

	assert.True(t, r.IsHost("alice"))
	assert.False(t, r.IsHost("bob"))
	assert.False(t, r.IsHost(""), "missing identity never passes the host check")

	assert.True(t, r.HasPlayer("bob"))
	assert.False(t, r.HasPlayer("carol"))

	assert.True(t, r.IsFull())
}
