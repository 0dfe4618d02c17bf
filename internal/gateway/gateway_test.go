package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

type staticCreds string

func (s staticCreds) Credential() (string, bool) {
	return string(s), s != ""
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.ErrorResponse{Detail: detail})
}

func TestFetchRoomDecodesDetails(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/rooms/abc123", r.URL.Path)
		json.NewEncoder(w).Encode(types.RoomInfoResponse{
			RoomName: "sketchpad",
			Host:     "alice",
			Players: []types.PlayerInfo{
				{UserID: "alice", Name: "Alice"},
				{UserID: "bob", Name: "Bob"},
			},
			MaxPlayers: 8,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	room, err := c.FetchRoom(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "abc123", room.ID)
	assert.Equal(t, "sketchpad", room.Name)
	assert.Equal(t, types.UserID("alice"), room.Host)
	assert.Equal(t, 2, room.CurrentPlayers)
	assert.True(t, room.IsHost("alice"))
	assert.False(t, room.IsHost("bob"))
	assert.True(t, room.HasPlayer("bob"))
}

func TestFetchRoomNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Room not found.")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds(""))
	_, err := c.FetchRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinRoomFullConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rooms/abc123/players", r.URL.Path)
		writeDetail(w, http.StatusBadRequest, "Room is full.")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	err := c.JoinRoom(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRoomAlreadyInRoomConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusBadRequest, "User already in the room.")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	err := c.JoinRoom(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestDeleteRoomForbiddenForNonHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusForbidden, "Not authorized to delete this room.")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	err := c.DeleteRoom(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnauthorizedMapsOnAnyCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusUnauthorized, "Signature has expired.")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("stale"))
	ctx := context.Background()

	_, err := c.FetchRoom(ctx, "abc123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = c.QuitRoom(ctx, "abc123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.ListRooms(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchDrawHistoryPreservesOrder(t *testing.T) {
	history := []types.DrawSegment{
		{X: 10, Y: 10, PrevX: 0, PrevY: 0},
		{X: 20, Y: 20, PrevX: 10, PrevY: 10},
		{X: 5, Y: 30, PrevX: 20, PrevY: 20},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/draw/abc123", r.URL.Path)
		json.NewEncoder(w).Encode(history)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	got, err := c.FetchDrawHistory(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, history, got)
}

func TestLoginReturnsAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/login", r.URL.Path)

		var req types.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "google-credential", req.Credential)

		json.NewEncoder(w).Encode(types.LoginResponse{AccessToken: "fresh-token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds(""))
	token, err := c.Login(context.Background(), "google-credential")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestListRoomsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("page_size"))
		json.NewEncoder(w).Encode(types.RoomListResponse{
			Rooms: []types.RoomSummary{
				{ID: "abc123", Name: "sketchpad", Host: "alice", CurrentPlayers: 2, MaxPlayers: 8},
			},
			TotalPages: 3,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	list, err := c.ListRooms(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalPages)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, "abc123", list.Rooms[0].ID)
}

func TestCreateRoomReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rooms", r.URL.Path)

		var req types.CreateRoomRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "sketchpad", req.RoomName)

		json.NewEncoder(w).Encode(types.CreateRoomResponse{RoomID: "abc123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticCreds("tok"))
	id, err := c.CreateRoom(context.Background(), "sketchpad")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}
