package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Hyun-hyo-min/QuickDraw/internal/models"
	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

var (
	ErrNotFound      = errors.New("room not found")
	ErrForbidden     = errors.New("not authorized")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("user already in a room")
	ErrUnauthorized  = errors.New("credential rejected")
)

// CredentialSource supplies the bearer token attached to every request.
type CredentialSource interface {
	Credential() (string, bool)
}

type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("room service returned %d: %s", e.Status, e.Detail)
}

// Client speaks the room service REST API. All side effects live on the
// service side; the client keeps no cache.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

func NewClient(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
	}
}

func (c *Client) Login(ctx context.Context, credential string) (string, error) {
	var out types.LoginResponse
	err := c.do(ctx, http.MethodPost, "/users/login", types.LoginRequest{Credential: credential}, &out)
	if err != nil {
		return "", mapCommon(err)
	}
	log.Println("[GATEWAY] Login succeeded")
	return out.AccessToken, nil
}

func (c *Client) ListRooms(ctx context.Context, page, pageSize int) (*types.RoomListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out types.RoomListResponse
	err := c.do(ctx, http.MethodGet, "/rooms?"+q.Encode(), nil, &out)
	if err != nil {
		return nil, mapCommon(err)
	}
	return &out, nil
}

func (c *Client) CreateRoom(ctx context.Context, name string) (string, error) {
	var out types.CreateRoomResponse
	err := c.do(ctx, http.MethodPost, "/rooms", types.CreateRoomRequest{RoomName: name}, &out)
	if err != nil {
		return "", mapCommon(err)
	}
	log.Printf("[GATEWAY] Room created: %s", out.RoomID)
	return out.RoomID, nil
}

func (c *Client) FetchRoom(ctx context.Context, id string) (*models.Room, error) {
	var out types.RoomInfoResponse
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, mapCommon(err)
	}

	room := &models.Room{
		ID:             id,
		Name:           out.RoomName,
		Host:           out.Host,
		CurrentPlayers: out.CurrentPlayers,
		MaxPlayers:     out.MaxPlayers,
	}
	for _, p := range out.Players {
		room.Players = append(room.Players, models.Player{UserID: p.UserID, Name: p.Name})
	}
	if room.CurrentPlayers == 0 {
		room.CurrentPlayers = len(room.Players)
	}
	return room, nil
}

func (c *Client) JoinRoom(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(id)+"/players", nil, nil)
	if err == nil {
		log.Printf("[GATEWAY] Joined room %s", id)
		return nil
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusConflict) {
		if strings.Contains(strings.ToLower(apiErr.Detail), "full") {
			return ErrRoomFull
		}
		return ErrAlreadyInRoom
	}
	return mapCommon(err)
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return mapCommon(err)
	}
	log.Printf("[GATEWAY] Room %s deleted", id)
	return nil
}

func (c *Client) QuitRoom(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(id)+"/players", nil, nil)
	if err != nil {
		return mapCommon(err)
	}
	log.Printf("[GATEWAY] Quit room %s", id)
	return nil
}

func (c *Client) FetchDrawHistory(ctx context.Context, id string) ([]types.DrawSegment, error) {
	var out []types.DrawSegment
	err := c.do(ctx, http.MethodGet, "/draw/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, mapCommon(err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.creds.Credential(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail := readDetail(resp.Body)
		log.Printf("[GATEWAY] %s %s failed: %d %s", method, path, resp.StatusCode, detail)
		return &apiError{Status: resp.StatusCode, Detail: detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var parsed types.ErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(raw))
}

func mapCommon(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return err
}
