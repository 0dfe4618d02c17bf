package room

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/Hyun-hyo-min/QuickDraw/internal/canvas"
	"github.com/Hyun-hyo-min/QuickDraw/internal/chat"
	"github.com/Hyun-hyo-min/QuickDraw/internal/gateway"
	"github.com/Hyun-hyo-min/QuickDraw/internal/models"
	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

type State int

const (
	StateIdle State = iota
	StateReconciling
	StateFetchingRoom
	StateReady
	StateFailed
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReconciling:
		return "reconciling"
	case StateFetchingRoom:
		return "fetching_room"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

type Gateway interface {
	FetchRoom(ctx context.Context, id string) (*models.Room, error)
	FetchDrawHistory(ctx context.Context, id string) ([]types.DrawSegment, error)
	DeleteRoom(ctx context.Context, id string) error
	QuitRoom(ctx context.Context, id string) error
}

type SessionStore interface {
	RoomID() (string, bool)
	SetRoomID(id string) error
	ClearRoomID() error
	ClearCredential() error
}

type Channel interface {
	Send(types.Frame) error
	Close()
}

type Dialer interface {
	Dial(ctx context.Context, roomID string, user types.UserID, handler func(types.Frame)) (Channel, error)
}

type Navigator interface {
	ToRoom(id string)
	ToList()
	ToLogin()
}

// Controller drives one room visit through
// Idle -> Reconciling -> FetchingRoom -> {Ready | Failed} -> Closing.
// It owns its channel exclusively for the visit's lifetime and is the only
// writer of the session store while the visit lasts.
type Controller struct {
	gateway Gateway
	store   SessionStore
	surface *canvas.Surface
	chat    *chat.Buffer
	dialer  Dialer
	nav     Navigator
	user    types.UserID

	mu      sync.Mutex
	state   State
	roomID  string
	room    *models.Room
	channel Channel
	closed  bool
}

func NewController(gw Gateway, store SessionStore, surface *canvas.Surface, buffer *chat.Buffer, dialer Dialer, nav Navigator, user types.UserID) *Controller {
	return &Controller{
		gateway: gw,
		store:   store,
		surface: surface,
		chat:    buffer,
		dialer:  dialer,
		nav:     nav,
		user:    user,
		state:   StateIdle,
	}
}

// Enter reconciles the requested room against the stored one and, if they
// agree, brings the session up: room details, history replay, then the live
// channel. The stored room always wins a disagreement; the requested room
// is never fetched in that case.
func (c *Controller) Enter(ctx context.Context, requested string) error {
	c.setState(StateReconciling)

	stored, ok := c.store.RoomID()
	if ok && stored != requested {
		log.Printf("[ROOM] Session pinned to room %s, redirecting away from %s", stored, requested)
		c.nav.ToRoom(stored)
		return nil
	}
	if !ok {
		if err := c.store.SetRoomID(requested); err != nil {
			log.Printf("[ROOM] Failed to persist room id: %v", err)
		}
	}

	c.mu.Lock()
	c.roomID = requested
	c.mu.Unlock()

	c.setState(StateFetchingRoom)
	room, err := c.gateway.FetchRoom(ctx, requested)
	if err != nil {
		return c.fail(err)
	}

	history, err := c.gateway.FetchDrawHistory(ctx, requested)
	if err != nil {
		return c.fail(err)
	}

	// A completion landing after teardown must not touch the surface.
	if c.isClosed() {
		return nil
	}
	c.surface.ReplayHistory(history)

	ch, err := c.dialer.Dial(ctx, requested, c.user, c.dispatch)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ch.Close()
		return nil
	}
	c.channel = ch
	c.room = room
	c.state = StateReady
	c.mu.Unlock()

	c.chat.Attach(ch)
	log.Printf("[ROOM] Session ready in room %s (%d/%d players)", requested, room.CurrentPlayers, room.MaxPlayers)
	return nil
}

// PointerDown anchors the next local stroke.
func (c *Controller) PointerDown(p canvas.Point) {
	c.surface.PointerDown(p)
}

// PointerMove paints locally and ships the resulting segment. The local
// stroke is drawn even when the channel is down, mirroring a canvas that
// keeps working after the socket dies.
func (c *Controller) PointerMove(p canvas.Point, pressed bool) {
	seg, ok := c.surface.PointerMove(p, pressed)
	if !ok {
		return
	}

	ch := c.currentChannel()
	if ch == nil {
		return
	}
	if err := ch.Send(types.NewDrawFrame(seg)); err != nil {
		log.Printf("[ROOM] Draw frame not sent: %v", err)
	}
}

func (c *Controller) SendChat(text string) {
	c.chat.Send(text)
}

// Quit leaves the room: local session state is cleared before the service
// call, and the user lands on the room list whatever that call returns.
func (c *Controller) Quit(ctx context.Context) {
	roomID := c.teardown()
	if err := c.store.ClearRoomID(); err != nil {
		log.Printf("[ROOM] Failed to clear stored room: %v", err)
	}
	if err := c.gateway.QuitRoom(ctx, roomID); err != nil {
		log.Printf("[ROOM] Quit call failed (local session already cleared): %v", err)
	}
	c.nav.ToList()
}

// Delete destroys the room. Host-only server-side; same optimistic local
// cleanup as Quit.
func (c *Controller) Delete(ctx context.Context) {
	roomID := c.teardown()
	if err := c.store.ClearRoomID(); err != nil {
		log.Printf("[ROOM] Failed to clear stored room: %v", err)
	}
	if err := c.gateway.DeleteRoom(ctx, roomID); err != nil {
		log.Printf("[ROOM] Delete call failed (local session already cleared): %v", err)
	}
	c.nav.ToList()
}

// Close tears the session down without quitting: the stored room survives
// so a reload can auto-rejoin. Idempotent.
func (c *Controller) Close() {
	c.teardown()
}

// CanDelete reports whether the delete control should be shown. An unknown
// identity degrades to the non-privileged answer.
func (c *Controller) CanDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room != nil && c.room.IsHost(c.user)
}

func (c *Controller) Room() *models.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// dispatch routes incoming frames by tag. It runs on the channel's single
// delivery goroutine, so frames land in receipt order.
func (c *Controller) dispatch(f types.Frame) {
	if c.isClosed() {
		return
	}

	switch f.Type {
	case types.FrameDraw:
		c.surface.ApplyRemote(f.Segment())
	case types.FrameChat:
		c.chat.Append(f.User, f.Message)
	default:
		log.Printf("[ROOM] Dropping frame with unknown type %q", f.Type)
	}
}

func (c *Controller) fail(err error) error {
	c.setState(StateFailed)

	if errors.Is(err, gateway.ErrUnauthorized) {
		log.Printf("[ROOM] Credential rejected, forcing logout")
		if clearErr := c.store.ClearCredential(); clearErr != nil {
			log.Printf("[ROOM] Failed to clear credential: %v", clearErr)
		}
		c.nav.ToLogin()
		return err
	}

	log.Printf("[ROOM] Session setup failed: %v", err)
	c.nav.ToList()
	return err
}

func (c *Controller) teardown() string {
	c.mu.Lock()
	if c.closed {
		roomID := c.roomID
		c.mu.Unlock()
		return roomID
	}
	c.closed = true
	c.state = StateClosing
	ch := c.channel
	c.channel = nil
	roomID := c.roomID
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	c.chat.Stop()
	log.Printf("[ROOM] Session closed for room %s", roomID)
	return roomID
}

func (c *Controller) currentChannel() Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}
