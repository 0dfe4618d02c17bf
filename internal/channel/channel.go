package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

var ErrClosed = errors.New("channel closed")

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 10 * time.Second
	maxFrameSize = 512
	sendBuffer   = 256
)

// Handler receives frames strictly in receipt order. It is invoked from the
// single read pump goroutine, so a handler never runs concurrently with
// itself.
type Handler func(types.Frame)

// Channel is the one duplex connection for a (room, user) pair. It does not
// reconnect: a transport error ends the session and Send reports ErrClosed
// from then on, so the caller can surface session-ended state instead of
// frames silently vanishing.
type Channel struct {
	conn      *websocket.Conn
	send      chan types.Frame
	done      chan struct{}
	closeOnce sync.Once
	roomID    string
}

// Dial opens the room channel at ws(s)://<host>/ws/rooms/{roomID}/{userID}.
// Callers must not dial before the rendering surface exists; frames start
// arriving immediately and there is no buffering for a surface that is not
// ready yet.
func Dial(ctx context.Context, wsBaseURL, roomID string, user types.UserID, handler Handler) (*Channel, error) {
	endpoint := fmt.Sprintf("%s/ws/rooms/%s/%s", strings.TrimRight(wsBaseURL, "/"), roomID, user)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	ch := &Channel{
		conn:   conn,
		send:   make(chan types.Frame, sendBuffer),
		done:   make(chan struct{}),
		roomID: roomID,
	}

	go ch.writePump()
	go ch.readPump(handler)

	log.Printf("[CHANNEL] Connected to room %s as %s", roomID, user)
	return ch, nil
}

// Send is fire-and-forget: no acknowledgement, no delivery guarantee beyond
// the transport's. Rapid pointer movement may queue one frame per move event
// with no coalescing.
func (c *Channel) Send(f types.Frame) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- f:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Close is idempotent and releases the transport.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close()
		log.Printf("[CHANNEL] Closed channel for room %s", c.roomID)
	})
}

func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				log.Printf("[CHANNEL] Write failed: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Channel) readPump(handler Handler) {
	defer c.Close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[CHANNEL] Unexpected close: %v", err)
			}
			return
		}

		var frame types.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("[CHANNEL] Dropping malformed frame: %v", err)
			continue
		}

		handler(frame)
	}
}
