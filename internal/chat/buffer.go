package chat

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

const DefaultTTL = 10 * time.Second

// Sender transmits a frame over the live room channel.
type Sender interface {
	Send(types.Frame) error
}

type Message struct {
	ID        uuid.UUID
	User      types.UserID
	Text      string
	ArrivedAt time.Time
}

// Buffer is an ordered, self-expiring display cache of recent chat. Each
// message gets its own one-shot eviction timer; nothing is ever persisted.
// Outbound messages are NOT appended here: they only show up once the
// service echoes them back through the frame dispatch, the same way every
// other participant sees them.
type Buffer struct {
	mu       sync.Mutex
	ttl      time.Duration
	user     types.UserID
	sender   Sender
	messages []Message
	timers   map[uuid.UUID]*time.Timer
	onAppend func(Message)
	stopped  bool
}

func NewBuffer(user types.UserID, ttl time.Duration) *Buffer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Buffer{
		ttl:    ttl,
		user:   user,
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Attach wires the live channel in once the session is ready. Until then
// Send drops outbound messages.
func (b *Buffer) Attach(sender Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sender = sender
}

// OnAppend registers a display hook invoked for every arriving message.
func (b *Buffer) OnAppend(fn func(Message)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onAppend = fn
}

// Send transmits text as a chat frame tagged with the local user. Blank
// text and a missing channel are both no-ops.
func (b *Buffer) Send(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	b.mu.Lock()
	sender := b.sender
	user := b.user
	b.mu.Unlock()

	if sender == nil {
		log.Println("[CHAT] Dropping outbound message: channel not open")
		return
	}
	if err := sender.Send(types.NewChatFrame(user, text)); err != nil {
		log.Printf("[CHAT] Send failed: %v", err)
	}
}

// Append inserts an arriving message at the tail and schedules its eviction.
func (b *Buffer) Append(user types.UserID, text string) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}

	msg := Message{
		ID:        uuid.New(),
		User:      user,
		Text:      text,
		ArrivedAt: time.Now(),
	}
	b.messages = append(b.messages, msg)
	b.timers[msg.ID] = time.AfterFunc(b.ttl, func() {
		b.evict(msg.ID)
	})
	hook := b.onAppend
	b.mu.Unlock()

	if hook != nil {
		hook(msg)
	}
}

func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.User, m.Text))
	}
	return lines
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// Stop cancels every pending eviction timer and discards the buffer. Safe
// to call more than once.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
	b.messages = nil
	b.stopped = true
}

func (b *Buffer) evict(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.timers, id)
	for i, m := range b.messages {
		if m.ID == id {
			b.messages = append(b.messages[:i], b.messages[i+1:]...)
			return
		}
	}
}
