package types

type FrameType string

const (
	FrameDraw FrameType = "draw"
	FrameChat FrameType = "chat"
)

// UserID is opaque. Depending on the auth provider it may look like an
// email or a bare uuid; nothing in the client parses it.
type UserID string

type DrawSegment struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	PrevX float64 `json:"prevX"`
	PrevY float64 `json:"prevY"`
}

// Frame is the tagged envelope carried over the room channel. Draw frames
// use the coordinate fields, chat frames use User and Message; absent keys
// decode to their zero values on the receiving side.
type Frame struct {
	Type    FrameType `json:"type"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	PrevX   float64   `json:"prevX,omitempty"`
	PrevY   float64   `json:"prevY,omitempty"`
	User    UserID    `json:"user,omitempty"`
	Message string    `json:"message,omitempty"`
}

func NewDrawFrame(seg DrawSegment) Frame {
	return Frame{
		Type:  FrameDraw,
		X:     seg.X,
		Y:     seg.Y,
		PrevX: seg.PrevX,
		PrevY: seg.PrevY,
	}
}

func NewChatFrame(user UserID, message string) Frame {
	return Frame{
		Type:    FrameChat,
		User:    user,
		Message: message,
	}
}

func (f Frame) Segment() DrawSegment {
	return DrawSegment{X: f.X, Y: f.Y, PrevX: f.PrevX, PrevY: f.PrevY}
}
