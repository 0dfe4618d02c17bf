package canvas

import (
	"log"
	"sync"

	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

type Point struct {
	X, Y float64
}

// Painter renders one directed line. Implementations must be deterministic:
// the same segment must paint the same pixels regardless of when it arrives.
type Painter interface {
	DrawLine(from, to Point)
}

// Surface owns exactly one piece of local mutable state: the last local
// pointer position. Remote segments carry their own previous point and are
// painted without reading or touching that anchor, so a remote stroke can
// never corrupt an in-progress local stroke.
type Surface struct {
	mu      sync.Mutex
	painter Painter
	last    Point
}

func NewSurface(painter Painter) *Surface {
	return &Surface{painter: painter}
}

// PointerDown records the anchor for the next move. It paints nothing.
func (s *Surface) PointerDown(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = p
}

// PointerMove paints from the anchor to p and returns the segment for
// transmission. One move event yields at most one segment. Unpressed moves
// are a no-op and leave the anchor alone.
func (s *Surface) PointerMove(p Point, pressed bool) (types.DrawSegment, bool) {
	if !pressed {
		return types.DrawSegment{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seg := types.DrawSegment{X: p.X, Y: p.Y, PrevX: s.last.X, PrevY: s.last.Y}
	s.paint(seg)
	s.last = p
	return seg, true
}

// ApplyRemote paints a segment from its own prev fields only.
func (s *Surface) ApplyRemote(seg types.DrawSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paint(seg)
}

// ReplayHistory reconstructs the canvas for a client joining mid-session.
// Segments are painted in the order supplied, through the same primitive
// the live path uses.
func (s *Surface) ReplayHistory(segments []types.DrawSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range segments {
		s.paint(seg)
	}
	log.Printf("[CANVAS] Replayed %d history segments", len(segments))
}

func (s *Surface) paint(seg types.DrawSegment) {
	s.painter.DrawLine(Point{X: seg.PrevX, Y: seg.PrevY}, Point{X: seg.X, Y: seg.Y})
}
