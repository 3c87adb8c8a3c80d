package core

import "github.com/dkeye/Arena/internal/domain"

// RejectReason is logged only; the wire carries one uniform rejection.
type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectDistance    RejectReason = "distance"
	RejectOutOfBounds RejectReason = "out_of_bounds"
	RejectStatic      RejectReason = "static_element"
	RejectOccupied    RejectReason = "occupied"
)

// Grid is the read view the validator needs.
type Grid interface {
	Dimensions() domain.Dimensions
	Blocked(domain.Position) bool
	Occupied(domain.Position) bool
}

// ValidateMove decides whether a step from -> to is legal. A legal step is
// exactly one cell by Manhattan distance, in bounds, off static elements
// and not onto another participant.
func ValidateMove(g Grid, from, to domain.Position) RejectReason {
	if !g.Dimensions().Contains(to) {
		return RejectOutOfBounds
	}
	if from.Manhattan(to) != 1 {
		return RejectDistance
	}
	if g.Blocked(to) {
		return RejectStatic
	}
	if g.Occupied(to) {
		return RejectOccupied
	}
	return RejectNone
}

// SpawnPosition picks the preferred cell, clamped into bounds, or the next
// free cell probing row-major from there and wrapping around.
func SpawnPosition(g Grid, preferred domain.Position) (domain.Position, bool) {
	dims := g.Dimensions()
	if dims.Validate() != nil {
		return domain.Position{}, false
	}
	start := domain.Position{
		X: clamp(preferred.X, 0, dims.Width-1),
		Y: clamp(preferred.Y, 0, dims.Height-1),
	}
	total := dims.Width * dims.Height
	offset := start.Y*dims.Width + start.X
	for i := 0; i < total; i++ {
		idx := (offset + i) % total
		p := domain.Position{X: idx % dims.Width, Y: idx / dims.Width}
		if !g.Blocked(p) && !g.Occupied(p) {
			return p, true
		}
	}
	return domain.Position{}, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
