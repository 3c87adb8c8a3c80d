package core

import (
	"fmt"

	"github.com/dkeye/Arena/internal/domain"
)

// Occupancy is the spatial index of one room: immutable static footprints
// plus the cell each live session stands on. Not safe for concurrent use;
// the owning room serializes access.
type Occupancy struct {
	dims   domain.Dimensions
	static []domain.Rect
	live   map[domain.Position]SessionID
}

func NewOccupancy(space *domain.Space) *Occupancy {
	return &Occupancy{
		dims:   space.Dimensions,
		static: space.Obstacles(),
		live:   make(map[domain.Position]SessionID),
	}
}

func (o *Occupancy) Dimensions() domain.Dimensions { return o.dims }

// Blocked reports whether a static element covers p.
func (o *Occupancy) Blocked(p domain.Position) bool {
	for _, r := range o.static {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// OccupiedBy returns the session standing on p.
func (o *Occupancy) OccupiedBy(p domain.Position) (SessionID, bool) {
	sid, ok := o.live[p]
	return sid, ok
}

func (o *Occupancy) Occupied(p domain.Position) bool {
	_, ok := o.live[p]
	return ok
}

// Free reports whether p is in bounds, not static and not taken.
func (o *Occupancy) Free(p domain.Position) bool {
	return o.dims.Contains(p) && !o.Blocked(p) && !o.Occupied(p)
}

func (o *Occupancy) Claim(sid SessionID, p domain.Position) error {
	if !o.Free(p) {
		return fmt.Errorf("claim %v for %s: cell not free", p, sid)
	}
	o.live[p] = sid
	return nil
}

// Vacate releases p if sid holds it.
func (o *Occupancy) Vacate(sid SessionID, p domain.Position) {
	if o.live[p] == sid {
		delete(o.live, p)
	}
}

// Move transfers sid from one cell to another in a single step.
func (o *Occupancy) Move(sid SessionID, from, to domain.Position) error {
	if holder, ok := o.live[from]; !ok || holder != sid {
		return fmt.Errorf("move %s: does not hold %v", sid, from)
	}
	if !o.Free(to) {
		return fmt.Errorf("move %s: %v not free", sid, to)
	}
	delete(o.live, from)
	o.live[to] = sid
	return nil
}

// Len is the number of live cells claimed.
func (o *Occupancy) Len() int { return len(o.live) }

func (o *Occupancy) Reset() {
	clear(o.live)
}
