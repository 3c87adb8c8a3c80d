package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadDimensions = errors.New("bad dimensions")

// Layout limits. Spawn search walks every cell under the room lock, so the
// grid has to stay small.
const (
	MaxSide  = 4096
	MaxCells = 1 << 20
)

type SpaceID string

// Position is a cell on the space grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns |dx| + |dy|.
func (p Position) Manhattan(q Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseDimensions parses the "WxH" form used by the metadata store.
func ParseDimensions(s string) (Dimensions, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: %q", ErrBadDimensions, s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: width %q", ErrBadDimensions, w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: height %q", ErrBadDimensions, h)
	}
	d := Dimensions{Width: width, Height: height}
	if err := d.Validate(); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

// Validate checks both sides are positive and the grid is within limits.
func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrBadDimensions, d)
	}
	if d.Width > MaxSide || d.Height > MaxSide || d.Width*d.Height > MaxCells {
		return fmt.Errorf("%w: %s exceeds %dx%d or %d cells", ErrBadDimensions, d, MaxSide, MaxSide, MaxCells)
	}
	return nil
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Contains reports whether p lies in [0,Width) x [0,Height).
func (d Dimensions) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < d.Width && p.Y < d.Height
}

// Rect is an axis-aligned footprint anchored at its top-left cell.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Element is an element placed in a space.
type Element struct {
	ID        string `json:"id"`
	ElementID string `json:"elementId"`
	Footprint Rect   `json:"footprint"`
	Static    bool   `json:"static"`
}

// Space is the layout the metadata store hands out for a space id.
type Space struct {
	ID         SpaceID
	Dimensions Dimensions
	Elements   []Element
}

// Obstacles returns the footprints of static elements.
func (s *Space) Obstacles() []Rect {
	out := make([]Rect, 0, len(s.Elements))
	for _, e := range s.Elements {
		if e.Static {
			out = append(out, e.Footprint)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
