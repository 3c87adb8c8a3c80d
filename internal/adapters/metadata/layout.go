// Package metadata resolves space layouts from the metadata store.
package metadata

import (
	"fmt"

	"github.com/dkeye/Arena/internal/domain"
)

type elementRef struct {
	ID     string `json:"id" mapstructure:"id"`
	Width  int    `json:"width" mapstructure:"width"`
	Height int    `json:"height" mapstructure:"height"`
	Static bool   `json:"static" mapstructure:"static"`
}

type placedElement struct {
	ID      string      `json:"id" mapstructure:"id"`
	Element *elementRef `json:"element" mapstructure:"element"`
	X       int         `json:"x" mapstructure:"x"`
	Y       int         `json:"y" mapstructure:"y"`
}

// spaceLayout is the store's representation of one space.
type spaceLayout struct {
	ID         string          `json:"id" mapstructure:"id"`
	Dimensions string          `json:"dimensions" mapstructure:"dimensions"`
	Elements   []placedElement `json:"elements" mapstructure:"elements"`
}

// toDomain converts a layout. Elements without a definition count as a
// single static cell.
func (l spaceLayout) toDomain(id domain.SpaceID) (*domain.Space, error) {
	dims, err := domain.ParseDimensions(l.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("space %s: %w", id, err)
	}
	space := &domain.Space{ID: id, Dimensions: dims, Elements: make([]domain.Element, 0, len(l.Elements))}
	for _, pe := range l.Elements {
		el := domain.Element{
			ID:        pe.ID,
			Footprint: domain.Rect{X: pe.X, Y: pe.Y, Width: 1, Height: 1},
			Static:    true,
		}
		if pe.Element != nil {
			el.ElementID = pe.Element.ID
			el.Static = pe.Element.Static
			if pe.Element.Width > 0 {
				el.Footprint.Width = pe.Element.Width
			}
			if pe.Element.Height > 0 {
				el.Footprint.Height = pe.Element.Height
			}
		}
		space.Elements = append(space.Elements, el)
	}
	return space, nil
}
