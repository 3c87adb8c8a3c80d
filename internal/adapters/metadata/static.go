package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// StaticProvider serves layouts held in memory, usually loaded from a
// YAML file for local runs.
type StaticProvider struct {
	mu     sync.RWMutex
	spaces map[domain.SpaceID]*domain.Space
}

func NewStaticProvider(spaces ...*domain.Space) *StaticProvider {
	p := &StaticProvider{spaces: make(map[domain.SpaceID]*domain.Space, len(spaces))}
	for _, s := range spaces {
		p.Put(s)
	}
	return p
}

// LoadFile reads a spaces file:
//
//	spaces:
//	  - id: lobby
//	    dimensions: 100x200
//	    elements:
//	      - id: e1
//	        element: {id: table, width: 2, height: 1, static: true}
//	        x: 10
//	        y: 20
func LoadFile(path string) (*StaticProvider, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read spaces file: %w", err)
	}
	var layouts []spaceLayout
	if err := v.UnmarshalKey("spaces", &layouts); err != nil {
		return nil, fmt.Errorf("decode spaces file: %w", err)
	}

	p := NewStaticProvider()
	for _, l := range layouts {
		if l.ID == "" {
			return nil, fmt.Errorf("spaces file %s: space without id", path)
		}
		s, err := l.toDomain(domain.SpaceID(l.ID))
		if err != nil {
			return nil, err
		}
		p.Put(s)
	}
	log.Info().Str("module", "metadata").Str("file", path).Int("spaces", len(layouts)).Msg("loaded spaces")
	return p, nil
}

func (p *StaticProvider) Put(s *domain.Space) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spaces[s.ID] = s
}

// Space returns a copy so rooms never share element slices.
func (p *StaticProvider) Space(_ context.Context, id domain.SpaceID) (*domain.Space, error) {
	p.mu.RLock()
	s, ok := p.spaces[id]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSpaceNotFound, id)
	}
	cp := *s
	cp.Elements = append([]domain.Element(nil), s.Elements...)
	return &cp, nil
}
