package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RoomManagerImpl keeps the live rooms of this instance.
// Rooms are created on the first join to a space and forgotten once their
// roster empties. A closed room is treated as absent.
type RoomManagerImpl struct {
	provider core.SpaceProvider

	mu    sync.RWMutex
	rooms map[domain.SpaceID]core.RoomService

	fetch singleflight.Group
}

func NewRoomManager(provider core.SpaceProvider) *RoomManagerImpl {
	return &RoomManagerImpl{
		provider: provider,
		rooms:    make(map[domain.SpaceID]core.RoomService),
	}
}

func (f *RoomManagerImpl) Get(id domain.SpaceID) (core.RoomService, bool) {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if !ok || room.Closed() {
		return nil, false
	}
	return room, true
}

// GetOrCreate returns the live room for id, fetching the space layout if
// there is none. Concurrent first joins to one space share a single fetch.
func (f *RoomManagerImpl) GetOrCreate(ctx context.Context, id domain.SpaceID) (core.RoomService, error) {
	if room, ok := f.Get(id); ok {
		return room, nil
	}

	v, err, _ := f.fetch.Do(string(id), func() (any, error) {
		if room, ok := f.Get(id); ok {
			return room, nil
		}
		// one joiner hanging up must not fail the others waiting on this fetch
		space, err := f.provider.Space(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		if space.ID == "" {
			space.ID = id
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if room, ok := f.rooms[id]; ok && !room.Closed() {
			return room, nil
		}
		room := core.NewRoomService(space)
		f.rooms[id] = room
		log.Info().Str("module", "app.rooms").Str("space", string(id)).
			Str("dimensions", space.Dimensions.String()).Int("static", len(space.Obstacles())).Msg("room created")
		return room, nil
	})
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	return v.(core.RoomService), nil
}

// Remove forgets room if it is still the one registered for its space.
func (f *RoomManagerImpl) Remove(room core.RoomService) {
	id := room.Space().ID
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.rooms[id]; ok && cur == room {
		delete(f.rooms, id)
		log.Info().Str("module", "app.rooms").Str("space", string(id)).Msg("room destroyed")
	}
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		if r.Closed() {
			continue
		}
		out = append(out, core.RoomInfo{
			ID:          id,
			Dimensions:  r.Space().Dimensions.String(),
			MemberCount: r.MemberCount(),
		})
	}
	f.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// StopRoom unregisters the room and returns the sessions it held.
func (f *RoomManagerImpl) StopRoom(id domain.SpaceID) []core.MemberSession {
	f.mu.Lock()
	room, ok := f.rooms[id]
	delete(f.rooms, id)
	f.mu.Unlock()
	if !ok {
		return nil
	}
	log.Info().Str("module", "app.rooms").Str("space", string(id)).Msg("room stopped")
	return room.Close()
}
