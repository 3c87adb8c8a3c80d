package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
//
// Every roster change and every fan-out happens under mu, so frames of one
// room are enqueued to each peer in the order the room applied them.
// Enqueueing is TrySend, which never blocks.
type roomImpl struct {
	space *domain.Space

	mu     sync.Mutex
	roster []MemberSession
	grid   *Occupancy
	closed bool
}

func NewRoomService(space *domain.Space) RoomService {
	return &roomImpl{
		space: space,
		grid:  NewOccupancy(space),
	}
}

func (r *roomImpl) Space() *domain.Space { return r.space }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roster)
}

func (r *roomImpl) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MemberDTO, 0, len(r.roster))
	for _, ms := range r.roster {
		m := ms.Meta()
		dto := MemberDTO{ID: m.UserID(), X: m.Position.X, Y: m.Position.Y}
		if m.User != nil {
			dto.Username = m.User.Username
		}
		out = append(out, dto)
	}
	return out
}

func (r *roomImpl) Join(ms MemberSession, preferred domain.Position) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res JoinResult
	if r.closed {
		return res, ErrRoomClosed
	}
	uid := ms.Meta().UserID()
	if uid == "" {
		return res, ErrAuthFailure
	}
	if r.indexOf(ms.ID()) >= 0 {
		return res, fmt.Errorf("join %s: already in room", ms.ID())
	}

	if i := r.indexOfUser(uid); i >= 0 {
		old := r.roster[i]
		r.removeAtLocked(i)
		res.Displaced = old
		res.Publish.merge(r.publishLocked(protocol.TypeUserLeft, protocol.UserLeftPayload{UserID: string(uid)}, old.ID()))
		log.Info().Str("module", "core.room").Str("space", string(r.space.ID)).
			Str("user", string(uid)).Str("sid", string(old.ID())).Msg("displaced by newer session")
	}

	spawn, ok := SpawnPosition(r.grid, preferred)
	if !ok {
		// empty and unseatable: closed, so the manager drops it
		if len(r.roster) == 0 {
			r.closed = true
		}
		return res, ErrRoomFull
	}
	if err := r.grid.Claim(ms.ID(), spawn); err != nil {
		return res, err
	}
	meta := ms.Meta()
	meta.Position = spawn
	meta.Placed = true
	r.roster = append(r.roster, ms)

	ack := protocol.SpaceJoinedPayload{
		Users: r.userStatesLocked(),
		Spawn: protocol.Point{X: spawn.X, Y: spawn.Y},
	}
	res.Publish.merge(r.sendLocked(ms, protocol.TypeSpaceJoined, ack))
	res.Publish.merge(r.publishLocked(protocol.TypeUserJoin, protocol.UserJoinPayload{
		UserID: string(uid), X: spawn.X, Y: spawn.Y,
	}, ms.ID()))
	res.Spawn = spawn

	log.Info().Str("module", "core.room").Str("space", string(r.space.ID)).Str("sid", string(ms.ID())).
		Str("user", string(uid)).Int("x", spawn.X).Int("y", spawn.Y).Int("members", len(r.roster)).Msg("member joined")
	return res, nil
}

func (r *roomImpl) Move(sid SessionID, to domain.Position) (MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(sid)
	if i < 0 {
		return MoveResult{}, ErrNotJoined
	}
	ms := r.roster[i]
	meta := ms.Meta()
	from := meta.Position

	if reason := ValidateMove(r.grid, from, to); reason != RejectNone {
		res := MoveResult{Position: from, Reason: reason}
		res.Publish = r.sendLocked(ms, protocol.TypeMovementRejected, protocol.MovementRejectedPayload{X: from.X, Y: from.Y})
		log.Debug().Str("module", "core.room").Str("space", string(r.space.ID)).Str("sid", string(sid)).
			Str("reason", string(reason)).Int("x", to.X).Int("y", to.Y).Msg("move rejected")
		return res, nil
	}

	if err := r.grid.Move(sid, from, to); err != nil {
		return MoveResult{Position: from}, err
	}
	meta.Position = to

	res := MoveResult{Accepted: true, Position: to}
	res.Publish = r.publishLocked(protocol.TypeMovement, protocol.MovementPayload{
		UserID: string(meta.UserID()), X: to.X, Y: to.Y,
	}, "")
	return res, nil
}

func (r *roomImpl) Leave(sid SessionID) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(sid)
	if i < 0 {
		return LeaveResult{Remaining: len(r.roster)}, false
	}
	uid := r.roster[i].Meta().UserID()
	r.removeAtLocked(i)

	res := LeaveResult{Remaining: len(r.roster)}
	res.Publish = r.publishLocked(protocol.TypeUserLeft, protocol.UserLeftPayload{UserID: string(uid)}, "")
	if len(r.roster) == 0 {
		r.closed = true
	}
	log.Info().Str("module", "core.room").Str("space", string(r.space.ID)).Str("sid", string(sid)).
		Str("user", string(uid)).Int("members", len(r.roster)).Msg("member left")
	return res, true
}

func (r *roomImpl) Close() []MemberSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.roster
	r.roster = nil
	r.grid.Reset()
	r.closed = true
	log.Info().Str("module", "core.room").Str("space", string(r.space.ID)).Int("evicted", len(out)).Msg("room closed")
	return out
}

func (r *roomImpl) indexOf(sid SessionID) int {
	return slices.IndexFunc(r.roster, func(ms MemberSession) bool { return ms.ID() == sid })
}

func (r *roomImpl) indexOfUser(uid domain.UserID) int {
	return slices.IndexFunc(r.roster, func(ms MemberSession) bool { return ms.Meta().UserID() == uid })
}

func (r *roomImpl) removeAtLocked(i int) {
	ms := r.roster[i]
	r.grid.Vacate(ms.ID(), ms.Meta().Position)
	r.roster = slices.Delete(r.roster, i, i+1)
}

func (r *roomImpl) userStatesLocked() []protocol.UserState {
	out := make([]protocol.UserState, 0, len(r.roster))
	for _, ms := range r.roster {
		m := ms.Meta()
		out = append(out, protocol.UserState{ID: string(m.UserID()), X: m.Position.X, Y: m.Position.Y})
	}
	return out
}

// publishLocked fans a frame out to the roster, skipping except.
func (r *roomImpl) publishLocked(t protocol.Type, payload any, except SessionID) PublishResult {
	res := PublishResult{}
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("type", string(t)).Msg("encode")
		return res
	}
	for _, ms := range r.roster {
		if ms.ID() == except {
			continue
		}
		deliver(ms, frame, &res)
	}
	log.Debug().Str("module", "core.room").Str("space", string(r.space.ID)).Str("type", string(t)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) sendLocked(ms MemberSession, t protocol.Type, payload any) PublishResult {
	res := PublishResult{}
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("type", string(t)).Msg("encode")
		return res
	}
	deliver(ms, frame, &res)
	return res
}

func deliver(ms MemberSession, frame Frame, res *PublishResult) {
	err := ms.Signal().TrySend(frame)
	switch {
	case err == nil:
		res.SendTo++
	case errors.Is(err, ErrConnClosed):
		// peer already gone; its leave is on the way
	default:
		res.Dropped = append(res.Dropped, ms)
		log.Warn().Err(fmt.Errorf("%w: %w", ErrPeerDelivery, err)).Str("module", "core.room").
			Str("sid", string(ms.ID())).Msg("delivery failed")
	}
}
