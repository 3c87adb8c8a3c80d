package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
)

// joinAttempts bounds retries when a room is torn down under a joiner.
const joinAttempts = 3

// Join authenticates the token and places the session into the space's
// room, creating the room on first use.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, spaceID domain.SpaceID, token string) (core.JoinResult, error) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return core.JoinResult{}, core.ErrConnClosed
	}
	if _, _, joined := o.Registry.RoomOf(sid); joined {
		return core.JoinResult{}, fmt.Errorf("join %s: already joined", sid)
	}

	user, err := o.Auth.Authenticate(ctx, token)
	if err != nil {
		if !errors.Is(err, core.ErrAuthFailure) {
			err = fmt.Errorf("%w: %w", core.ErrAuthFailure, err)
		}
		return core.JoinResult{}, err
	}
	sess.Meta().User = user

	for range joinAttempts {
		room, err := o.Rooms.GetOrCreate(ctx, spaceID)
		if err != nil {
			return core.JoinResult{}, err
		}
		res, err := room.Join(sess, o.Spawn)
		if errors.Is(err, core.ErrRoomClosed) {
			o.Rooms.Remove(room)
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("space", string(spaceID)).Msg("room closed under joiner, retrying")
			continue
		}
		if err != nil {
			if room.Closed() {
				o.Rooms.Remove(room)
			}
			if res.Displaced != nil {
				o.KickBySID(res.Displaced.ID())
			}
			o.handleDropped(room, res.Publish)
			return core.JoinResult{}, err
		}
		o.Registry.UpdateRoom(sid, room)
		if res.Displaced != nil {
			log.Info().Str("module", "orch").Str("sid", string(res.Displaced.ID())).
				Str("user", string(user.ID)).Msg("closing displaced session")
			o.KickBySID(res.Displaced.ID())
		}
		o.handleDropped(room, res.Publish)
		return res, nil
	}
	return core.JoinResult{}, core.ErrRoomClosed
}

// Move validates and applies a step. claimed is the userId the client sent;
// a mismatch with the authenticated identity is malformed.
func (o *Orchestrator) Move(sid core.SessionID, to domain.Position, claimed domain.UserID) (core.MoveResult, error) {
	room, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return core.MoveResult{}, core.ErrNotJoined
	}
	if claimed != "" && claimed != sess.Meta().UserID() {
		return core.MoveResult{}, fmt.Errorf("%w: move for %q from %q", core.ErrMalformedMessage, claimed, sess.Meta().UserID())
	}
	res, err := room.Move(sid, to)
	if err != nil {
		return res, err
	}
	o.handleDropped(room, res.Publish)
	return res, nil
}

// Leave removes the session from its room. Safe to call more than once.
func (o *Orchestrator) Leave(sid core.SessionID) {
	room, ok := o.Registry.RemoveRoom(sid)
	if !ok {
		return
	}
	res, left := room.Leave(sid)
	if !left {
		return
	}
	if res.Remaining == 0 {
		o.Rooms.Remove(room)
	}
	o.handleDropped(room, res.Publish)
}

// OnDisconnect is the transport's last call for a session.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Leave(sid)
	o.Registry.Unbind(sid)
}

// KickBySID closes the session's transport; leave follows from the
// reader's exit.
func (o *Orchestrator) KickBySID(sid core.SessionID) bool {
	return o.Registry.Cancel(sid)
}

// KickUser closes every session of uid in the space.
func (o *Orchestrator) KickUser(spaceID domain.SpaceID, uid domain.UserID) int {
	n := 0
	for _, snap := range o.Registry.MembersOfRoom(spaceID) {
		if snap.Session.Meta().UserID() == uid && o.KickBySID(snap.SID) {
			n++
		}
	}
	return n
}

// EvictRoom stops the room and closes all of its connections.
func (o *Orchestrator) EvictRoom(id domain.SpaceID) int {
	members := o.Rooms.StopRoom(id)
	for _, ms := range members {
		o.KickBySID(ms.ID())
	}
	log.Info().Str("module", "orch").Str("space", string(id)).Int("evicted", len(members)).Msg("room evicted")
	return len(members)
}

// Members returns the roster of a live room.
func (o *Orchestrator) Members(id domain.SpaceID) ([]core.MemberDTO, bool) {
	room, ok := o.Rooms.Get(id)
	if !ok {
		return nil, false
	}
	return room.MembersSnapshot(), true
}
