package signal

import (
	"context"
	"errors"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleJoin admits an unjoined session. Any failure closes the
// connection without a reply.
func (ctl *SignalWSController) handleJoin(ctx context.Context, s *session, p *protocol.JoinPayload) {
	if s.State() != stateUnjoined {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("state", s.State().String()).Msg("join ignored")
		return
	}

	res, err := ctl.Orch.Join(ctx, s.sid, domain.SpaceID(p.SpaceID), p.Token)
	if err != nil {
		ev := log.Error()
		if errors.Is(err, core.ErrAuthFailure) || errors.Is(err, core.ErrSpaceNotFound) {
			ev = log.Warn()
		}
		ev.Err(err).Str("module", "signal").Str("sid", string(s.sid)).Str("space", p.SpaceID).Msg("join refused, closing")
		s.teardown()
		return
	}
	if !s.advance(stateUnjoined, stateJoined) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(s.sid)).Str("space", p.SpaceID).
		Str("user", string(s.member.Meta().UserID())).Int("x", res.Spawn.X).Int("y", res.Spawn.Y).Msg("join")
}

func (ctl *SignalWSController) handleMove(s *session, p *protocol.MovePayload) {
	if s.State() != stateJoined {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Msg("move before join, dropped")
		return
	}
	uid := s.member.Meta().UserID()
	if ctl.limiter != nil && !ctl.limiter.Allow(s.sid) {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("user", string(uid)).Msg("move rate limited, dropped")
		return
	}

	to := domain.Position{X: *p.X, Y: *p.Y}
	res, err := ctl.Orch.Move(s.sid, to, domain.UserID(p.UserID))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("move dropped")
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(s.sid)).Bool("accepted", res.Accepted).
		Int("x", res.Position.X).Int("y", res.Position.Y).Msg("move")
}
