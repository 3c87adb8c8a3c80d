package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, s *session) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(s.sid)).Str("state", s.State().String()).Msg("readPump closing")
		s.finish(ctl.leave)
	}()

	c := s.conn.conn
	c.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !s.conn.isClosed() {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump read error")
			}
			return
		}
		// any traffic proves the peer alive
		_ = c.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
		ctl.handleSignal(ctx, s, data)
	}
}

func (ctl *SignalWSController) leave(sid core.SessionID) {
	if ctl.limiter != nil {
		ctl.limiter.Forget(sid)
	}
	ctl.Orch.OnDisconnect(sid)
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, s *session, data []byte) {
	if s.State() == stateClosed {
		return
	}
	t, payload, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(errors.Join(core.ErrMalformedMessage, err)).Str("module", "signal").
			Str("sid", string(s.sid)).Str("type", string(t)).Msg("dropping frame")
		return
	}

	switch p := payload.(type) {
	case *protocol.JoinPayload:
		ctl.handleJoin(ctx, s, p)
	case *protocol.MovePayload:
		ctl.handleMove(s, p)
	}
}
