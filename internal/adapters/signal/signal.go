// Package signal is the WebSocket gateway: it upgrades connections, decodes
// frames and drives each connection through unjoined -> joined -> closed.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch *orch.Orchestrator

	cfg      config.WSConfig
	limiter  *MoveRateLimiter
	upgrader websocket.Upgrader
}

// NewSignalWSController builds the gateway. movesPerSecond <= 0 disables
// the move flood guard.
func NewSignalWSController(o *orch.Orchestrator, cfg config.WSConfig, movesPerSecond int) *SignalWSController {
	ctl := &SignalWSController{
		Orch: o,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if movesPerSecond > 0 {
		ctl.limiter = NewMoveRateLimiter(movesPerSecond, time.Second)
	}
	return ctl
}

// WsSignalConn is the outbound half of a connection: a bounded queue
// drained by writePump.
type WsSignalConn struct {
	conn      *websocket.Conn
	send      chan core.Frame
	writeWait time.Duration

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	deadline := time.Now().Add(c.writeWait)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = c.conn.Close()
}

func (c *WsSignalConn) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	conn := &WsSignalConn{
		conn:      ws,
		send:      make(chan core.Frame, ctl.cfg.SendBuffer),
		writeWait: ctl.cfg.WriteWait,
	}

	sess := core.NewMemberSession(sid, domain.NewMember(nil), conn)
	ctx, cancel := context.WithCancel(ctx)
	s := newSession(sid, sess, conn, cancel)
	ctl.Orch.Registry.BindSignal(sid, sess, s.teardown)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, s)
}
