package signal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Arena/internal/core"
)

type sessionState int32

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateUnjoined:
		return "unjoined"
	case stateJoined:
		return "joined"
	default:
		return "closed"
	}
}

// session is the gateway's view of one connection. Only the reader
// goroutine moves it forward; teardown may come from anywhere.
type session struct {
	sid    core.SessionID
	member core.MemberSession
	conn   *WsSignalConn
	cancel context.CancelFunc

	state    atomic.Int32
	doneOnce sync.Once
}

func newSession(sid core.SessionID, member core.MemberSession, conn *WsSignalConn, cancel context.CancelFunc) *session {
	return &session{sid: sid, member: member, conn: conn, cancel: cancel}
}

func (s *session) State() sessionState { return sessionState(s.state.Load()) }

// advance moves from -> to and reports whether it did.
func (s *session) advance(from, to sessionState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// teardown stops the pumps and closes the transport. The reader then
// runs the leave path.
func (s *session) teardown() {
	s.cancel()
	s.conn.Close()
}

// finish runs once, from the reader's exit: the member leaves its room
// before the transport is discarded.
func (s *session) finish(leave func(core.SessionID)) {
	s.doneOnce.Do(func() {
		s.state.Store(int32(stateClosed))
		leave(s.sid)
		s.teardown()
	})
}
