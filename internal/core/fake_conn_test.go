package core

import (
	"sync"
	"testing"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// fakeConn records frames in order. full/closed simulate failing peers.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	if c.full {
		return ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

type wireFrame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func (c *fakeConn) messages(t *testing.T) []wireFrame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wireFrame, 0, len(c.frames))
	for _, f := range c.frames {
		var w wireFrame
		require.NoError(t, json.Unmarshal(f, &w))
		out = append(out, w)
	}
	return out
}

func (c *fakeConn) last(t *testing.T) wireFrame {
	t.Helper()
	msgs := c.messages(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func newTestSession(id string, user string) (MemberSession, *fakeConn) {
	conn := &fakeConn{}
	meta := domain.NewMember(&domain.User{ID: domain.UserID(user)})
	return NewMemberSession(SessionID(id), meta, conn), conn
}

func emptySpace(id string, w, h int) *domain.Space {
	return &domain.Space{ID: domain.SpaceID(id), Dimensions: domain.Dimensions{Width: w, Height: h}}
}
