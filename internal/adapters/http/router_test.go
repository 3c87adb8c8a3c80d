package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/Arena/internal/adapters/metadata"
	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{ closed bool }

func (c *nopConn) TrySend(core.Frame) error { return nil }
func (c *nopConn) Close()                   { c.closed = true }

type staticAuth struct{}

func (staticAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	return &domain.User{ID: domain.UserID(token)}, nil
}

func testConfig(admin bool) *config.Config {
	return &config.Config{
		Mode: "test",
		WS: config.WSConfig{
			Path: "/", ReadLimit: 4096, PingPeriod: time.Second, PongWait: 2 * time.Second,
			WriteWait: time.Second, SendBuffer: 4,
		},
		Admin: config.AdminConfig{Enabled: admin},
	}
}

func newOrch() *orch.Orchestrator {
	provider := metadata.NewStaticProvider(&domain.Space{ID: "lobby", Dimensions: domain.Dimensions{Width: 5, Height: 5}})
	return &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(provider),
		Auth:     staticAuth{},
		Policy:   app.SimplePolicy{},
	}
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(context.Background(), testConfig(false), newOrch())

	w := do(r, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["rooms"])

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/spaces").Code)
}

func TestAdminRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	o := newOrch()
	r := SetupRouter(context.Background(), testConfig(true), o)

	conns := map[core.SessionID]*nopConn{}
	for _, uid := range []string{"alice", "bob"} {
		sid := core.SessionID("sid-" + uid)
		conn := &nopConn{}
		conns[sid] = conn
		o.Registry.BindSignal(sid, core.NewMemberSession(sid, domain.NewMember(nil), conn), conn.Close)
		_, err := o.Join(context.Background(), sid, "lobby", uid)
		require.NoError(t, err)
	}

	w := do(r, http.MethodGet, "/api/spaces")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Spaces []core.RoomInfo `json:"spaces"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []core.RoomInfo{{ID: "lobby", Dimensions: "5x5", MemberCount: 2}}, list.Spaces)

	w = do(r, http.MethodGet, "/api/spaces/lobby/members")
	require.Equal(t, http.StatusOK, w.Code)
	var members struct {
		Members []core.MemberDTO `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members.Members, 2)
	assert.Equal(t, domain.UserID("alice"), members.Members[0].ID)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/spaces/ghost/members").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/spaces/lobby/members/nobody").Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/spaces/lobby/members/bob").Code)
	assert.True(t, conns["sid-bob"].closed)
	assert.False(t, conns["sid-alice"].closed)

	w = do(r, http.MethodDelete, "/api/spaces/lobby")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, conns["sid-alice"].closed)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/spaces/lobby/members").Code)
}
