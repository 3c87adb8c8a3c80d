package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutJSON = `{
  "dimensions": "100x200",
  "elements": [
    {"id": "p1", "element": {"id": "table", "width": 2, "height": 3, "static": true}, "x": 10, "y": 20},
    {"id": "p2", "element": {"id": "rug", "width": 4, "height": 4, "static": false}, "x": 0, "y": 0},
    {"id": "p3", "x": 5, "y": 5}
  ]
}`

func TestHTTPProviderSpace(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/space/s1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(layoutJSON))
		case "/space/broken":
			_, _ = w.Write([]byte(`{"dimensions": "wide"}`))
		case "/space/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL+"/", "svc-token", time.Second)
	ctx := context.Background()

	space, err := p.Space(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/space/s1", gotPath)
	assert.Equal(t, "Bearer svc-token", gotAuth)
	assert.Equal(t, domain.SpaceID("s1"), space.ID)
	assert.Equal(t, domain.Dimensions{Width: 100, Height: 200}, space.Dimensions)
	require.Len(t, space.Elements, 3)
	assert.Equal(t, domain.Element{ID: "p1", ElementID: "table", Footprint: domain.Rect{X: 10, Y: 20, Width: 2, Height: 3}, Static: true}, space.Elements[0])
	assert.False(t, space.Elements[1].Static)
	assert.Equal(t, domain.Rect{X: 5, Y: 5, Width: 1, Height: 1}, space.Elements[2].Footprint)
	assert.True(t, space.Elements[2].Static)
	assert.Len(t, space.Obstacles(), 2)

	_, err = p.Space(ctx, "xyz123")
	assert.ErrorIs(t, err, core.ErrSpaceNotFound)

	_, err = p.Space(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrBadDimensions)

	_, err = p.Space(ctx, "down")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrSpaceNotFound)
}

func TestHTTPProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", 20*time.Millisecond)
	_, err := p.Space(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrSpaceNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spaces.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
spaces:
  - id: lobby
    dimensions: 10x8
    elements:
      - id: e1
        element: {id: table, width: 2, height: 1, static: true}
        x: 3
        y: 4
  - id: empty
    dimensions: 3x3
`), 0o600))

	p, err := LoadFile(path)
	require.NoError(t, err)

	lobby, err := p.Space(context.Background(), "lobby")
	require.NoError(t, err)
	assert.Equal(t, domain.Dimensions{Width: 10, Height: 8}, lobby.Dimensions)
	assert.Equal(t, []domain.Rect{{X: 3, Y: 4, Width: 2, Height: 1}}, lobby.Obstacles())

	empty, err := p.Space(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, empty.Elements)

	_, err = p.Space(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrSpaceNotFound)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spaces:\n  - id: s\n    dimensions: 0x4\n"), 0o600))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, domain.ErrBadDimensions)
}

func TestStaticProviderReturnsCopies(t *testing.T) {
	p := NewStaticProvider(&domain.Space{
		ID:         "s",
		Dimensions: domain.Dimensions{Width: 2, Height: 2},
		Elements:   []domain.Element{{ID: "e", Static: true}},
	})
	a, err := p.Space(context.Background(), "s")
	require.NoError(t, err)
	a.Elements[0].Static = false

	b, err := p.Space(context.Background(), "s")
	require.NoError(t, err)
	assert.True(t, b.Elements[0].Static)
}
