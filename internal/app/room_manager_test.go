package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls atomic.Int32
	delay time.Duration
}

func (p *countingProvider) Space(ctx context.Context, id domain.SpaceID) (*domain.Space, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	if id == "missing" {
		return nil, core.ErrSpaceNotFound
	}
	return &domain.Space{ID: id, Dimensions: domain.Dimensions{Width: 10, Height: 10}}, nil
}

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func member(sid, uid string) core.MemberSession {
	return core.NewMemberSession(core.SessionID(sid), domain.NewMember(&domain.User{ID: domain.UserID(uid)}), nopConn{})
}

func TestRoomManagerFetchesOncePerSpace(t *testing.T) {
	p := &countingProvider{delay: 20 * time.Millisecond}
	rm := NewRoomManager(p)

	var wg sync.WaitGroup
	rooms := make([]core.RoomService, 16)
	for i := range rooms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := rm.GetOrCreate(context.Background(), "s1")
			assert.NoError(t, err)
			rooms[i] = r
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
	for _, r := range rooms {
		assert.Same(t, rooms[0], r)
	}
}

func TestRoomManagerUnknownSpace(t *testing.T) {
	rm := NewRoomManager(&countingProvider{})
	_, err := rm.GetOrCreate(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrSpaceNotFound)
	assert.Empty(t, rm.List())
}

func TestRoomManagerClosedRoomIsReplaced(t *testing.T) {
	p := &countingProvider{}
	rm := NewRoomManager(p)
	ctx := context.Background()

	first, err := rm.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	_, err = first.Join(member("a", "ua"), domain.Position{})
	require.NoError(t, err)
	_, _ = first.Leave("a")
	require.True(t, first.Closed())

	_, ok := rm.Get("s1")
	assert.False(t, ok)

	require.Equal(t, int32(1), p.calls.Load())
	second, err := rm.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), p.calls.Load(), "a fresh room refetches the layout")

	// removing the stale room must not drop its replacement
	rm.Remove(first)
	got, ok := rm.Get("s1")
	require.True(t, ok)
	assert.Same(t, second, got)

	rm.Remove(second)
	_, ok = rm.Get("s1")
	assert.False(t, ok)
}

func TestRoomManagerListAndStop(t *testing.T) {
	rm := NewRoomManager(&countingProvider{})
	ctx := context.Background()
	b, err := rm.GetOrCreate(ctx, "b")
	require.NoError(t, err)
	_, err = rm.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	_, err = b.Join(member("x", "ux"), domain.Position{})
	require.NoError(t, err)

	assert.Equal(t, []core.RoomInfo{
		{ID: "a", Dimensions: "10x10", MemberCount: 0},
		{ID: "b", Dimensions: "10x10", MemberCount: 1},
	}, rm.List())

	stopped := rm.StopRoom("b")
	require.Len(t, stopped, 1)
	assert.Equal(t, core.SessionID("x"), stopped[0].ID())
	assert.Nil(t, rm.StopRoom("b"))
	assert.Len(t, rm.List(), 1)
}

func TestRegistryRoomAssociation(t *testing.T) {
	reg := NewRegistry()
	rm := NewRoomManager(&countingProvider{})
	room, err := rm.GetOrCreate(context.Background(), "s")
	require.NoError(t, err)

	var canceled atomic.Int32
	sess := member("sid", "u")
	reg.BindSignal("sid", sess, func() { canceled.Add(1) })

	_, _, ok := reg.RoomOf("sid")
	assert.False(t, ok)
	assert.False(t, reg.UpdateRoom("other", room))
	require.True(t, reg.UpdateRoom("sid", room))

	got, gotSess, ok := reg.RoomOf("sid")
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Equal(t, sess, gotSess)
	assert.Len(t, reg.MembersOfRoom("s"), 1)
	assert.Empty(t, reg.MembersOfRoom("elsewhere"))

	removed, ok := reg.RemoveRoom("sid")
	require.True(t, ok)
	assert.Same(t, room, removed)
	_, ok = reg.RemoveRoom("sid")
	assert.False(t, ok)

	assert.True(t, reg.Cancel("sid"))
	assert.False(t, reg.Cancel("nope"))
	assert.Equal(t, 1, reg.CancelAll())
	assert.Equal(t, int32(2), canceled.Load())

	reg.Unbind("sid")
	assert.Equal(t, 0, reg.Len())
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, KickMember, PolicyByName("kick").OnBackPressure(nil, nil))
	assert.Equal(t, KickMember, PolicyByName("").OnBackPressure(nil, nil))
	assert.Equal(t, DropFrame, PolicyByName("Drop").OnBackPressure(nil, nil))
}

