package core

import (
	"context"

	"github.com/dkeye/Arena/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

func (p *PublishResult) merge(o PublishResult) {
	p.SendTo += o.SendTo
	p.Dropped = append(p.Dropped, o.Dropped...)
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username,omitempty"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
}

type JoinResult struct {
	Spawn domain.Position
	// Displaced is an older session of the same user that was removed
	// from the roster to make room for this one. Its transport is still
	// open; the caller closes it.
	Displaced MemberSession
	Publish   PublishResult
}

type MoveResult struct {
	Accepted bool
	// Position is the authoritative position after the request.
	Position domain.Position
	Reason   RejectReason
	Publish  PublishResult
}

type LeaveResult struct {
	Remaining int
	Publish   PublishResult
}

// RoomService is the core-facing API of a room.
// It owns the roster and occupancy but never touches transport resources
// beyond TrySend.
type RoomService interface {
	Space() *domain.Space
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Closed() bool

	Join(ms MemberSession, preferred domain.Position) (JoinResult, error)
	Move(sid SessionID, to domain.Position) (MoveResult, error)
	Leave(sid SessionID) (LeaveResult, bool)
	// Close empties the room and returns the sessions it held.
	Close() []MemberSession
}

type RoomInfo struct {
	ID          domain.SpaceID `json:"id"`
	Dimensions  string         `json:"dimensions"`
	MemberCount int            `json:"member_count"`
}

// RoomManager is the registry of live rooms, keyed by space id.
type RoomManager interface {
	GetOrCreate(ctx context.Context, id domain.SpaceID) (RoomService, error)
	Get(id domain.SpaceID) (RoomService, bool)
	Remove(room RoomService)
	List() []RoomInfo
	StopRoom(id domain.SpaceID) []MemberSession
}
