package core

import "errors"

var (
	// ErrAuthFailure: bad or missing token on join. Connection is closed.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrSpaceNotFound: unknown space id on join. Connection is closed.
	ErrSpaceNotFound = errors.New("space not found")
	// ErrMalformedMessage: undecodable frame or frame in the wrong state. Dropped.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrInvalidMovement: answered with movement-rejected.
	ErrInvalidMovement = errors.New("invalid movement")
	// ErrPeerDelivery: a send to a peer failed. Never fatal to the room.
	ErrPeerDelivery = errors.New("peer delivery failed")

	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
	ErrRoomClosed   = errors.New("room closed")
	ErrRoomFull     = errors.New("no free cell in room")
	ErrNotJoined    = errors.New("session not joined")
)
