// Package protocol defines the JSON frames exchanged over the arena socket.
// Every frame is an envelope {"type": ..., "payload": {...}}.
package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	ErrMalformed   = errors.New("malformed frame")
	ErrUnknownType = errors.New("unknown frame type")
)

type Type string

// Inbound.
const (
	TypeJoin Type = "join"
	TypeMove Type = "move"
)

// Outbound.
const (
	TypeSpaceJoined      Type = "space-joined"
	TypeUserJoin         Type = "user-join"
	TypeMovement         Type = "movement"
	TypeMovementRejected Type = "movement-rejected"
	TypeUserLeft         Type = "user-left"
)

type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	SpaceID string `json:"spaceId"`
	Token   string `json:"token"`
}

// MovePayload uses pointers so a missing coordinate is told apart from 0.
type MovePayload struct {
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
	UserID string `json:"userId"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type UserState struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type SpaceJoinedPayload struct {
	Users []UserState `json:"users"`
	Spawn Point       `json:"spawn"`
}

type UserJoinPayload struct {
	UserID string `json:"userId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type MovementPayload struct {
	UserID string `json:"userId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type MovementRejectedPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type UserLeftPayload struct {
	UserID string `json:"userId"`
}

// Decode parses an inbound frame into *JoinPayload or *MovePayload.
func Decode(data []byte) (Type, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(env.Payload) == 0 {
		return env.Type, nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}

	switch env.Type {
	case TypeJoin:
		var p JoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return env.Type, nil, fmt.Errorf("%w: join: %v", ErrMalformed, err)
		}
		if p.SpaceID == "" {
			return env.Type, nil, fmt.Errorf("%w: join without spaceId", ErrMalformed)
		}
		return env.Type, &p, nil
	case TypeMove:
		var p MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return env.Type, nil, fmt.Errorf("%w: move: %v", ErrMalformed, err)
		}
		if p.X == nil || p.Y == nil {
			return env.Type, nil, fmt.Errorf("%w: move without coordinates", ErrMalformed)
		}
		return env.Type, &p, nil
	default:
		return env.Type, nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// Encode wraps payload into an envelope of the given type.
func Encode(t Type, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}
