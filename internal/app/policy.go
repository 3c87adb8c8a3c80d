package app

import (
	"strings"

	"github.com/dkeye/Arena/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose outbound queue is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks slow members; they leave through the normal path.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction {
	return KickMember
}

// LossyPolicy keeps slow members and lets them miss frames.
type LossyPolicy struct{}

func (LossyPolicy) OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the config value to a policy. Unknown names kick.
func PolicyByName(name string) Policy {
	switch strings.ToLower(name) {
	case "drop", "lossy":
		return LossyPolicy{}
	default:
		return SimplePolicy{}
	}
}
