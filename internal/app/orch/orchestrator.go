// Package orch ties connections, rooms and collaborators together.
// Adapters call into it; it never touches the wire itself.
package orch

import (
	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Auth     core.Authenticator
	Policy   app.Policy
	// Spawn is the preferred spawn cell, clamped into each space.
	Spawn domain.Position
}

// handleDropped applies the backpressure policy to members whose queue
// was full during a publish. Called without any room lock held.
func (o *Orchestrator) handleDropped(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).
				Str("space", string(room.Space().ID)).Msg("kicking slow member")
			o.KickBySID(slow.ID())
		case app.DropFrame, app.NoAction:
		}
	}
}

// Shutdown closes every connection; each leaves its room on the way out.
func (o *Orchestrator) Shutdown() int {
	return o.Registry.CancelAll()
}
