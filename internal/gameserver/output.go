package gameserver

import (
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
)

// LogOutput is a message sink that writes player-bound messages to the
// structured log. It stands in for the network transport, which connects
// through the same interface.
type LogOutput struct {
	logger *zap.Logger
}

// NewLogOutput constructs a LogOutput.
//
// Precondition: logger must be non-nil.
func NewLogOutput(logger *zap.Logger) *LogOutput {
	return &LogOutput{logger: logger}
}

// Send logs one rendered message for a player recipient. NPC-bound copies
// are dropped; NPCs react through the simulation, not through text.
func (o *LogOutput) Send(a *actor.Actor, kind, text string) {
	if a.Kind != actor.KindPlayer {
		return
	}
	o.logger.Info("message",
		zap.String("recipient", a.Name),
		zap.String("kind", kind),
		zap.String("text", text),
	)
}
