package engine

import (
	"log/slog"

	"tourneychain/core/events"
)

// LoggingEmitter writes one structured log line per event, keyed by the
// round's trace id where the event carries one, so operators can grep one
// round's lifecycle out of a node's logs.
type LoggingEmitter struct {
	log *slog.Logger
}

// NewLoggingEmitter wraps log.
func NewLoggingEmitter(log *slog.Logger) LoggingEmitter {
	return LoggingEmitter{log: log}
}

// Emit implements events.Emitter.
func (l LoggingEmitter) Emit(e events.Event) {
	if l.log == nil {
		return
	}
	switch ev := e.(type) {
	case events.TournamentStarted:
		l.log.Info("tournament started", "height", ev.Height, "participants", ev.ParticipantCount, "trace_id", ev.TraceID)
	case events.TournamentCompleted:
		l.log.Info("tournament completed", "height", ev.Height, "matches", ev.Matches, "trace_id", ev.TraceID)
	case events.TournamentInsufficientParticipants:
		l.log.Warn("tournament skipped: insufficient participants", "height", ev.Height, "count", ev.Count)
	case events.ParticipantKilled:
		l.log.Warn("participant killed", "participant", ev.Participant, "trust", ev.Trust)
	case events.BlockFinalized:
		l.log.Info("block finalized", "height", ev.Height)
	case events.BlockRejected:
		l.log.Warn("block rejected")
	case events.EquivocationDetected:
		l.log.Error("equivocation detected")
	case events.RoundSchedulerError:
		l.log.Error("round scheduler advance failed", "height", ev.Height, "phase", ev.Phase, "err", ev.Err)
	default:
		l.log.Debug("event", "type", e.EventType())
	}
}
