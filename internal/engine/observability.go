package engine

import (
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/rs/zerolog"
)

// SyncSource names what triggered a sync push.
type SyncSource string

const (
	SourcePrimary  SyncSource = "primary"
	SourceAutosave SyncSource = "autosave"
	SourcePreflush SyncSource = "preflush"
	SourceTeardown SyncSource = "teardown"
)

// CommandEvent describes one finished command.
type CommandEvent struct {
	Command  domain.Command
	From     domain.SessionStatus
	To       domain.SessionStatus
	Elapsed  int64
	Duration time.Duration
	Err      error
}

// SyncEvent describes one sync push.
type SyncEvent struct {
	Source         SyncSource
	SessionID      string
	ElapsedSeconds int64
	Err            error
}

// Observer receives command and sync events.
type Observer interface {
	OnCommand(event CommandEvent)
	OnSync(event SyncEvent)
}

type NoopObserver struct{}

func (NoopObserver) OnCommand(CommandEvent) {}
func (NoopObserver) OnSync(SyncEvent)       {}

// LogObserver writes events to a zerolog logger. Failed syncs log at warn.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCommand(e CommandEvent) {
	ev := o.logger.Info()
	if e.Err != nil {
		ev = o.logger.Error().Err(e.Err)
	}
	ev.Str("command", string(e.Command)).
		Str("from", string(e.From)).
		Str("to", string(e.To)).
		Int64("elapsed_seconds", e.Elapsed).
		Int64("duration_ms", e.Duration.Milliseconds()).
		Msg("session_command")
}

func (o *LogObserver) OnSync(e SyncEvent) {
	ev := o.logger.Debug()
	if e.Err != nil {
		ev = o.logger.Warn().Err(e.Err)
	}
	ev.Str("source", string(e.Source)).
		Str("session_id", e.SessionID).
		Int64("elapsed_seconds", e.ElapsedSeconds).
		Msg("session_sync")
}
