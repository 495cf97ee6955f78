package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a command is not allowed from the
// current session state.
var ErrInvalidTransition = errors.New("invalid session transition")

// WorkSession is the authoritative record of one user's work day as held by
// the remote time-tracking service.
type WorkSession struct {
	ID           string
	Status       SessionStatus
	NetSeconds   int64
	PauseSeconds int64
	StartedAt    time.Time
	EndedAt      *time.Time
	UpdatedAt    time.Time
}

// Running reports whether the session accrues worked time right now.
func (s *WorkSession) Running() bool {
	return s != nil && s.Status == StatusInProgress
}

var transitions = map[SessionStatus]map[Command]SessionStatus{
	StatusNotStarted: {CommandStart: StatusInProgress},
	StatusInProgress: {CommandPause: StatusPaused, CommandEnd: StatusCompleted},
	StatusPaused:     {CommandResume: StatusInProgress, CommandEnd: StatusCompleted},
	StatusCompleted:  {CommandStart: StatusInProgress},
}

// Next returns the state reached by applying cmd in state from.
func Next(from SessionStatus, cmd Command) (SessionStatus, error) {
	to, ok := transitions[from][cmd]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, cmd, from)
	}
	return to, nil
}

// Allowed reports whether cmd is a defined edge out of status.
func Allowed(status SessionStatus, cmd Command) bool {
	_, ok := transitions[status][cmd]
	return ok
}
