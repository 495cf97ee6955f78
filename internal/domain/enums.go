package domain

type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusInProgress SessionStatus = "in_progress"
	StatusPaused     SessionStatus = "paused"
	StatusCompleted  SessionStatus = "completed"
)

// Valid reports whether s is one of the four known session states.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether a session in this state still counts as the day's
// open session.
func (s SessionStatus) Active() bool {
	return s == StatusInProgress || s == StatusPaused
}

type Command string

const (
	CommandStart  Command = "start"
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandEnd    Command = "end"
)
