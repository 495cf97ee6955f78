package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/worktimer/internal/domain"
)

// ErrRemoteUnavailable covers every network or server failure talking to the
// time-tracking service.
var ErrRemoteUnavailable = errors.New("time-tracking service unavailable")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.Code, e.Body)
}

// Unwrap lets callers match a conflict as an invalid transition and anything
// else as the service being unavailable.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusConflict {
		return domain.ErrInvalidTransition
	}
	return ErrRemoteUnavailable
}

func errorCode(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return fmt.Sprintf("http_%d", se.Code)
	case errors.Is(err, errDecode):
		return "decode"
	default:
		return "transport"
	}
}

var errDecode = errors.New("decoding response")
