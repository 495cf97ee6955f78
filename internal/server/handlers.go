package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/repository"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.StartDay(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, remote.StartDayResponse{
		Session:        remote.NewSessionJSON(res.Session),
		AlreadyStarted: res.AlreadyStarted,
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, r)(s.svc.Pause(r.Context()))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, r)(s.svc.Resume(r.Context()))
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, r)(s.svc.EndDay(r.Context()))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req remote.SyncRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, remote.ErrorResponse{Error: "invalid sync body: " + err.Error()})
		return
	}
	if req.SessionID == "" || req.ElapsedSeconds < 0 {
		s.writeJSON(w, http.StatusBadRequest, remote.ErrorResponse{Error: "sessionId and a non-negative elapsedSeconds are required"})
		return
	}
	s.writeSession(w, r)(s.svc.SyncTime(r.Context(), req.Payload()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.GetStatus(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, remote.StatusResponse{
		HasActiveDay:  st.HasActiveDay,
		CurrentStatus: string(st.CurrentStatus),
		Session:       remote.NewSessionJSON(st.Session),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Warn().Err(err).Msg("health_write_failed")
	}
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request) func(*domain.WorkSession, error) {
	return func(sess *domain.WorkSession, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, remote.SessionResponse{Session: remote.NewSessionJSON(sess)})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		code = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		code = http.StatusNotFound
	}
	ev := s.logger.Warn()
	if code == http.StatusInternalServerError {
		ev = s.logger.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", code).Msg("request_failed")
	s.writeJSON(w, code, remote.ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("response_encode_failed")
	}
}
