package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopclock/internal/api"
	"shopclock/internal/config"
	"shopclock/internal/services"
	"shopclock/internal/timelog"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.withRequestLog(srv.handleStatus))
	mux.HandleFunc("/api/sessions", authMiddleware(token, srv.withRequestLog(srv.handleSessions)))
	mux.HandleFunc("/api/sessions/", authMiddleware(token, srv.withRequestLog(srv.handleSessionSubpath)))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the listener address once the server has started.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		s.log().Debug("api request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		r = r.WithContext(services.WithRequestID(r.Context(), requestID))
		next(w, r)
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	stats, err := s.daemon.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sessions := make(map[string]int, len(stats))
	for st, count := range stats {
		sessions[string(st)] = count
	}
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		Sessions:     sessions,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleSessions serves GET /api/sessions (open sessions for an operator)
// and POST /api/sessions (create).
func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		owner := strings.TrimSpace(r.URL.Query().Get("owner"))
		sessions, err := s.daemon.tracker.ListOpen(r.Context(), owner)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: api.FromSessions(sessions, s.daemon.tracker.Now())})
	case http.MethodPost:
		var req api.CreateSessionRequest
		if !s.decode(w, r, &req) {
			return
		}
		session, err := s.daemon.tracker.Create(r.Context(), req.Owner, req.JobRef, req.Subject)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		dto := api.FromSession(session, s.daemon.tracker.Now())
		s.writeJSON(w, http.StatusCreated, api.SessionResponse{Session: &dto})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSessionSubpath routes /api/sessions/{active,history,search,switch}
// and /api/sessions/{id}/{pause,resume,finish}.
func (s *apiServer) handleSessionSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] == "active":
		s.handleActive(w, r)
	case len(parts) == 1 && parts[0] == "history":
		s.handleHistory(w, r)
	case len(parts) == 1 && parts[0] == "search":
		s.handleSearch(w, r)
	case len(parts) == 1 && parts[0] == "switch":
		s.handleSwitch(w, r)
	case len(parts) == 2:
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		s.handleSessionAction(w, r, id, parts[1])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	session, err := s.daemon.tracker.Active(r.Context(), owner)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if session == nil {
		s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: nil})
		return
	}
	dto := api.FromSession(session, s.daemon.tracker.Now())
	s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: &dto})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	sessions, err := s.daemon.tracker.ListFinished(r.Context(), owner)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: api.FromSessions(sessions, s.daemon.tracker.Now())})
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	filter := timelog.Filter{
		Owner:   strings.TrimSpace(query.Get("owner")),
		JobRef:  strings.TrimSpace(query.Get("job")),
		Subject: strings.TrimSpace(query.Get("subject")),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, ok := timelog.ParseStatus(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", raw))
			return
		}
		filter.Status = status
	}
	sessions, err := s.daemon.tracker.Search(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: api.FromSessions(sessions, s.daemon.tracker.Now())})
}

func (s *apiServer) handleSwitch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SwitchSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	session, err := s.daemon.tracker.PauseActiveAndCreate(r.Context(), req.Owner, req.JobRef, req.Subject, req.Observation)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto := api.FromSession(session, s.daemon.tracker.Now())
	s.writeJSON(w, http.StatusCreated, api.SessionResponse{Session: &dto})
}

func (s *apiServer) handleSessionAction(w http.ResponseWriter, r *http.Request, id int64, action string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch action {
	case "pause":
		var req api.PauseSessionRequest
		if !s.decode(w, r, &req) {
			return
		}
		if err := s.daemon.tracker.Pause(r.Context(), id, req.Owner, req.Observation); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, struct{}{})
	case "resume":
		var req api.OwnerRequest
		if !s.decode(w, r, &req) {
			return
		}
		if err := s.daemon.tracker.Resume(r.Context(), id, req.Owner); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, struct{}{})
	case "finish":
		var req api.OwnerRequest
		if !s.decode(w, r, &req) {
			return
		}
		total, err := s.daemon.tracker.Finish(r.Context(), id, req.Owner)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FinishResponse{TotalSeconds: total})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("api request failed", slog.String("error", err.Error()))
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("encode api response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
