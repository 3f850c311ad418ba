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

	"lingopod/internal/api"
	"lingopod/internal/episode"
	"lingopod/internal/logging"
	"lingopod/internal/services"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	service *api.Service

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, service *api.Service, logger *slog.Logger) *apiServer {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		service: service,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/process", srv.handleProcess)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/segments", srv.handleSegments)
	mux.HandleFunc("/api/episodes", srv.handleEpisodes)
	mux.HandleFunc("/api/episodes/", srv.handleEpisode)
	mux.HandleFunc("/api/flashcards/", srv.handleFlashcards)
	mux.HandleFunc("/api/history", srv.handleHistory)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the route table for tests.
func (s *apiServer) Handler() http.Handler {
	return s.server.Handler
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
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
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

type processRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Title    string `json:"title"`
}

type processResponse struct {
	JobID     string `json:"job_id"`
	EpisodeID string `json:"episode_id"`
}

func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jobID, episodeID, err := s.service.StartProcessing(r.Context(), req.URL, req.Language, req.Title)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, processResponse{JobID: jobID, EpisodeID: episodeID})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.service.Status())
}

func (s *apiServer) handleSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"segments": s.service.Segments()})
}

func (s *apiServer) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summaries, err := s.service.Episodes()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"episodes": summaries})
}

// handleEpisode serves /api/episodes/{id} and /api/episodes/{id}/difficulty.
func (s *apiServer) handleEpisode(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/episodes/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "episode not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		rec, err := s.service.Episode(id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, rec)
	case action == "" && r.Method == http.MethodDelete:
		if err := s.service.DeleteEpisode(id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	case action == "difficulty" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
		var req struct {
			Difficulty string `json:"difficulty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.service.SetDifficulty(id, episode.Difficulty(strings.ToLower(strings.TrimSpace(req.Difficulty)))); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"episode_id": id, "difficulty": req.Difficulty})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleFlashcards serves /api/flashcards/{user}, its /quiz sub-resource, and
// /api/flashcards/{user}/{cardID} deletion.
func (s *apiServer) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/flashcards/")
	user, sub, _ := strings.Cut(rest, "/")
	if user == "" {
		s.writeError(w, http.StatusNotFound, "user required")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		cards, err := s.service.Flashcards(user)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
	case sub == "" && r.Method == http.MethodPost:
		var req struct {
			Phrase      string `json:"phrase"`
			Translation string `json:"translation"`
			Context     string `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		card, err := s.service.AddFlashcard(user, req.Phrase, req.Translation, req.Context)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, card)
	case sub == "quiz" && r.Method == http.MethodGet:
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		questions, err := s.service.Quiz(user, size)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	case sub != "" && r.Method == http.MethodDelete:
		if err := s.service.RemoveFlashcard(user, sub); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": sub})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// writeServiceError maps the service error taxonomy onto HTTP status codes.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrJobRunning):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
