// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
	"github.com/remaimber-it/interview-coach/internal/llm"
	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/service"
	"github.com/remaimber-it/interview-coach/internal/store"
)

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	interviews *service.InterviewService
	logger     *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(interviews *service.InterviewService, logger *slog.Logger) *Handler {
	return &Handler{
		interviews: interviews,
		logger:     logger,
	}
}

// ErrorResponse is the body of every failed request. Session is set when
// the failure happened after progress was saved, so the page can refresh.
type ErrorResponse struct {
	Error   string       `json:"error" example:"answer is empty"`
	Kind    string       `json:"kind,omitempty" example:"transport"`
	Session *SessionView `json:"session,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, answering 400 on failure.
// Returns false if the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleError maps service errors to HTTP responses. sess may be nil.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, sess *interview.Session) {
	status, kind := errorStatus(err)

	switch {
	case status >= http.StatusInternalServerError && kind == "":
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	case status >= http.StatusInternalServerError:
		h.logger.Warn("model gateway unavailable", "path", r.URL.Path, "kind", kind, "error", err)
	default:
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	resp := ErrorResponse{Error: err.Error(), Kind: kind}
	if sess != nil {
		view := newSessionView(sess)
		resp.Session = &view
	}
	respondJSON(w, status, resp)
}

func errorStatus(err error) (int, string) {
	if kind, ok := llm.KindOf(err); ok {
		if kind == llm.KindConfig {
			return http.StatusServiceUnavailable, string(kind)
		}
		return http.StatusBadGateway, string(kind)
	}

	switch {
	case errors.Is(err, interview.ErrInvalidProfile),
		errors.Is(err, interview.ErrInvalidTarget),
		errors.Is(err, interview.ErrEmptyAnswer),
		errors.Is(err, resume.ErrUnsupportedFormat),
		errors.Is(err, resume.ErrEmptyDocument):
		return http.StatusBadRequest, ""
	case errors.Is(err, resume.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, ""
	case errors.Is(err, interview.ErrInvalidTransition),
		errors.Is(err, interview.ErrNoPendingQuestion):
		return http.StatusConflict, ""
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ""
	}
	return http.StatusInternalServerError, ""
}
