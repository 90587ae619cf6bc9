package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dwellingcore/internal/core"
	"dwellingcore/pkg/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

type errorBody struct {
	Error      string             `json:"error"`
	Code       string             `json:"code"`
	Summary    string             `json:"summary,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// writeError writes a structured JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: message, Code: code})
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parseSection extracts the {path} parameter; URLs use "." as separator.
func (s *Server) parseSection(w http.ResponseWriter, r *http.Request) (domain.SectionPath, bool) {
	raw := chi.URLParam(r, "path")
	path, err := domain.ParseSectionPath(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
		return "", false
	}
	if _, ok := s.svc.Registry().Schema(path); !ok {
		s.writeError(w, http.StatusNotFound, "UNKNOWN_SECTION", fmt.Sprintf("unknown section %s", raw))
		return "", false
	}
	return path, true
}

// parseIndex extracts the {index} parameter.
func (s *Server) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		s.writeError(w, http.StatusBadRequest, "INVALID_INDEX", "invalid item index: "+raw)
		return 0, false
	}
	return index, true
}

// serviceError maps core errors to HTTP responses.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	var violation core.RuleViolationError
	var indexErr *core.IndexError
	var persistErr *core.PersistError
	switch {
	case errors.As(err, &violation):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:      err.Error(),
			Code:       "RULE_VIOLATION",
			Summary:    violation.Result.Summary(),
			Violations: violation.Result.Violations,
		})
	case errors.As(err, &indexErr):
		s.writeError(w, http.StatusNotFound, "INDEX_OUT_OF_RANGE", err.Error())
	case errors.Is(err, core.ErrUnknownSection):
		s.writeError(w, http.StatusNotFound, "UNKNOWN_SECTION", err.Error())
	case errors.Is(err, core.ErrNoItem):
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &persistErr):
		s.logger.Error("persist failed", "error", persistErr.Err)
		s.writeError(w, http.StatusInternalServerError, "PERSIST_FAILED", "change applied but could not be saved")
	default:
		s.logger.Error("internal error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
