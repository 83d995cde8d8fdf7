package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursework_service/internal/errdefs"
	"coursework_service/pkg/logging"
)

// Cache is the read-through cache the course handler fronts GETs with.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

func mapErr(err error) int {
	switch {
	case errors.Is(err, errdefs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errdefs.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, errdefs.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errdefs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errdefs.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps the service error to a status code. Internal errors are
// logged and masked; the rest surface their message to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := mapErr(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "request failed",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		message = http.StatusText(http.StatusInternalServerError)
	}
	writeErrorJSON(w, statusCode, message)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"message": message})
	w.Write(resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "failed to serialize response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		return uuid.Nil, fmt.Errorf("missing path param %s: %w", key, errdefs.ErrValidation)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid path param %s: %w", key, errdefs.ErrValidation)
	}
	return id, nil
}
