package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/navigator"
	"github.com/sells-group/district-map/internal/viewport"
)

type errorBody struct {
	Error   string               `json:"error"`
	Session *mapsession.Snapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeErr maps a domain error onto a status code.
func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Warn("api: request failed", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, area.ErrUnknownGranularity),
		errors.Is(err, navigator.ErrUnknownQueryType):
		return http.StatusBadRequest
	case errors.Is(err, mapsession.ErrUnknownShape):
		return http.StatusNotFound
	case errors.Is(err, mapsession.ErrShapeHidden):
		return http.StatusConflict
	case errors.Is(err, mapsession.ErrClosed):
		return http.StatusGone
	case errors.Is(err, mapsession.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, mapsession.ErrNoGeoJSON):
		return http.StatusNotImplemented
	case errors.Is(err, viewport.ErrUnavailable),
		errors.Is(err, viewport.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
