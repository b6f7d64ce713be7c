package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"heimwahl/internal/ballot"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondDomainError maps ballot errors onto HTTP statuses. Unexpected
// errors are logged and answered with a generic message so no internals
// reach voters.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *ballot.ValidationError
	var ierr *ballot.IneligibleError
	var nerr *ballot.NotFoundError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr)
	case errors.As(err, &ierr):
		respondError(w, http.StatusConflict, ierr)
	case errors.As(err, &nerr):
		respondError(w, http.StatusNotFound, nerr)
	default:
		log.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// clientIP returns the client address without the port. RealIP middleware
// already rewrites RemoteAddr to a bare IP when proxy headers are present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
