package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/loginsvc/internal/auth"
	"github.com/dmitrymomot/loginsvc/internal/metrics"
)

// Response messages kept byte-compatible with the original deployment so
// existing clients keep working.
const (
	msgMissingCredentials = "Please provide a Json message with 'email' and 'password' fields."
	msgAccessDenied       = "Access denied"
	msgMissingToken       = "Please provide a token header that includes a user_id."
)

type handlers struct {
	auth    AuthService
	log     *slog.Logger
	metrics *metrics.Collector
}

// loginRequest uses pointer fields to distinguish an absent key from an
// empty string: both are rejected, but absence must be detected before the
// service is consulted.
type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.unexpected(w, r, nil, err)
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Email == nil || req.Password == nil {
		h.recordLogin(false)
		h.unauthorized(w, r, msgMissingCredentials)
		return
	}

	token, err := h.auth.Login(r.Context(), *req.Email, *req.Password)
	switch {
	case err == nil:
		h.recordLogin(true)
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	case errors.Is(err, auth.ErrAccessDenied):
		h.recordLogin(false)
		h.unauthorized(w, r, msgAccessDenied)
	default:
		h.recordLogin(false)
		h.unexpected(w, r, body, err)
	}
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Profile(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		h.profileError(w, r, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.unexpected(w, r, nil, err)
		return
	}

	// Unknown fields in the patch are ignored, not rejected: the mutation
	// surface is allow-listed to the name field only.
	var patch auth.Patch
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &patch); err != nil {
			h.badRequest(w, r, "Invalid Json message.")
			return
		}
	}

	profile, err := h.auth.UpdateProfile(r.Context(), r.Header.Get(TokenHeader), patch)
	if err != nil {
		h.profileError(w, r, body, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// profileError maps the auth error taxonomy for both profile endpoints.
func (h *handlers) profileError(w http.ResponseWriter, r *http.Request, payload []byte, err error) {
	var notFound auth.SubjectNotFoundError
	switch {
	case errors.Is(err, auth.ErrMissingOrInvalidToken):
		h.unauthorized(w, r, msgMissingToken)
	case errors.As(err, &notFound):
		h.badRequest(w, r, fmt.Sprintf("Respondent ID %s not found.", notFound.UserID))
	default:
		h.unexpected(w, r, payload, err)
	}
}

func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `<ul>
    <li>Try POST to <a href="/login">/login</a> with a Json message containing 'email' and 'password' fields.</li>
    <li>Pass the returned token in a "token" header for other requests.</li>
    <li>Try GET or POST to <a href="/profile">/profile</a>.</li>
</ul>
`)
}

func (h *handlers) recordLogin(ok bool) {
	if h.metrics != nil {
		h.metrics.RecordLogin(ok)
	}
}

func (h *handlers) unauthorized(w http.ResponseWriter, r *http.Request, cause string) {
	h.log.ErrorContext(r.Context(), "unauthorized",
		slog.String("cause", cause),
		slog.String("url", requestURL(r)),
	)
	writeError(w, r, http.StatusUnauthorized, cause)
}

func (h *handlers) badRequest(w http.ResponseWriter, r *http.Request, cause string) {
	h.log.ErrorContext(r.Context(), "bad request",
		slog.String("cause", cause),
		slog.String("url", requestURL(r)),
	)
	writeError(w, r, http.StatusBadRequest, cause)
}

// unexpected handles 500-class failures: the original request payload is
// logged for diagnosis, but the response never carries internal details.
func (h *handlers) unexpected(w http.ResponseWriter, r *http.Request, payload []byte, err error) {
	h.log.ErrorContext(r.Context(), "unexpected failure",
		slog.Any("error", err),
		slog.String("url", requestURL(r)),
		slog.String("payload", string(payload)),
	)
	writeError(w, r, http.StatusInternalServerError, "Internal server error")
}

// writeError renders the generic failure envelope: the body text embeds both
// the human-readable cause and the request URL.
func writeError(w http.ResponseWriter, r *http.Request, status int, cause string) {
	writeJSON(w, status, map[string]string{
		"message": fmt.Sprintf("%s: %s", cause, requestURL(r)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.RequestURI
}
