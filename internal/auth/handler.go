package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"classtest/internal/app/apiresp"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	token, expiresAt, err := h.svc.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrLoginDisabled):
			apiresp.WriteError(w, r, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			apiresp.WriteError(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// RequireTeacher guards authoring and review routes.
func (h *Handler) RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.IsTeacher(r) {
			apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsTeacher reports whether the request carries a valid teacher token. Used
// directly by routes that serve both roles with different payloads.
func (h *Handler) IsTeacher(r *http.Request) bool {
	raw := bearerToken(r)
	if raw == "" {
		return false
	}
	return h.svc.VerifyToken(raw) == nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
