package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, domain.ErrMissingFields)
		return
	}
	if !domain.ValidEmail(domain.NormalizeEmail(req.Email)) {
		writeError(w, r, domain.ErrInvalidEmail)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, token)
}

// Verify only runs once Authenticate accepted the bearer token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, nil)
}

// Refresh issues a new pair for the subject of the refresh token that
// Authenticate accepted.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	token, err := h.authService.Refresh(r.Context(), userID.String())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, token)
}
