package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Dob       string `json:"dob"`
}

type confirmRequest struct {
	Email string `json:"email"`
}

type removeRequest struct {
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.service.Register(r.Context(), ports.RegisterUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Dob:       req.Dob,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, token)
}

func (h *UserHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.ConfirmByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, user)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	user, err := h.service.Fetch(r.Context(), userID.String())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, user)
}

func (h *UserHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req removeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.Remove(r.Context(), userID.String(), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, "Successfully removed user.")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.OldPassword == "" {
		writeError(w, r, domain.ErrMissingOldPassword)
		return
	}
	if req.Password == "" {
		writeError(w, r, domain.ErrMissingNewPassword)
		return
	}

	if _, err := h.service.ChangePassword(r.Context(), userID.String(), req.OldPassword, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, "Successfully updated password")
}
