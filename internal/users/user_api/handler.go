package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/auth"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/users"
)

type Handler struct {
	UserService *users.UserService
	Logger      *logger.Logger
}

func NewHandler(userService *users.UserService, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrUnknownRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Signup(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Signup: %v", err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Signup: registered %s as %s", user.Email, user.Role))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Signup: failed to encode response: %v", err))
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("login rejected for %s", req.Email))
		http.Error(w, "Invalid credentials", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: token, TokenType: "bearer"}); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to encode response: %v", err))
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	userList, err := h.UserService.ListUsers(r.Context(), identity)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(userList); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: failed to encode response: %v", err))
	}
}

func (h *Handler) DeleteOrganizer(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	userID := chi.URLParam(r, "userID")
	removed, err := h.UserService.RemoveOrganizer(r.Context(), identity, userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteOrganizer: %v", err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteOrganizer: removed organizer %s", removed.Email))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(removed); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteOrganizer: failed to encode response: %v", err))
	}
}
