package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
	"github.com/eldtechnologies/huddle/internal/store"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a session token plus the user it belongs to.
// Registration logs the new user straight in.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeText(req.Name, 100)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), name, email, string(hash))
	if err != nil {
		h.StoreError(w, err)
		return
	}

	token, err := h.store.CreateSession(r.Context(), user.ID, h.sessionTTL)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.UsersRegistered.Inc()
	h.JSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		h.StoreError(w, store.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.StoreError(w, store.ErrInvalidCredentials)
		return
	}

	token, err := h.store.CreateSession(r.Context(), user.ID, h.sessionTTL)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout revokes the caller's session token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.store.DeleteSession(r.Context(), token); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.JSON(w, http.StatusOK, user)
}
