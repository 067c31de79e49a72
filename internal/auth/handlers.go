package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/types"
)

// Handler serves the HTTP registration/login boundary. Everything after
// login flows over the websocket.
type Handler struct {
	store   *database.Store
	service *Service
	log     *zap.Logger
}

func NewHandler(store *database.Store, service *Service, log *zap.Logger) *Handler {
	return &Handler{store: store, service: service, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}

	digest, err := h.service.HashPassword(req.Password)
	if err != nil {
		h.log.Error("password hashing failed", zap.Error(err))
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	user, err := h.store.CreateUser(req.Name, req.Email, digest)
	if errors.Is(err, database.ErrConflict) {
		http.Error(w, "That email is already registered to an account", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("user creation failed", zap.Error(err))
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !h.service.ComparePassword(user.PasswordDigest, req.Password) {
		// Identical message for unknown email and wrong password.
		http.Error(w, "Invalid email or password. Please try again.", http.StatusBadRequest)
		return
	}

	token, err := h.service.CreateToken(user.ID, user.Email)
	if err != nil {
		h.log.Error("token creation failed", zap.Error(err))
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	// The profile may not exist yet; it is created lazily over the socket.
	var profile *types.Profile
	if p, err := h.store.GetProfileByUserID(user.ID); err == nil {
		profile = p
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  profile,
		"token": token,
	})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	userID, err := h.service.VerifyToken(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.store.GetProfileByUserID(userID)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "No profile found", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("profile lookup failed", zap.Error(err))
		http.Error(w, "Failed to check session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  profile,
		"token": token,
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
