package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"task-manager-backend/internal/models"
	"task-manager-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		sendError(w, http.StatusBadRequest, "Email, name, and password required")
		return
	}

	result, err := h.auth.Signup(r.Context(), req.Email, req.Name, req.Password)
	if errors.Is(err, models.ErrEmailExists) {
		sendJSON(w, http.StatusConflict, models.AuthResult{Error: "Email already exists"})
		return
	}
	if err != nil {
		log.Printf("signup: %v", err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sendJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		sendError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		sendJSON(w, http.StatusUnauthorized, models.AuthResult{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sendJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), claims.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		sendError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("current user: %v", err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sendJSON(w, http.StatusOK, user)
}
