package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/middleware"
	"task-manager-backend/internal/models"
)

const msgInternal = "Internal server error"

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, models.ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func getClaims(r *http.Request) (*auth.Claims, bool) {
	return middleware.ClaimsFromContext(r.Context())
}
