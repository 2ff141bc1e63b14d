package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bizdash/app/gateway"
	"bizdash/app/models"
	"bizdash/app/services"
	"bizdash/app/session"

	"github.com/gorilla/mux"
)

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendFailure maps a service error onto a status code.
func sendFailure(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var nerr *gateway.NetworkError
	switch {
	case errors.As(err, &verr):
		sendJSON(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Errors,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, session.ErrAccountNotFound):
		sendError(w, "Account not found", http.StatusNotFound)
	case errors.As(err, &nerr):
		sendError(w, nerr.Error(), http.StatusBadGateway)
	default:
		log.Printf("Internal error: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, "Invalid "+what+" ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
