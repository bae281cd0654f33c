package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"coffeeshop/internal/domain"
)

// RoleHeader carries the caller's role on every protected request.
const RoleHeader = "role"

type authErrorResponse struct {
	TraceID string `json:"traceId"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Authorize rejects requests whose role header is missing or not in allowed.
func Authorize(allowed ...domain.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Header.Get(RoleHeader)
			if role == "" {
				writeForbidden(w, "role is required")
				return
			}
			if !slices.Contains(allowed, domain.UserType(role)) {
				writeForbidden(w, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(authErrorResponse{
		TraceID: uuid.New().String(),
		Error:   "FORBIDDEN",
		Message: message,
	})
}
