package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/prepdesk/prepdesk/internal/exam"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps error kinds onto status codes. Store errors get a
// generic message; validation and not-found messages are safe to surface.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case exam.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case exam.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case exam.IsStore(err):
		// Store errors wrap driver detail; log it, never surface it.
		log.Printf("store error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
