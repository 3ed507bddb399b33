package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type messageResponse struct {
	Message string `json:"message"`
}

type serverErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("error encoding response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeServerError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, serverErrorResponse{Message: "Server error", Error: err.Error()})
}
