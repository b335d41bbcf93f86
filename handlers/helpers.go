package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ligadelmazo/backend/services"
)

// envelope is the wire shape of every JSON response: a success flag plus
// whatever the endpoint returns, flattened into the same object.
type envelope map[string]interface{}

const maxRequestBody = 1 << 20

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	// A second value means trailing garbage.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response", slog.Any("error", err))
	}
}

func respondSuccess(w http.ResponseWriter, status int, data envelope) {
	body := envelope{"success": true}
	for k, v := range data {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

func respondBadRequest(w http.ResponseWriter) {
	respondError(w, http.StatusBadRequest, "Datos inválidos")
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

func queryInt(r *http.Request, key, fallbackStr string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		v = fallbackStr
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		n, _ = strconv.Atoi(fallbackStr)
	}
	return n
}

// mapServiceError translates the service error taxonomy into HTTP responses.
// Anything unrecognized is a 500 with a generic message; the detail goes to
// the log, never to the client.
func mapServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "Datos inválidos",
			"errors":  validationErr.Fields,
		})
		return
	}

	var deckInUse *services.DeckInUseError
	if errors.As(err, &deckInUse) {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success":            false,
			"message":            deckInUse.Error(),
			"partidas_asociadas": deckInUse.Count,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrSelfOpponent),
		errors.Is(err, services.ErrMatchReferenceInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRateLimitExceeded):
		writeJSON(w, http.StatusTooManyRequests, envelope{
			"success": false,
			"message": err.Error(),
			"limite":  services.MaxDailyReports,
		})
	case errors.Is(err, services.ErrMatchNotPending),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDeckNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNewsNotFound),
		errors.Is(err, services.ErrRuleNotFound),
		errors.Is(err, services.ErrComparisonDeckMissing),
		errors.Is(err, services.ErrComparisonPlayerMissing):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrImageStorageDisabled):
		respondError(w, http.StatusServiceUnavailable, "Almacenamiento de imágenes no configurado")
	default:
		slog.Error("unhandled service error", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
