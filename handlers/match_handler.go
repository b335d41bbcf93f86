package handlers

import (
	"context"
	"net/http"

	"github.com/ligadelmazo/backend/middleware"
	"github.com/ligadelmazo/backend/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", "1")
	limit := queryInt(r, "limit", "50")

	list, err := h.matchService.List(r.Context(), page, limit)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"partidas":   list.Matches,
		"pagination": list.Pagination,
	})
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"partida": match})
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	id, err := h.matchService.Create(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message":   "Partida registrada correctamente",
		"partidaId": id,
	})
}

// SelfReport registers a match on behalf of the authenticated user. The match
// starts pending and only counts for statistics once an admin approves it.
func (h *MatchHandler) SelfReport(w http.ResponseWriter, r *http.Request) {
	claims := middleware.UserFromContext(r.Context())

	var input services.SelfReportInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	result, err := h.matchService.SelfReport(r.Context(), claims.ID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message":     "Partida registrada. Pendiente de aprobación.",
		"partidaId":   result.MatchID,
		"partidasHoy": result.ReportsToday,
	})
}

func (h *MatchHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListPending(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"partidas": matches})
}

func (h *MatchHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.matchService.Approve, "Partida aprobada correctamente")
}

func (h *MatchHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.matchService.Reject, "Partida rechazada correctamente")
}

func (h *MatchHandler) resolve(w http.ResponseWriter, r *http.Request, transition func(context.Context, int) error, message string) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := transition(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": message})
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "Partida eliminada correctamente"})
}
