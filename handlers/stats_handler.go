package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ligadelmazo/backend/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) PlayerRanking(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PlayerRanking(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"estadisticas": stats})
}

func (h *StatsHandler) PlayerDetail(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	detail, err := h.statsService.PlayerDetail(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"estadisticas":    detail.PlayerStats,
		"ultimasPartidas": detail.RecentMatches,
	})
}

// PlayersFiltered restricts the ranking to matches played inside a date
// range; players without matches in the range are omitted.
func (h *StatsHandler) PlayersFiltered(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PlayersFiltered(r.Context(),
		r.URL.Query().Get("fechaDesde"), r.URL.Query().Get("fechaHasta"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"estadisticas": stats})
}

func (h *StatsHandler) DeckRanking(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.DeckRanking(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"estadisticas": stats})
}

func (h *StatsHandler) DeckDetail(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	stats, err := h.statsService.DeckDetail(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"estadisticas": stats})
}

func (h *StatsHandler) DecksFiltered(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.DecksFiltered(r.Context(),
		r.URL.Query().Get("fechaDesde"), r.URL.Query().Get("fechaHasta"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"estadisticas": stats})
}

func (h *StatsHandler) CompareDecks(w http.ResponseWriter, r *http.Request) {
	id1, err1 := getIDFromURL(r, "id1")
	id2, err2 := getIDFromURL(r, "id2")
	if err1 != nil || err2 != nil {
		respondBadRequest(w)
		return
	}

	comparison, err := h.statsService.CompareDecks(r.Context(), id1, id2)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"mazo1":        comparison.Deck1,
		"mazo2":        comparison.Deck2,
		"estadisticas": comparison.Stats,
		"partidas":     comparison.Matches,
	})
}

func (h *StatsHandler) ComparePlayers(w http.ResponseWriter, r *http.Request) {
	id1, err1 := getIDFromURL(r, "id1")
	id2, err2 := getIDFromURL(r, "id2")
	if err1 != nil || err2 != nil {
		respondBadRequest(w)
		return
	}

	comparison, err := h.statsService.ComparePlayers(r.Context(), id1, id2)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"jugador1":     comparison.Player1,
		"jugador2":     comparison.Player2,
		"estadisticas": comparison.Stats,
		"mazosUsados":  comparison.DecksUsed,
		"partidas":     comparison.Matches,
	})
}

func (h *StatsHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.statsService.ListUsers(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"usuarios": users})
}

func (h *StatsHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.statsService.SearchUsers(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"usuarios": users})
}
