package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/services"
)

// fakeStatsService embeds the interface so only the endpoints under test need
// real bodies.
type fakeStatsService struct {
	services.StatsService
	deckComparison *services.DeckComparison
	ranking        []models.PlayerStats
}

func (f *fakeStatsService) CompareDecks(context.Context, int, int) (*services.DeckComparison, error) {
	return f.deckComparison, nil
}

func (f *fakeStatsService) PlayerRanking(context.Context) ([]models.PlayerStats, error) {
	return f.ranking, nil
}

func statsRouter(svc services.StatsService) *chi.Mux {
	h := NewStatsHandler(svc)
	r := chi.NewRouter()
	r.Get("/estadisticas/jugadores", h.PlayerRanking)
	r.Get("/estadisticas/comparar/mazos/{id1}/{id2}", h.CompareDecks)
	return r
}

func TestPlayerRankingResponseKey(t *testing.T) {
	router := statsRouter(&fakeStatsService{ranking: []models.PlayerStats{{ID: 1}, {ID: 2}}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/estadisticas/jugadores", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := body["estadisticas"]; !ok {
		t.Error("expected ranking under \"estadisticas\" key")
	}
	if _, ok := body["jugadores"]; ok {
		t.Error("unexpected \"jugadores\" key in ranking response")
	}
}

// Comparisons put the two compared entities at top level and the tallies,
// winrates included, inside a nested "estadisticas" object.
func TestCompareDecksResponseLayout(t *testing.T) {
	router := statsRouter(&fakeStatsService{deckComparison: &services.DeckComparison{
		Deck1: services.DeckRef{ID: 10, Name: "Fuego", Series: "Clasica"},
		Deck2: services.DeckRef{ID: 20, Name: "Agua", Series: "Clasica"},
		Stats: services.DeckComparisonStats{
			TotalMatches: 3,
			Deck1Wins:    2,
			Deck2Wins:    1,
			Deck1Winrate: "66.67",
			Deck2Winrate: "33.33",
		},
		Matches: []models.MatchSummary{},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/estadisticas/comparar/mazos/10/20", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Deck1   struct {
			Name string `json:"nombre"`
		} `json:"mazo1"`
		Stats struct {
			TotalMatches int    `json:"total_partidas"`
			Deck1Wins    int    `json:"mazo1_victorias"`
			Deck1Winrate string `json:"mazo1_winrate"`
		} `json:"estadisticas"`
		Matches []json.RawMessage `json:"partidas"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success {
		t.Error("expected success true")
	}
	if body.Deck1.Name != "Fuego" {
		t.Errorf("expected mazo1.nombre Fuego, got %q", body.Deck1.Name)
	}
	if body.Stats.TotalMatches != 3 || body.Stats.Deck1Wins != 2 {
		t.Errorf("expected estadisticas with 3 matches and 2 wins, got %d and %d",
			body.Stats.TotalMatches, body.Stats.Deck1Wins)
	}
	if body.Stats.Deck1Winrate != "66.67" {
		t.Errorf("expected mazo1_winrate 66.67 under estadisticas, got %q", body.Stats.Deck1Winrate)
	}
	if body.Matches == nil {
		t.Error("expected partidas list in response")
	}
}
