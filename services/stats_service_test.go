package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

// The fakes embed the repository interfaces so only the methods a test
// exercises need real bodies.

type fakeStatsRepo struct {
	repositories.StatsRepository
	matches  []models.MatchSummary
	probeErr error
}

func (f *fakeStatsRepo) HasStateColumn(context.Context) (bool, error) {
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return true, nil
}

func (f *fakeStatsRepo) MatchesBetweenPlayers(context.Context, int, int, bool) ([]models.MatchSummary, error) {
	return f.matches, nil
}

func (f *fakeStatsRepo) MatchesBetweenDecks(context.Context, int, int, bool) ([]models.MatchSummary, error) {
	return f.matches, nil
}

func (f *fakeStatsRepo) PlayerStats(_ context.Context, approvedOnly bool) ([]models.PlayerStats, error) {
	// Encodes which filter was requested so probe fallback is observable.
	if approvedOnly {
		return []models.PlayerStats{{ID: 1}}, nil
	}
	return []models.PlayerStats{{ID: 1}, {ID: 2}}, nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	users map[int]*models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

type fakeDeckRepo struct {
	repositories.DeckRepository
	decks map[int]*models.Deck
}

func (f *fakeDeckRepo) GetByID(_ context.Context, id int) (*models.Deck, error) {
	deck, ok := f.decks[id]
	if !ok {
		return nil, repositories.ErrDeckNotFound
	}
	return deck, nil
}

func headToHead() []models.MatchSummary {
	return []models.MatchSummary{
		{
			Result:    models.ResultPlayer1Win,
			Player1ID: 1, Player2ID: 2,
			Deck1ID: 10, Deck2ID: 20,
			Deck1Name: "Fuego", Deck2Name: "Agua",
		},
		{
			Result:    models.ResultPlayer2Win,
			Player1ID: 2, Player2ID: 1,
			Deck1ID: 20, Deck2ID: 10,
			Deck1Name: "Agua", Deck2Name: "Fuego",
		},
		{
			Result:    models.ResultPlayer1Win,
			Player1ID: 1, Player2ID: 2,
			Deck1ID: 10, Deck2ID: 20,
			Deck1Name: "Fuego", Deck2Name: "Agua",
		},
	}
}

func TestComparePlayersTallies(t *testing.T) {
	statsRepo := &fakeStatsRepo{matches: headToHead()}
	userRepo := &fakeUserRepo{users: map[int]*models.User{
		1: {ID: 1, Name: "Ana"},
		2: {ID: 2, Name: "Luis"},
	}}
	svc := NewStatsService(statsRepo, userRepo, &fakeDeckRepo{}, slog.Default())

	comparison, err := svc.ComparePlayers(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comparison.Stats.TotalMatches != 3 || comparison.Stats.Draws != 0 {
		t.Errorf("expected 3 matches and 0 draws, got %d and %d",
			comparison.Stats.TotalMatches, comparison.Stats.Draws)
	}
	if comparison.Stats.Player1Wins != 3 {
		t.Errorf("expected player 1 to win 3, got %d", comparison.Stats.Player1Wins)
	}
	if comparison.Stats.Player1Winrate != "100.00" {
		t.Errorf("expected winrate 100.00, got %q", comparison.Stats.Player1Winrate)
	}
	if comparison.Stats.Player2Winrate != "0.00" {
		t.Errorf("expected winrate 0.00, got %q", comparison.Stats.Player2Winrate)
	}
	if got := comparison.DecksUsed.Player1["Fuego"]; got != 3 {
		t.Errorf("expected Fuego used 3 times by player 1, got %d", got)
	}
	if got := comparison.DecksUsed.Player2["Agua"]; got != 3 {
		t.Errorf("expected Agua used 3 times by player 2, got %d", got)
	}
}

func TestComparePlayersMissingPlayer(t *testing.T) {
	statsRepo := &fakeStatsRepo{}
	userRepo := &fakeUserRepo{users: map[int]*models.User{1: {ID: 1}}}
	svc := NewStatsService(statsRepo, userRepo, &fakeDeckRepo{}, slog.Default())

	_, err := svc.ComparePlayers(context.Background(), 1, 99)
	if !errors.Is(err, ErrComparisonPlayerMissing) {
		t.Fatalf("expected ErrComparisonPlayerMissing, got %v", err)
	}
}

func TestCompareDecksTallies(t *testing.T) {
	matches := headToHead()
	// Player wins map onto deck wins through the stored side: all three
	// matches were won by deck 10's side here except the swapped one.
	matches[1].Result = models.ResultDraw

	statsRepo := &fakeStatsRepo{matches: matches}
	deckRepo := &fakeDeckRepo{decks: map[int]*models.Deck{
		10: {ID: 10, Name: "Fuego", Series: "Clasica"},
		20: {ID: 20, Name: "Agua", Series: "Clasica"},
	}}
	svc := NewStatsService(statsRepo, &fakeUserRepo{}, deckRepo, slog.Default())

	comparison, err := svc.CompareDecks(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comparison.Stats.TotalMatches != 3 || comparison.Stats.Draws != 1 {
		t.Errorf("expected 3 matches and 1 draw, got %d and %d",
			comparison.Stats.TotalMatches, comparison.Stats.Draws)
	}
	if comparison.Stats.Deck1Wins != 2 || comparison.Stats.Deck2Wins != 0 {
		t.Errorf("expected wins 2 and 0, got %d and %d",
			comparison.Stats.Deck1Wins, comparison.Stats.Deck2Wins)
	}
	if comparison.Stats.Deck1Winrate != "66.67" {
		t.Errorf("expected winrate 66.67, got %q", comparison.Stats.Deck1Winrate)
	}
}

func TestProbeFailureFallsBackToUnfiltered(t *testing.T) {
	statsRepo := &fakeStatsRepo{probeErr: errors.New("permission denied")}
	svc := NewStatsService(statsRepo, &fakeUserRepo{}, &fakeDeckRepo{}, slog.Default())

	stats, err := svc.PlayerRanking(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The unfiltered aggregate returns both rows in the fake.
	if len(stats) != 2 {
		t.Errorf("expected unfiltered ranking with 2 rows, got %d", len(stats))
	}
}

func TestSearchUsersMinimumLength(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{}, &fakeUserRepo{}, &fakeDeckRepo{}, slog.Default())

	_, err := svc.SearchUsers(context.Background(), "ana")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFormatWinrate(t *testing.T) {
	tests := []struct {
		wins, total int
		want        string
	}{
		{0, 0, "0"},
		{2, 3, "66.67"},
		{1, 3, "33.33"},
		{3, 3, "100.00"},
		{0, 4, "0.00"},
	}
	for _, tt := range tests {
		if got := formatWinrate(tt.wins, tt.total); got != tt.want {
			t.Errorf("formatWinrate(%d, %d) = %q, want %q", tt.wins, tt.total, got, tt.want)
		}
	}
}
