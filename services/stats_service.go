package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

const (
	recentMatchesLimit = 10
	userSearchLimit    = 20
	userSearchMinLen   = 4
)

// PlayerDetail is a player's aggregate row plus their latest matches.
type PlayerDetail struct {
	models.PlayerStats
	RecentMatches []models.MatchSummary `json:"ultimasPartidas"`
}

// The comparison endpoints keep the two compared entities at top level and
// nest the tallies under "estadisticas". Winrates are preformatted strings
// with two decimals, "0" when the sample is empty.
type DeckRef struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Series string `json:"serie"`
}

type DeckComparisonStats struct {
	TotalMatches int    `json:"total_partidas"`
	Deck1Wins    int    `json:"mazo1_victorias"`
	Deck2Wins    int    `json:"mazo2_victorias"`
	Draws        int    `json:"empates"`
	Deck1Winrate string `json:"mazo1_winrate"`
	Deck2Winrate string `json:"mazo2_winrate"`
}

type DeckComparison struct {
	Deck1   DeckRef               `json:"mazo1"`
	Deck2   DeckRef               `json:"mazo2"`
	Stats   DeckComparisonStats   `json:"estadisticas"`
	Matches []models.MatchSummary `json:"partidas"`
}

type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

type PlayerComparisonStats struct {
	TotalMatches   int    `json:"total_partidas"`
	Player1Wins    int    `json:"jugador1_victorias"`
	Player2Wins    int    `json:"jugador2_victorias"`
	Draws          int    `json:"empates"`
	Player1Winrate string `json:"jugador1_winrate"`
	Player2Winrate string `json:"jugador2_winrate"`
}

// DecksUsed tallies how often each player brought each deck, keyed by the
// deck's display label.
type DecksUsed struct {
	Player1 map[string]int `json:"jugador1"`
	Player2 map[string]int `json:"jugador2"`
}

type PlayerComparison struct {
	Player1   PlayerRef             `json:"jugador1"`
	Player2   PlayerRef             `json:"jugador2"`
	Stats     PlayerComparisonStats `json:"estadisticas"`
	DecksUsed DecksUsed             `json:"mazosUsados"`
	Matches   []models.MatchSummary `json:"partidas"`
}

type StatsService interface {
	PlayerRanking(ctx context.Context) ([]models.PlayerStats, error)
	PlayerDetail(ctx context.Context, id int) (*PlayerDetail, error)
	PlayersFiltered(ctx context.Context, fromDate, toDate string) ([]models.PlayerStats, error)

	DeckRanking(ctx context.Context) ([]models.DeckStats, error)
	DeckDetail(ctx context.Context, id int) (*models.DeckStats, error)
	DecksFiltered(ctx context.Context, fromDate, toDate string) ([]models.DeckStats, error)

	CompareDecks(ctx context.Context, deck1ID, deck2ID int) (*DeckComparison, error)
	ComparePlayers(ctx context.Context, player1ID, player2ID int) (*PlayerComparison, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

type statsService struct {
	statsRepo repositories.StatsRepository
	userRepo  repositories.UserRepository
	deckRepo  repositories.DeckRepository
	logger    *slog.Logger
}

func NewStatsService(
	statsRepo repositories.StatsRepository,
	userRepo repositories.UserRepository,
	deckRepo repositories.DeckRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		userRepo:  userRepo,
		deckRepo:  deckRepo,
		logger:    logger,
	}
}

// approvedOnly probes the schema before every aggregate so the service keeps
// answering on installations that have not run the approval migration. A
// failed probe degrades to the unfiltered aggregate and a warning.
func (s *statsService) approvedOnly(ctx context.Context) bool {
	has, err := s.statsRepo.HasStateColumn(ctx)
	if err != nil {
		s.logger.Warn("schema probe for partidas.estado failed, aggregating over all matches",
			slog.Any("error", err))
		return false
	}
	return has
}

func (s *statsService) PlayerRanking(ctx context.Context) ([]models.PlayerStats, error) {
	stats, err := s.statsRepo.PlayerStats(ctx, s.approvedOnly(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to compute player stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) PlayerDetail(ctx context.Context, id int) (*PlayerDetail, error) {
	stats, err := s.statsRepo.PlayerStatsByID(ctx, id, s.approvedOnly(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to compute player stats: %w", err)
	}

	recent, err := s.statsRepo.RecentMatchesByPlayer(ctx, id, recentMatchesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent matches: %w", err)
	}

	return &PlayerDetail{PlayerStats: *stats, RecentMatches: recent}, nil
}

func (s *statsService) PlayersFiltered(ctx context.Context, fromDate, toDate string) ([]models.PlayerStats, error) {
	if err := validateDateRange(fromDate, toDate); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.PlayerStatsFiltered(ctx, s.approvedOnly(ctx), fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute filtered player stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) DeckRanking(ctx context.Context) ([]models.DeckStats, error) {
	stats, err := s.statsRepo.DeckStats(ctx, s.approvedOnly(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to compute deck stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) DeckDetail(ctx context.Context, id int) (*models.DeckStats, error) {
	stats, err := s.statsRepo.DeckStatsByID(ctx, id, s.approvedOnly(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to compute deck stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) DecksFiltered(ctx context.Context, fromDate, toDate string) ([]models.DeckStats, error) {
	if err := validateDateRange(fromDate, toDate); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.DeckStatsFiltered(ctx, s.approvedOnly(ctx), fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute filtered deck stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) CompareDecks(ctx context.Context, deck1ID, deck2ID int) (*DeckComparison, error) {
	var (
		deck1, deck2 *models.Deck
		matches      []models.MatchSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deck1, err = s.deckRepo.GetByID(gctx, deck1ID)
		return err
	})
	g.Go(func() (err error) {
		deck2, err = s.deckRepo.GetByID(gctx, deck2ID)
		return err
	})
	g.Go(func() (err error) {
		matches, err = s.statsRepo.MatchesBetweenDecks(gctx, deck1ID, deck2ID, s.approvedOnly(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return nil, ErrComparisonDeckMissing
		}
		return nil, fmt.Errorf("failed to compare decks: %w", err)
	}

	var wins1, wins2, draws int
	for _, m := range matches {
		winnerDeckID, isDraw := winningDeckID(m)
		switch {
		case isDraw:
			draws++
		case winnerDeckID == deck1.ID:
			wins1++
		case winnerDeckID == deck2.ID:
			wins2++
		}
	}

	total := len(matches)
	return &DeckComparison{
		Deck1: DeckRef{ID: deck1.ID, Name: deck1.Name, Series: deck1.Series},
		Deck2: DeckRef{ID: deck2.ID, Name: deck2.Name, Series: deck2.Series},
		Stats: DeckComparisonStats{
			TotalMatches: total,
			Deck1Wins:    wins1,
			Deck2Wins:    wins2,
			Draws:        draws,
			Deck1Winrate: formatWinrate(wins1, total),
			Deck2Winrate: formatWinrate(wins2, total),
		},
		Matches: matches,
	}, nil
}

func (s *statsService) ComparePlayers(ctx context.Context, player1ID, player2ID int) (*PlayerComparison, error) {
	var (
		player1, player2 *models.User
		matches          []models.MatchSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		player1, err = s.userRepo.GetByID(gctx, player1ID)
		return err
	})
	g.Go(func() (err error) {
		player2, err = s.userRepo.GetByID(gctx, player2ID)
		return err
	})
	g.Go(func() (err error) {
		matches, err = s.statsRepo.MatchesBetweenPlayers(gctx, player1ID, player2ID, s.approvedOnly(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrComparisonPlayerMissing
		}
		return nil, fmt.Errorf("failed to compare players: %w", err)
	}

	var wins1, wins2, draws int
	decksUsed1 := make(map[string]int)
	decksUsed2 := make(map[string]int)
	for _, m := range matches {
		winnerID, isDraw := winningPlayerID(m)
		switch {
		case isDraw:
			draws++
		case winnerID == player1.ID:
			wins1++
		case winnerID == player2.ID:
			wins2++
		}

		if m.Player1ID == player1.ID {
			decksUsed1[deckLabel(m.Deck1Name, m.Deck1Series)]++
			decksUsed2[deckLabel(m.Deck2Name, m.Deck2Series)]++
		} else {
			decksUsed1[deckLabel(m.Deck2Name, m.Deck2Series)]++
			decksUsed2[deckLabel(m.Deck1Name, m.Deck1Series)]++
		}
	}

	total := len(matches)
	return &PlayerComparison{
		Player1: PlayerRef{ID: player1.ID, Name: player1.Name},
		Player2: PlayerRef{ID: player2.ID, Name: player2.Name},
		Stats: PlayerComparisonStats{
			TotalMatches:   total,
			Player1Wins:    wins1,
			Player2Wins:    wins2,
			Draws:          draws,
			Player1Winrate: formatWinrate(wins1, total),
			Player2Winrate: formatWinrate(wins2, total),
		},
		DecksUsed: DecksUsed{Player1: decksUsed1, Player2: decksUsed2},
		Matches:   matches,
	}, nil
}

func (s *statsService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	scrubPasswords(users)
	return users, nil
}

func (s *statsService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	if len(query) < userSearchMinLen {
		v := newValidationError()
		v.add("query", fmt.Sprintf("La búsqueda debe tener al menos %d caracteres", userSearchMinLen))
		return nil, v.orNil()
	}

	users, err := s.userRepo.Search(ctx, query, userSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	scrubPasswords(users)
	return users, nil
}

func scrubPasswords(users []models.User) {
	for i := range users {
		users[i].PasswordHash = ""
	}
}

func validateDateRange(fromDate, toDate string) error {
	v := newValidationError()
	if fromDate != "" {
		if _, err := time.Parse("2006-01-02", fromDate); err != nil {
			v.add("fechaDesde", "Fecha inválida, se espera YYYY-MM-DD")
		}
	}
	if toDate != "" {
		if _, err := time.Parse("2006-01-02", toDate); err != nil {
			v.add("fechaHasta", "Fecha inválida, se espera YYYY-MM-DD")
		}
	}
	return v.orNil()
}

// deckLabel is the display key in the decks-used tally, "nombre (serie)".
func deckLabel(name, series string) string {
	if series == "" {
		return name
	}
	return name + " (" + series + ")"
}

func winningDeckID(m models.MatchSummary) (int, bool) {
	switch m.Result {
	case models.ResultPlayer1Win:
		return m.Deck1ID, false
	case models.ResultPlayer2Win:
		return m.Deck2ID, false
	}
	return 0, true
}

func winningPlayerID(m models.MatchSummary) (int, bool) {
	switch m.Result {
	case models.ResultPlayer1Win:
		return m.Player1ID, false
	case models.ResultPlayer2Win:
		return m.Player2ID, false
	}
	return 0, true
}

// formatWinrate renders a two-decimal percentage, "0" for an empty sample.
func formatWinrate(wins, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(wins)*100/float64(total))
}
