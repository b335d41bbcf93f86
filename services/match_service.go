package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

// MaxDailyReports caps how many matches a user may self-report per calendar
// day. The self-report path has no other throttle.
const MaxDailyReports = 10

// WorkflowNotifier pushes approval-workflow events to connected clients.
// A nil notifier is valid and turns broadcasting off.
type WorkflowNotifier interface {
	Notify(eventType string, payload interface{})
}

const (
	EventMatchPending  = "PARTIDA_PENDIENTE"
	EventMatchApproved = "PARTIDA_APROBADA"
	EventMatchRejected = "PARTIDA_RECHAZADA"
)

type SelfReportInput struct {
	OpponentID     int     `json:"oponente_id"`
	MyDeckID       int     `json:"mi_mazo_id"`
	OpponentDeckID int     `json:"mazo_oponente_id"`
	Outcome        string  `json:"ganador"`
	Notes          *string `json:"notas"`
}

type SelfReportResult struct {
	MatchID      int
	ReportsToday int
}

type CreateMatchInput struct {
	Player1ID int     `json:"jugador1_id"`
	Player2ID int     `json:"jugador2_id"`
	Deck1ID   int     `json:"mazo1_id"`
	Deck2ID   int     `json:"mazo2_id"`
	Result    string  `json:"resultado"`
	Notes     *string `json:"notas"`
}

type MatchList struct {
	Matches    []models.MatchSummary
	Pagination models.Pagination
}

type MatchService interface {
	List(ctx context.Context, page, limit int) (*MatchList, error)
	GetByID(ctx context.Context, id int) (*models.MatchSummary, error)

	// Create is the admin-direct path: the match bypasses the approval
	// state machine and lands with whatever default the schema provides.
	Create(ctx context.Context, input CreateMatchInput) (int, error)

	// SelfReport checks the daily cap, then persists a pending match
	// attributed to the reporter.
	SelfReport(ctx context.Context, reporterID int, input SelfReportInput) (*SelfReportResult, error)

	ListPending(ctx context.Context) ([]models.MatchSummary, error)
	Approve(ctx context.Context, matchID int) error
	Reject(ctx context.Context, matchID int) error
	Delete(ctx context.Context, id int) error
}

type matchService struct {
	db        *db.DB
	matchRepo repositories.MatchRepository
	limitRepo repositories.DailyLimitRepository
	notifier  WorkflowNotifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(
	database *db.DB,
	matchRepo repositories.MatchRepository,
	limitRepo repositories.DailyLimitRepository,
	notifier WorkflowNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:        database,
		matchRepo: matchRepo,
		limitRepo: limitRepo,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// hasStateColumn probes for the approval-system columns. A probe failure is
// deliberately treated as "column absent" so installations predating the
// migration keep working; the failure is surfaced in the logs only.
func (s *matchService) hasStateColumn(ctx context.Context) bool {
	has, err := s.db.HasColumn(ctx, "partidas", "estado")
	if err != nil {
		s.logger.Warn("schema probe for partidas.estado failed, listing all matches",
			slog.Any("error", err))
		return false
	}
	return has
}

func (s *matchService) List(ctx context.Context, page, limit int) (*MatchList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	approvedOnly := s.hasStateColumn(ctx)
	offset := (page - 1) * limit

	total, err := s.matchRepo.Count(ctx, approvedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	matches, err := s.matchRepo.List(ctx, approvedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return &MatchList{
		Matches:    matches,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.MatchSummary, error) {
	match, err := s.matchRepo.GetByID(ctx, id, s.hasStateColumn(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (int, error) {
	v := newValidationError()
	if input.Player1ID <= 0 {
		v.add("jugador1_id", "ID de jugador 1 inválido")
	}
	if input.Player2ID <= 0 {
		v.add("jugador2_id", "ID de jugador 2 inválido")
	}
	if input.Deck1ID <= 0 {
		v.add("mazo1_id", "ID de mazo 1 inválido")
	}
	if input.Deck2ID <= 0 {
		v.add("mazo2_id", "ID de mazo 2 inválido")
	}
	result := models.MatchResult(input.Result)
	if !result.Valid() {
		v.add("resultado", "Resultado inválido")
	}
	if err := v.orNil(); err != nil {
		return 0, err
	}

	match := &models.Match{
		Player1ID: input.Player1ID,
		Player2ID: input.Player2ID,
		Deck1ID:   input.Deck1ID,
		Deck2ID:   input.Deck2ID,
		Result:    result,
		Notes:     input.Notes,
		WinnerID:  winnerFor(result, input.Player1ID, input.Player2ID),
	}

	if err := s.matchRepo.Insert(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchReferenceInvalid) {
			return 0, ErrMatchReferenceInvalid
		}
		return 0, fmt.Errorf("failed to create match: %w", err)
	}
	return match.ID, nil
}

func (s *matchService) SelfReport(ctx context.Context, reporterID int, input SelfReportInput) (*SelfReportResult, error) {
	v := newValidationError()
	if input.OpponentID <= 0 {
		v.add("oponente_id", "ID de oponente inválido")
	}
	if input.MyDeckID <= 0 {
		v.add("mi_mazo_id", "ID de mazo inválido")
	}
	if input.OpponentDeckID <= 0 {
		v.add("mazo_oponente_id", "ID de mazo oponente inválido")
	}
	result, ok := resultForOutcome(input.Outcome)
	if !ok {
		v.add("ganador", "El ganador debe ser \"yo\", \"oponente\" o \"empate\"")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}
	if input.OpponentID == reporterID {
		return nil, ErrSelfOpponent
	}

	// The cap check and the increment are one atomic store operation; two
	// concurrent reports from the same user cannot jointly exceed the cap.
	date := s.now().Format("2006-01-02")
	allowed, count, err := s.limitRepo.CheckAndIncrement(ctx, reporterID, date, MaxDailyReports)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily limit: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimitExceeded
	}

	match := &models.Match{
		Player1ID:    reporterID,
		Player2ID:    input.OpponentID,
		Deck1ID:      input.MyDeckID,
		Deck2ID:      input.OpponentDeckID,
		Result:       result,
		Notes:        input.Notes,
		WinnerID:     winnerFor(result, reporterID, input.OpponentID),
		ReportedByID: &reporterID,
	}

	if err := s.matchRepo.InsertPending(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchReferenceInvalid) {
			return nil, ErrMatchReferenceInvalid
		}
		return nil, fmt.Errorf("failed to register match: %w", err)
	}

	s.notify(EventMatchPending, match)

	return &SelfReportResult{MatchID: match.ID, ReportsToday: count}, nil
}

func (s *matchService) ListPending(ctx context.Context) ([]models.MatchSummary, error) {
	matches, err := s.matchRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) Approve(ctx context.Context, matchID int) error {
	return s.transition(ctx, matchID, models.MatchStateApproved, EventMatchApproved)
}

func (s *matchService) Reject(ctx context.Context, matchID int) error {
	return s.transition(ctx, matchID, models.MatchStateRejected, EventMatchRejected)
}

// transition moves a pending match into a terminal state. Each transition is
// permitted exactly once; a match that is missing or already resolved yields
// ErrMatchNotPending either way.
func (s *matchService) transition(ctx context.Context, matchID int, to models.MatchState, event string) error {
	err := s.matchRepo.UpdateState(ctx, matchID, models.MatchStatePending, to)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotPending) {
			return ErrMatchNotPending
		}
		return fmt.Errorf("failed to update match state: %w", err)
	}

	s.notify(event, map[string]int{"partida_id": matchID})
	return nil
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	err := s.matchRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

func (s *matchService) notify(eventType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(eventType, payload)
	}
}

func resultForOutcome(outcome string) (models.MatchResult, bool) {
	switch outcome {
	case "yo":
		return models.ResultPlayer1Win, true
	case "oponente":
		return models.ResultPlayer2Win, true
	case "empate":
		return models.ResultDraw, true
	}
	return "", false
}

// winnerFor derives ganador_id from the result: nil exactly when the result
// is a draw.
func winnerFor(result models.MatchResult, player1ID, player2ID int) *int {
	switch result {
	case models.ResultPlayer1Win:
		return &player1ID
	case models.ResultPlayer2Win:
		return &player2ID
	}
	return nil
}
