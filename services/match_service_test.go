package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (f *fakeMatchRepo) Insert(_ context.Context, match *models.Match) error {
	f.nextID++
	match.ID = f.nextID
	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) InsertPending(_ context.Context, match *models.Match) error {
	f.nextID++
	match.ID = f.nextID
	match.State = models.MatchStatePending
	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) UpdateState(_ context.Context, id int, from, to models.MatchState) error {
	match, ok := f.matches[id]
	if !ok || match.State != from {
		return repositories.ErrMatchNotPending
	}
	match.State = to
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int, _ bool) (*models.MatchSummary, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &models.MatchSummary{ID: match.ID, State: match.State}, nil
}

func (f *fakeMatchRepo) List(context.Context, bool, int, int) ([]models.MatchSummary, error) {
	return nil, nil
}

func (f *fakeMatchRepo) Count(context.Context, bool) (int, error) {
	return len(f.matches), nil
}

func (f *fakeMatchRepo) ListPending(context.Context) ([]models.MatchSummary, error) {
	return nil, nil
}

func (f *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakeLimitRepo struct {
	counts   map[string]int
	lastDate string
}

func newFakeLimitRepo() *fakeLimitRepo {
	return &fakeLimitRepo{counts: make(map[string]int)}
}

func (f *fakeLimitRepo) CheckAndIncrement(_ context.Context, userID int, date string, max int) (bool, int, error) {
	f.lastDate = date
	key := fmt.Sprintf("%d|%s", userID, date)
	if f.counts[key] >= max {
		return false, f.counts[key], nil
	}
	f.counts[key]++
	return true, f.counts[key], nil
}

func (f *fakeLimitRepo) DeleteOlderThan(context.Context, string) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) Notify(eventType string, _ interface{}) {
	f.events = append(f.events, eventType)
}

func newTestMatchService(matchRepo *fakeMatchRepo, limitRepo *fakeLimitRepo, notifier *fakeNotifier) *matchService {
	svc := NewMatchService(nil, matchRepo, limitRepo, notifier, slog.Default()).(*matchService)
	return svc
}

func validSelfReport() SelfReportInput {
	return SelfReportInput{
		OpponentID:     9,
		MyDeckID:       2,
		OpponentDeckID: 3,
		Outcome:        "yo",
	}
}

func TestSelfReportCreatesPendingMatch(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	notifier := &fakeNotifier{}
	svc := newTestMatchService(matchRepo, newFakeLimitRepo(), notifier)

	result, err := svc.SelfReport(context.Background(), 7, validSelfReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReportsToday != 1 {
		t.Errorf("expected 1 report today, got %d", result.ReportsToday)
	}

	match := matchRepo.matches[result.MatchID]
	if match == nil {
		t.Fatal("match was not persisted")
	}
	if match.State != models.MatchStatePending {
		t.Errorf("expected state %q, got %q", models.MatchStatePending, match.State)
	}
	if match.ReportedByID == nil || *match.ReportedByID != 7 {
		t.Errorf("expected reporter 7, got %v", match.ReportedByID)
	}
	if match.Player1ID != 7 || match.Player2ID != 9 {
		t.Errorf("expected players (7, 9), got (%d, %d)", match.Player1ID, match.Player2ID)
	}
	if len(notifier.events) != 1 || notifier.events[0] != EventMatchPending {
		t.Errorf("expected a single %s event, got %v", EventMatchPending, notifier.events)
	}
}

func TestSelfReportWinnerDerivation(t *testing.T) {
	tests := []struct {
		outcome    string
		wantResult models.MatchResult
		wantWinner *int
	}{
		{"yo", models.ResultPlayer1Win, intPtr(7)},
		{"oponente", models.ResultPlayer2Win, intPtr(9)},
		{"empate", models.ResultDraw, nil},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			matchRepo := newFakeMatchRepo()
			svc := newTestMatchService(matchRepo, newFakeLimitRepo(), &fakeNotifier{})

			input := validSelfReport()
			input.Outcome = tt.outcome
			result, err := svc.SelfReport(context.Background(), 7, input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			match := matchRepo.matches[result.MatchID]
			if match.Result != tt.wantResult {
				t.Errorf("expected result %q, got %q", tt.wantResult, match.Result)
			}
			switch {
			case tt.wantWinner == nil && match.WinnerID != nil:
				t.Errorf("expected no winner, got %d", *match.WinnerID)
			case tt.wantWinner != nil && (match.WinnerID == nil || *match.WinnerID != *tt.wantWinner):
				t.Errorf("expected winner %d, got %v", *tt.wantWinner, match.WinnerID)
			}
		})
	}
}

func TestSelfReportDailyLimit(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	limitRepo := newFakeLimitRepo()
	svc := newTestMatchService(matchRepo, limitRepo, &fakeNotifier{})

	for i := 1; i <= MaxDailyReports; i++ {
		result, err := svc.SelfReport(context.Background(), 7, validSelfReport())
		if err != nil {
			t.Fatalf("report %d: unexpected error: %v", i, err)
		}
		if result.ReportsToday != i {
			t.Errorf("report %d: expected counter %d, got %d", i, i, result.ReportsToday)
		}
	}

	_, err := svc.SelfReport(context.Background(), 7, validSelfReport())
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}
	if len(matchRepo.matches) != MaxDailyReports {
		t.Errorf("expected %d persisted matches, got %d", MaxDailyReports, len(matchRepo.matches))
	}
}

func TestSelfReportUsesServerDate(t *testing.T) {
	limitRepo := newFakeLimitRepo()
	svc := newTestMatchService(newFakeMatchRepo(), limitRepo, &fakeNotifier{})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 5, 23, 59, 0, 0, time.Local)
	}

	if _, err := svc.SelfReport(context.Background(), 7, validSelfReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limitRepo.lastDate != "2026-03-05" {
		t.Errorf("expected date 2026-03-05, got %q", limitRepo.lastDate)
	}
}

func TestSelfReportSelfOpponent(t *testing.T) {
	limitRepo := newFakeLimitRepo()
	svc := newTestMatchService(newFakeMatchRepo(), limitRepo, &fakeNotifier{})

	input := validSelfReport()
	input.OpponentID = 7
	_, err := svc.SelfReport(context.Background(), 7, input)
	if !errors.Is(err, ErrSelfOpponent) {
		t.Fatalf("expected ErrSelfOpponent, got %v", err)
	}
	if len(limitRepo.counts) != 0 {
		t.Error("rejected report must not consume the daily quota")
	}
}

func TestSelfReportValidation(t *testing.T) {
	svc := newTestMatchService(newFakeMatchRepo(), newFakeLimitRepo(), &fakeNotifier{})

	input := validSelfReport()
	input.Outcome = "gano yo"
	_, err := svc.SelfReport(context.Background(), 7, input)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["ganador"]; !ok {
		t.Errorf("expected a ganador field error, got %v", validationErr.Fields)
	}
}

func TestApproveIsSingleShot(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	notifier := &fakeNotifier{}
	svc := newTestMatchService(matchRepo, newFakeLimitRepo(), notifier)

	result, err := svc.SelfReport(context.Background(), 7, validSelfReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Approve(context.Background(), result.MatchID); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if got := matchRepo.matches[result.MatchID].State; got != models.MatchStateApproved {
		t.Errorf("expected state %q, got %q", models.MatchStateApproved, got)
	}

	if err := svc.Approve(context.Background(), result.MatchID); !errors.Is(err, ErrMatchNotPending) {
		t.Fatalf("second approve: expected ErrMatchNotPending, got %v", err)
	}
	if err := svc.Reject(context.Background(), result.MatchID); !errors.Is(err, ErrMatchNotPending) {
		t.Fatalf("reject after approve: expected ErrMatchNotPending, got %v", err)
	}

	want := []string{EventMatchPending, EventMatchApproved}
	if len(notifier.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, notifier.events)
	}
}

func TestRejectMissingMatch(t *testing.T) {
	svc := newTestMatchService(newFakeMatchRepo(), newFakeLimitRepo(), &fakeNotifier{})

	err := svc.Reject(context.Background(), 42)
	if !errors.Is(err, ErrMatchNotPending) {
		t.Fatalf("expected ErrMatchNotPending, got %v", err)
	}
}

func TestCreateValidatesResult(t *testing.T) {
	svc := newTestMatchService(newFakeMatchRepo(), newFakeLimitRepo(), &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreateMatchInput{
		Player1ID: 1, Player2ID: 2, Deck1ID: 3, Deck2ID: 4,
		Result: "jugador1",
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func intPtr(v int) *int { return &v }
