package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ligadelmazo/backend/middleware"
	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/services"
)

const testSecret = "test-secret"

type fakeMatchService struct {
	reporterID       int
	selfReportResult *services.SelfReportResult
	selfReportErr    error
	approveErr       error
}

func (f *fakeMatchService) List(context.Context, int, int) (*services.MatchList, error) {
	return &services.MatchList{
		Matches:    []models.MatchSummary{},
		Pagination: models.NewPagination(1, 50, 0),
	}, nil
}

func (f *fakeMatchService) GetByID(context.Context, int) (*models.MatchSummary, error) {
	return nil, services.ErrMatchNotFound
}

func (f *fakeMatchService) Create(context.Context, services.CreateMatchInput) (int, error) {
	return 1, nil
}

func (f *fakeMatchService) SelfReport(_ context.Context, reporterID int, _ services.SelfReportInput) (*services.SelfReportResult, error) {
	f.reporterID = reporterID
	if f.selfReportErr != nil {
		return nil, f.selfReportErr
	}
	return f.selfReportResult, nil
}

func (f *fakeMatchService) ListPending(context.Context) ([]models.MatchSummary, error) {
	return []models.MatchSummary{}, nil
}

func (f *fakeMatchService) Approve(context.Context, int) error { return f.approveErr }
func (f *fakeMatchService) Reject(context.Context, int) error  { return f.approveErr }
func (f *fakeMatchService) Delete(context.Context, int) error  { return nil }

func playerToken(t *testing.T, id int) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       float64(id),
		"es_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func matchRouter(svc services.MatchService) *chi.Mux {
	h := NewMatchHandler(svc)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		r.Post("/partidas/registrar", h.SelfReport)
		r.Put("/partidas/{id}/aprobar", h.Approve)
	})
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestSelfReportResponds201(t *testing.T) {
	svc := &fakeMatchService{
		selfReportResult: &services.SelfReportResult{MatchID: 15, ReportsToday: 4},
	}
	router := matchRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/partidas/registrar",
		strings.NewReader(`{"oponente_id":9,"mi_mazo_id":2,"mazo_oponente_id":3,"ganador":"yo"}`))
	req.Header.Set("Authorization", "Bearer "+playerToken(t, 7))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("expected success=true, got %v", body["success"])
	}
	if body["partidaId"] != float64(15) {
		t.Errorf("expected partidaId 15, got %v", body["partidaId"])
	}
	if body["partidasHoy"] != float64(4) {
		t.Errorf("expected partidasHoy 4, got %v", body["partidasHoy"])
	}
	if svc.reporterID != 7 {
		t.Errorf("expected reporter from token (7), got %d", svc.reporterID)
	}
}

func TestSelfReportRateLimited(t *testing.T) {
	svc := &fakeMatchService{selfReportErr: services.ErrRateLimitExceeded}
	router := matchRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/partidas/registrar",
		strings.NewReader(`{"oponente_id":9,"mi_mazo_id":2,"mazo_oponente_id":3,"ganador":"yo"}`))
	req.Header.Set("Authorization", "Bearer "+playerToken(t, 7))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
	if body["limite"] != float64(services.MaxDailyReports) {
		t.Errorf("expected limite %d, got %v", services.MaxDailyReports, body["limite"])
	}
}

func TestSelfReportRequiresToken(t *testing.T) {
	router := matchRouter(&fakeMatchService{})

	req := httptest.NewRequest(http.MethodPost, "/partidas/registrar",
		strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestApproveProcessedMatchIs404(t *testing.T) {
	svc := &fakeMatchService{approveErr: services.ErrMatchNotPending}
	router := matchRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/partidas/15/aprobar", nil)
	req.Header.Set("Authorization", "Bearer "+playerToken(t, 1))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != services.ErrMatchNotPending.Error() {
		t.Errorf("unexpected message: %v", body["message"])
	}
}
