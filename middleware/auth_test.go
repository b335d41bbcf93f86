package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func authRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestAuthenticate(t *testing.T) {
	var captured *UserClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = UserFromContext(r.Context())
	})
	handler := Authenticate(testSecret)(next)

	validToken := signToken(t, testSecret, jwt.MapClaims{
		"id":       float64(7),
		"email":    "ana@example.com",
		"es_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, testSecret, jwt.MapClaims{
		"id":  float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	foreignToken := signToken(t, "another-secret", jwt.MapClaims{
		"id":  float64(7),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"missing token", "", http.StatusForbidden},
		{"garbage token", "not.a.jwt", http.StatusUnauthorized},
		{"expired token", expiredToken, http.StatusUnauthorized},
		{"wrong secret", foreignToken, http.StatusUnauthorized},
		{"valid token", validToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured = nil
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, authRequest(tt.token))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if captured == nil {
					t.Fatal("claims missing from context")
				}
				if captured.ID != 7 || !captured.IsAdmin {
					t.Errorf("unexpected claims: %+v", captured)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := Authenticate(testSecret)(RequireAdmin(next))

	adminToken := signToken(t, testSecret, jwt.MapClaims{
		"id":       float64(1),
		"es_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	playerToken := signToken(t, testSecret, jwt.MapClaims{
		"id":       float64(2),
		"es_admin": false,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authRequest(adminToken))
	if w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, authRequest(playerToken))
	if w.Code != http.StatusForbidden {
		t.Errorf("player: expected 403, got %d", w.Code)
	}
}
