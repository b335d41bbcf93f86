package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// UserClaims is what the token carries about the caller.
type UserClaims struct {
	ID      int
	Email   string
	IsAdmin bool
}

// UserFromContext returns the claims placed by Authenticate, or nil on
// unauthenticated routes.
func UserFromContext(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(userContextKey).(*UserClaims)
	return claims
}

// Authenticate verifies the Bearer token and stores its claims in the request
// context. A missing token answers 403 and a bad one 401; clients rely on the
// distinction to decide between "log in" and "session expired".
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusForbidden, "No se proporcionó token de autenticación")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			claims, err := ParseClaims(tokenString, secret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin only makes sense stacked after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := UserFromContext(r.Context())
		if claims == nil {
			writeAuthError(w, http.StatusForbidden, "No se proporcionó token de autenticación")
			return
		}
		if !claims.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "Acceso denegado. Solo administradores.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ParseClaims verifies a raw token string. Exposed for the websocket
// endpoint, which receives its token as a query parameter instead of a
// header.
func ParseClaims(tokenString, secret string) (*UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("token missing id claim")
	}
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["es_admin"].(bool)

	return &UserClaims{
		ID:      int(id),
		Email:   email,
		IsAdmin: isAdmin,
	}, nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
