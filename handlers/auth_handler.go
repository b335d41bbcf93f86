package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/services"
)

type AuthHandler struct {
	authService  services.AuthService
	jwtSecret    string
	jwtExpiresIn time.Duration
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, jwtExpiresIn time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		jwtSecret:    jwtSecret,
		jwtExpiresIn: jwtExpiresIn,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "Usuario registrado correctamente",
		"userId":  user.ID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		mapServiceError(w, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"email":    user.Email,
		"es_admin": user.IsAdmin,
		"exp":      time.Now().Add(h.jwtExpiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
