package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and mapped to HTTP statuses at the
// handler boundary.
var (
	// Authentication
	ErrInvalidCredentials = errors.New("Credenciales incorrectas")
	ErrEmailTaken         = errors.New("El email ya está registrado")

	// Match workflow
	ErrRateLimitExceeded = errors.New("Has alcanzado el límite de partidas registradas hoy")
	ErrSelfOpponent      = errors.New("No puedes registrar una partida contra ti mismo")

	// ErrMatchNotPending deliberately conflates "not found" and "already
	// processed"; both answer 404 and the caller cannot tell them apart.
	ErrMatchNotPending = errors.New("Partida no encontrada o ya procesada")

	// ErrMatchReferenceInvalid is the service-level face of a foreign-key
	// violation on match insert.
	ErrMatchReferenceInvalid = errors.New("Jugador o mazo inexistente")

	// Entity lookups
	ErrUserNotFound  = errors.New("Jugador no encontrado")
	ErrDeckNotFound  = errors.New("Mazo no encontrado")
	ErrMatchNotFound = errors.New("Partida no encontrada")
	ErrNewsNotFound  = errors.New("Noticia no encontrada")
	ErrRuleNotFound  = errors.New("Norma no encontrada")

	// Comparisons
	ErrComparisonDeckMissing   = errors.New("Uno o ambos mazos no existen")
	ErrComparisonPlayerMissing = errors.New("Uno o ambos jugadores no existen")

	// Image uploads
	ErrImageStorageDisabled = errors.New("image storage is not configured")
)

// ValidationError carries per-field messages for malformed input; the
// handler layer renders it as a 400 with the field map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DeckInUseError blocks deck deletion while matches still reference it.
type DeckInUseError struct {
	Count int
}

func (e *DeckInUseError) Error() string {
	return fmt.Sprintf("No se puede eliminar el mazo: %d partidas lo utilizan", e.Count)
}
