package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"es_admin"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}
