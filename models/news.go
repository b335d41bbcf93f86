package models

import "time"

type News struct {
	ID         int       `json:"id"`
	Title      string    `json:"titulo"`
	Content    string    `json:"contenido"`
	ImageURL   *string   `json:"imagen_url,omitempty"`
	AuthorID   int       `json:"autor_id,omitempty"`
	AuthorName string    `json:"autor_nombre"`
	CreatedAt  time.Time `json:"fecha_creacion"`
	UpdatedAt  time.Time `json:"fecha_actualizacion"`
}
