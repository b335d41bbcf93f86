package models

import "time"

// Deck is a named card collection tied to a series. Image holds the public
// URL of the uploaded deck image, when there is one.
type Deck struct {
	ID          int       `json:"id"`
	Name        string    `json:"nombre"`
	Series      string    `json:"serie"`
	Description *string   `json:"descripcion,omitempty"`
	Image       *string   `json:"imagen,omitempty"`
	CreatedAt   time.Time `json:"fecha_creacion"`
	Cards       []Card    `json:"cartas,omitempty"`
}

type Card struct {
	ID          int     `json:"id"`
	DeckID      int     `json:"mazo_id"`
	Name        string  `json:"nombre"`
	Power       int     `json:"poder"`
	Description *string `json:"descripcion,omitempty"`
}
