package models

import "time"

// MatchState is the approval state of a self-reported match. Matches entered
// directly by an administrator are stored approved from the start; on
// installations predating the approval system the column does not exist at
// all and State stays empty.
type MatchState string

const (
	MatchStatePending  MatchState = "pendiente"
	MatchStateApproved MatchState = "aprobada"
	MatchStateRejected MatchState = "rechazada"
)

// MatchResult designates the winning side of a match, from the perspective
// of the stored player order (jugador1 / jugador2).
type MatchResult string

const (
	ResultPlayer1Win MatchResult = "victoria_jugador1"
	ResultPlayer2Win MatchResult = "victoria_jugador2"
	ResultDraw       MatchResult = "empate"
)

func (r MatchResult) Valid() bool {
	switch r {
	case ResultPlayer1Win, ResultPlayer2Win, ResultDraw:
		return true
	}
	return false
}

// Match is one recorded head-to-head game between two players and their
// decks. WinnerID is nil exactly when the result is a draw. ReportedByID is
// nil for admin-entered matches.
type Match struct {
	ID           int         `json:"id"`
	Player1ID    int         `json:"jugador1_id"`
	Player2ID    int         `json:"jugador2_id"`
	Deck1ID      int         `json:"mazo1_id"`
	Deck2ID      int         `json:"mazo2_id"`
	WinnerID     *int        `json:"ganador_id,omitempty"`
	Result       MatchResult `json:"resultado"`
	Notes        *string     `json:"notas,omitempty"`
	PlayedAt     time.Time   `json:"fecha_partida"`
	State        MatchState  `json:"estado,omitempty"`
	ReportedByID *int        `json:"usuario_registro_id,omitempty"`
}

// MatchSummary is a match joined with the display names the listings need.
type MatchSummary struct {
	ID           int         `json:"id"`
	PlayedAt     time.Time   `json:"fecha_partida"`
	Result       MatchResult `json:"resultado"`
	Notes        *string     `json:"notas,omitempty"`
	Player1ID    int         `json:"jugador1_id"`
	Player2ID    int         `json:"jugador2_id"`
	Player1Name  string      `json:"jugador1_nombre"`
	Player2Name  string      `json:"jugador2_nombre"`
	Deck1ID      int         `json:"mazo1_id"`
	Deck2ID      int         `json:"mazo2_id"`
	Deck1Name    string      `json:"mazo1_nombre"`
	Deck1Series  string      `json:"mazo1_serie"`
	Deck2Name    string      `json:"mazo2_nombre"`
	Deck2Series  string      `json:"mazo2_serie"`
	WinnerName   *string     `json:"ganador_nombre,omitempty"`
	State        MatchState  `json:"estado,omitempty"`
	ReportedByID *int        `json:"usuario_registro_id,omitempty"`
}

// Pagination mirrors the wire shape the frontend pagination widget expects.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
