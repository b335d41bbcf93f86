package models

// PlayerStats are derived, never stored. Winrate is nil when the player has
// no counted matches; it is never reported as zero-division.
type PlayerStats struct {
	ID           int      `json:"id"`
	Name         string   `json:"nombre"`
	TotalMatches int      `json:"total_partidas"`
	Wins         int      `json:"victorias"`
	Draws        int      `json:"empates"`
	Losses       int      `json:"derrotas"`
	Winrate      *float64 `json:"winrate"`
}

type DeckStats struct {
	ID           int      `json:"id"`
	Name         string   `json:"nombre"`
	Series       string   `json:"serie"`
	TotalMatches int      `json:"total_partidas"`
	Wins         int      `json:"victorias"`
	Draws        int      `json:"empates"`
	Losses       int      `json:"derrotas"`
	Winrate      *float64 `json:"winrate"`
}
