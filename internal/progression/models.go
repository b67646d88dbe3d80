package progression

// State is what callers see of a player's progression. Level and progress
// are derived from the star total, never stored.
type State struct {
	PlayerID     string  `json:"player_id"`
	TotalStars   int64   `json:"total_stars"`
	Level        int     `json:"level"`
	Progress     float64 `json:"progress"`
	StarsForNext int64   `json:"stars_for_next"`
}
