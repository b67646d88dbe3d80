package progression

import (
	"context"

	"backend-territorio/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// TotalStars reads the player's star balance. Unknown players have zero
// stars; the engine never fails a conquest over a missing progression row.
func (s *Service) TotalStars(ctx context.Context, playerID string) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(total_stars), 0) FROM players WHERE id=$1
	`, playerID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) State(ctx context.Context, playerID string) (State, error) {
	total, err := s.TotalStars(ctx, playerID)
	if err != nil {
		return State{}, err
	}
	level := LevelOf(total)
	return State{
		PlayerID:     playerID,
		TotalStars:   total,
		Level:        level,
		Progress:     LevelProgress(total),
		StarsForNext: StarsForLevel(level),
	}, nil
}
