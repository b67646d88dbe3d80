package territory

import (
	"context"
	"encoding/json"

	"backend-territorio/internal/db"
	"backend-territorio/internal/shared/geo"
)

// candidateBufferKm pads the candidate search radius so territories whose
// anchor sits just outside the path's extent are still considered.
const candidateBufferKm = 0.5

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, id string) (Territory, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, owner_name, COALESCE(previous_owner_id, ''), polygon,
		       value, conquest_count, original_distance_km, claimed_at_millis
		FROM territories WHERE id=$1
	`, id)
	return scanTerritory(row)
}

// Near returns territories whose anchor point lies within radiusKm of the
// given fix, newest claims first.
func (s *Service) Near(ctx context.Context, lat, lng, radiusKm float64) ([]Territory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, owner_name, COALESCE(previous_owner_id, ''), polygon,
		       value, conquest_count, original_distance_km, claimed_at_millis
		FROM territories
		WHERE ST_DWithin(anchor, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY claimed_at_millis DESC
	`, lng, lat, radiusKm*1000)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Territory
	for rows.Next() {
		tr, err := scanTerritory(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, tr)
	}
	return results, nil
}

// CandidatesForPath searches around the path's first fix with a radius
// covering the whole path. The overlap test downstream does the real
// filtering; this only bounds the candidate set.
func (s *Service) CandidatesForPath(ctx context.Context, path []geo.Coordinate) ([]Territory, error) {
	if len(path) == 0 {
		return nil, nil
	}
	radius := candidateBufferKm
	for _, p := range path[1:] {
		if d := geo.DistanceKm(path[0], p); d+candidateBufferKm > radius {
			radius = d + candidateBufferKm
		}
	}
	return s.Near(ctx, path[0].Lat, path[0].Lng, radius)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTerritory(row rowScanner) (Territory, error) {
	var tr Territory
	var polygonJSON []byte
	err := row.Scan(&tr.ID, &tr.OwnerID, &tr.OwnerName, &tr.PreviousOwnerID, &polygonJSON,
		&tr.Value, &tr.ConquestCount, &tr.OriginalDistanceKm, &tr.ClaimedAtMillis)
	if err != nil {
		return Territory{}, err
	}
	if len(polygonJSON) > 0 {
		if err := json.Unmarshal(polygonJSON, &tr.Polygon); err != nil {
			return Territory{}, err
		}
	}
	return tr, nil
}
