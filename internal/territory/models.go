package territory

import "backend-territorio/internal/shared/geo"

// Territory is an owned polygon on the map, created by a qualifying
// closed-loop activity. conquest_count only ever grows and
// original_distance_km is fixed at creation: it anchors the difficulty
// curve for every later conquest.
type Territory struct {
	ID                 string           `json:"id"`
	OwnerID            string           `json:"owner_id"`
	OwnerName          string           `json:"owner_name"`
	PreviousOwnerID    string           `json:"previous_owner_id,omitempty"`
	Polygon            []geo.Coordinate `json:"polygon"`
	Value              int              `json:"value"`
	ConquestCount      int              `json:"conquest_count"`
	OriginalDistanceKm float64          `json:"original_distance_km"`
	ClaimedAtMillis    int64            `json:"claimed_at_millis"`
}
