package remote

import (
	"context"
	"encoding/json"
	"errors"

	"backend-territorio/internal/db"
	"backend-territorio/internal/outbox"
)

// Store applies mutations to Postgres. Every write is replay-safe: the queue
// delivers at least once, so a mutation that was accepted but not
// acknowledged will arrive again.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) SubmitMutation(ctx context.Context, m outbox.Mutation) error {
	if s.db == nil {
		return errors.New("remote store unavailable")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	switch m.Kind {
	case outbox.KindCreateClaim:
		return s.createClaim(ctx, *m.Claim)
	case outbox.KindTransferOwnership:
		return s.transferOwnership(ctx, *m.Transfer)
	case outbox.KindCreditStars:
		return s.creditStars(ctx, m.ID, *m.Credit)
	}
	return errors.New("unknown mutation kind")
}

// createClaim upserts by territory id: a replayed claim overwrites the same
// row instead of minting a duplicate territory.
func (s *Store) createClaim(ctx context.Context, p outbox.ClaimPayload) error {
	polygonJSON, err := json.Marshal(p.Polygon)
	if err != nil {
		return err
	}
	var anchorLat, anchorLng float64
	if len(p.Polygon) > 0 {
		anchorLat, anchorLng = p.Polygon[0].Lat, p.Polygon[0].Lng
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO territories (id, owner_id, owner_name, polygon, anchor, value, conquest_count, original_distance_km, claimed_at_millis)
		VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography, $7, 0, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET owner_id=EXCLUDED.owner_id, owner_name=EXCLUDED.owner_name,
		    value=EXCLUDED.value, claimed_at_millis=EXCLUDED.claimed_at_millis
	`, p.TerritoryID, p.OwnerID, p.OwnerName, polygonJSON, anchorLng, anchorLat,
		p.Value, p.OriginalDistanceKm, p.ClaimedAtMillis)
	return err
}

// transferOwnership only applies while the stored conquest count is below the
// mutation's. A replay, or a lost race against a later conquest, matches zero
// rows and is a no-op.
func (s *Store) transferOwnership(ctx context.Context, p outbox.TransferPayload) error {
	_, err := s.db.Exec(ctx, `
		UPDATE territories
		SET owner_id=$2, owner_name=$3, previous_owner_id=$4,
		    conquest_count=$5, claimed_at_millis=$6
		WHERE id=$1 AND conquest_count < $5
	`, p.TerritoryID, p.NewOwnerID, p.NewOwnerName, p.PreviousOwnerID,
		p.NewConquestCount, p.ClaimedAtMillis)
	return err
}

// creditStars deduplicates by mutation id. The dedup row and the balance
// update are one statement, so a delivery either pays in full or leaves no
// trace; a half-applied credit can never be acknowledged on replay.
func (s *Store) creditStars(ctx context.Context, mutationID string, p outbox.CreditPayload) error {
	_, err := s.db.Exec(ctx, `
		WITH ins AS (
			INSERT INTO star_credits (mutation_id, player_id, stars)
			VALUES ($1,$2,$3)
			ON CONFLICT (mutation_id) DO NOTHING
			RETURNING player_id, stars
		)
		INSERT INTO players (id, total_stars)
		SELECT player_id, stars FROM ins
		ON CONFLICT (id) DO UPDATE
		SET total_stars = players.total_stars + EXCLUDED.total_stars
	`, mutationID, p.PlayerID, p.Stars)
	return err
}
