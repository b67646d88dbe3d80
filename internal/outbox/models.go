package outbox

import (
	"errors"

	"backend-territorio/internal/shared/geo"
)

// Kind discriminates the closed set of mutation payloads.
type Kind string

const (
	KindCreateClaim       Kind = "create_claim"
	KindTransferOwnership Kind = "transfer_ownership"
	KindCreditStars       Kind = "credit_stars"
)

// ClaimPayload creates a territory at the remote store. Replaying it must
// upsert, never duplicate.
type ClaimPayload struct {
	TerritoryID        string           `json:"territory_id"`
	OwnerID            string           `json:"owner_id"`
	OwnerName          string           `json:"owner_name"`
	Polygon            []geo.Coordinate `json:"polygon"`
	Value              int              `json:"value"`
	OriginalDistanceKm float64          `json:"original_distance_km"`
	ClaimedAtMillis    int64            `json:"claimed_at_millis"`
}

// TransferPayload moves ownership of an existing territory. NewConquestCount
// carries the count after this conquest so a replay is recognizable.
type TransferPayload struct {
	TerritoryID      string `json:"territory_id"`
	NewOwnerID       string `json:"new_owner_id"`
	NewOwnerName     string `json:"new_owner_name"`
	PreviousOwnerID  string `json:"previous_owner_id"`
	NewConquestCount int    `json:"new_conquest_count"`
	ClaimedAtMillis  int64  `json:"claimed_at_millis"`
}

// CreditPayload adds stars to a player. Not naturally idempotent; the remote
// store deduplicates by mutation id.
type CreditPayload struct {
	PlayerID string `json:"player_id"`
	Stars    int64  `json:"stars"`
}

// Mutation is one not-yet-acknowledged state change. Exactly one payload
// field matching Kind is set.
type Mutation struct {
	ID               string           `json:"id"`
	Kind             Kind             `json:"kind"`
	EnqueuedAtMillis int64            `json:"enqueued_at_millis"`
	AttemptCount     int              `json:"attempt_count"`
	Claim            *ClaimPayload    `json:"claim,omitempty"`
	Transfer         *TransferPayload `json:"transfer,omitempty"`
	Credit           *CreditPayload   `json:"credit,omitempty"`
}

// Validate checks that the mutation carries the payload its kind promises.
func (m Mutation) Validate() error {
	switch m.Kind {
	case KindCreateClaim:
		if m.Claim == nil {
			return errors.New("create_claim mutation without claim payload")
		}
	case KindTransferOwnership:
		if m.Transfer == nil {
			return errors.New("transfer_ownership mutation without transfer payload")
		}
	case KindCreditStars:
		if m.Credit == nil {
			return errors.New("credit_stars mutation without credit payload")
		}
	default:
		return errors.New("unknown mutation kind")
	}
	return nil
}

// PlayerID is the player a mutation concerns, used for sync-status fan-out.
func (m Mutation) PlayerID() string {
	switch {
	case m.Claim != nil:
		return m.Claim.OwnerID
	case m.Transfer != nil:
		return m.Transfer.NewOwnerID
	case m.Credit != nil:
		return m.Credit.PlayerID
	}
	return ""
}
