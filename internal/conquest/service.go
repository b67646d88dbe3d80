package conquest

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"backend-territorio/internal/activity"
	"backend-territorio/internal/outbox"
	"backend-territorio/internal/progression"
	"backend-territorio/internal/shared/geo"
	"backend-territorio/internal/territory"

	"github.com/google/uuid"
)

const (
	minOverlapPercent = 50.0
	minLoopPoints     = 3
	// Each prior conquest raises the required distance 10%, linearly.
	requiredScalePerConquest = 0.10

	rewardBaseClaim    = 50.0
	rewardBaseReclaim  = 30.0
	reconquestBonus    = 25.0
	starsPerKm         = 10.0
	nightBonus         = 20.0
	largeAreaBonus     = 30.0
	largeAreaM2        = 10000.0
	disputePerConquest = 10.0
)

// Sink is where decided mutations go. *outbox.Queue satisfies it.
type Sink interface {
	Submit(ctx context.Context, m outbox.Mutation) error
}

// StarSource reads a player's current star total. *progression.Service
// satisfies it.
type StarSource interface {
	TotalStars(ctx context.Context, playerID string) (int64, error)
}

type Service struct {
	queue Sink
	stars StarSource
}

func NewService(queue Sink, stars StarSource) *Service {
	return &Service{queue: queue, stars: stars}
}

// EvaluateActivity is the conquest decision procedure: integrity gate first,
// then overlap targeting, then create-or-transfer with reward composition.
// The decision itself is synchronous and deterministic; only the emitted
// mutations can be deferred by the queue.
func (s *Service) EvaluateActivity(ctx context.Context, path []geo.Coordinate, mode activity.Mode, playerID, playerName string, candidates []territory.Territory) Result {
	if !mode.Valid() {
		return Result{Reason: ReasonUnknownMode, Suspicion: activity.SuspicionLow}
	}

	verdict := activity.Analyze(path, mode)
	if !verdict.Valid {
		return Result{Reason: verdict.Reason, Suspicion: verdict.Suspicion}
	}

	pathKm := geo.PathLengthKm(path)
	areaM2 := geo.PolygonAreaM2(path)

	targets := qualifyingTargets(path, candidates)
	if len(targets) == 0 {
		return s.createClaim(ctx, path, mode, playerID, playerName, pathKm, areaM2)
	}

	for _, target := range targets {
		required := RequiredDistanceKm(target.territory)
		if pathKm < required {
			continue
		}
		return s.transferOwnership(ctx, target.territory, mode, playerID, playerName, pathKm, areaM2, lastFixTime(path))
	}

	return Result{
		Reason:    ReasonInsufficientReach,
		Suspicion: activity.SuspicionLow,
		PathKm:    pathKm,
		AreaM2:    areaM2,
	}
}

// RequiredDistanceKm is the distance a challenger has to cover to take the
// territory: the founding distance raised 10% per prior conquest.
func RequiredDistanceKm(t territory.Territory) float64 {
	return t.OriginalDistanceKm * (1 + requiredScalePerConquest*float64(t.ConquestCount))
}

type overlapTarget struct {
	territory territory.Territory
	overlap   float64
}

// qualifyingTargets keeps candidates the path overlaps at 50% or more,
// ordered by descending overlap. The sort is stable so equally-overlapped
// candidates keep their supplied order.
func qualifyingTargets(path []geo.Coordinate, candidates []territory.Territory) []overlapTarget {
	var targets []overlapTarget
	for _, c := range candidates {
		overlap := geo.PathOverlapPercent(path, c.Polygon)
		if overlap >= minOverlapPercent {
			targets = append(targets, overlapTarget{territory: c, overlap: overlap})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].overlap > targets[j].overlap
	})
	return targets
}

func (s *Service) createClaim(ctx context.Context, path []geo.Coordinate, mode activity.Mode, playerID, playerName string, pathKm, areaM2 float64) Result {
	if len(path) < minLoopPoints || areaM2 <= 0 {
		return Result{
			Reason:    ReasonOpenPath,
			Suspicion: activity.SuspicionLow,
			PathKm:    pathKm,
			AreaM2:    areaM2,
		}
	}

	now := lastFixTime(path)
	stars := composeReward(mode, pathKm, areaM2, 0, false, now)
	starsBefore, starsKnown := s.currentStars(ctx, playerID)

	created := territory.Territory{
		ID:                 uuid.NewString(),
		OwnerID:            playerID,
		OwnerName:          playerName,
		Polygon:            path,
		Value:              int(stars),
		ConquestCount:      0,
		OriginalDistanceKm: pathKm,
		ClaimedAtMillis:    now.UnixMilli(),
	}

	s.submit(ctx, outbox.Mutation{
		Kind: outbox.KindCreateClaim,
		Claim: &outbox.ClaimPayload{
			TerritoryID:        created.ID,
			OwnerID:            playerID,
			OwnerName:          playerName,
			Polygon:            path,
			Value:              created.Value,
			OriginalDistanceKm: pathKm,
			ClaimedAtMillis:    created.ClaimedAtMillis,
		},
	})
	s.creditStars(ctx, playerID, stars)

	newLevel, leveledUp := levelChange(starsBefore, stars, starsKnown)
	return Result{
		Accepted:     true,
		Reason:       ReasonNewTerritory,
		Suspicion:    activity.SuspicionLow,
		Territory:    &created,
		StarsAwarded: stars,
		NewLevel:     newLevel,
		LeveledUp:    leveledUp,
		PathKm:       pathKm,
		AreaM2:       areaM2,
	}
}

func (s *Service) transferOwnership(ctx context.Context, target territory.Territory, mode activity.Mode, playerID, playerName string, pathKm, areaM2 float64, now time.Time) Result {
	reclaiming := target.PreviousOwnerID != "" && target.PreviousOwnerID == playerID
	stars := composeReward(mode, pathKm, areaM2, target.ConquestCount, reclaiming, now)
	starsBefore, starsKnown := s.currentStars(ctx, playerID)

	updated := target
	updated.PreviousOwnerID = target.OwnerID
	updated.OwnerID = playerID
	updated.OwnerName = playerName
	updated.ConquestCount = target.ConquestCount + 1
	updated.ClaimedAtMillis = now.UnixMilli()

	s.submit(ctx, outbox.Mutation{
		Kind: outbox.KindTransferOwnership,
		Transfer: &outbox.TransferPayload{
			TerritoryID:      target.ID,
			NewOwnerID:       playerID,
			NewOwnerName:     playerName,
			PreviousOwnerID:  target.OwnerID,
			NewConquestCount: updated.ConquestCount,
			ClaimedAtMillis:  updated.ClaimedAtMillis,
		},
	})
	s.creditStars(ctx, playerID, stars)

	newLevel, leveledUp := levelChange(starsBefore, stars, starsKnown)
	return Result{
		Accepted:     true,
		Reason:       ReasonConquered,
		Suspicion:    activity.SuspicionLow,
		Territory:    &updated,
		StarsAwarded: stars,
		NewLevel:     newLevel,
		LeveledUp:    leveledUp,
		PathKm:       pathKm,
		AreaM2:       areaM2,
	}
}

// composeReward assembles the named reward components and applies the mode
// multiplier, flooring the total to whole stars.
func composeReward(mode activity.Mode, pathKm, areaM2 float64, priorConquests int, reclaiming bool, at time.Time) int64 {
	base := rewardBaseClaim
	total := 0.0
	if reclaiming {
		// Reclaiming one's own lost ground is less novel but still earns
		// the reconquest bonus.
		base = rewardBaseReclaim
		total += reconquestBonus
	}
	total += base
	total += starsPerKm * pathKm
	if isNightHour(at.Hour()) {
		total += nightBonus
	}
	if areaM2 > largeAreaM2 {
		total += largeAreaBonus
	}
	total += disputePerConquest * float64(priorConquests)

	total *= activity.ProfileFor(mode).RewardMultiplier
	return int64(math.Floor(total))
}

// Night is [22,24) and [0,6) in server-local time of the path's last fix.
func isNightHour(hour int) bool {
	return hour >= 22 || hour < 6
}

func lastFixTime(path []geo.Coordinate) time.Time {
	if len(path) == 0 {
		return time.Now()
	}
	return time.UnixMilli(path[len(path)-1].CapturedAtMillis)
}

func (s *Service) creditStars(ctx context.Context, playerID string, stars int64) {
	if stars <= 0 {
		return
	}
	s.submit(ctx, outbox.Mutation{
		Kind:   outbox.KindCreditStars,
		Credit: &outbox.CreditPayload{PlayerID: playerID, Stars: stars},
	})
}

func (s *Service) submit(ctx context.Context, m outbox.Mutation) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Submit(ctx, m); err != nil {
		log.Printf("mutation %s rejected by queue: %v", m.Kind, err)
	}
}

// currentStars reads the player's star total before the award is applied.
// Best-effort: a failing progression lookup never fails the conquest itself,
// but without a known balance no level-up is claimed.
func (s *Service) currentStars(ctx context.Context, playerID string) (int64, bool) {
	if s.stars == nil {
		return 0, false
	}
	total, err := s.stars.TotalStars(ctx, playerID)
	if err != nil {
		log.Printf("progression lookup for %s failed: %v", playerID, err)
		return 0, false
	}
	return total, true
}

// levelChange derives the post-award level. Without a known prior balance it
// reports level zero rather than a level guessed from an assumed zero total.
func levelChange(before, awarded int64, known bool) (int, bool) {
	if !known {
		return 0, false
	}
	newLevel := progression.LevelOf(before + awarded)
	return newLevel, newLevel > progression.LevelOf(before)
}
