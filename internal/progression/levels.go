package progression

import "math"

const (
	baseLevelCost  = 100
	levelCostRatio = 1.5
)

// StarsForLevel is the cost of completing level l, i.e. going from l to l+1.
// Levels below 1 are treated as level 1.
func StarsForLevel(l int) int64 {
	if l < 1 {
		l = 1
	}
	return int64(math.Floor(baseLevelCost * math.Pow(levelCostRatio, float64(l-1))))
}

// CumulativeThreshold is the total star count at which level l begins.
// Level 1 begins at zero.
func CumulativeThreshold(l int) int64 {
	total := int64(0)
	for i := 1; i < l; i++ {
		total += StarsForLevel(i)
	}
	return total
}

// LevelOf walks the curve upward until the next threshold is out of reach.
// The walk is deliberate: a closed-form inverse of the geometric curve is
// easy to get wrong at integer boundaries.
func LevelOf(totalStars int64) int {
	if totalStars < 0 {
		return 1
	}
	level := 1
	remaining := totalStars
	for remaining >= StarsForLevel(level) {
		remaining -= StarsForLevel(level)
		level++
	}
	return level
}

// LevelProgress is the fraction of the current level already earned,
// clamped to [0,1].
func LevelProgress(totalStars int64) float64 {
	if totalStars < 0 {
		return 0
	}
	level := LevelOf(totalStars)
	into := totalStars - CumulativeThreshold(level)
	need := StarsForLevel(level)
	if need <= 0 {
		return 1
	}
	p := float64(into) / float64(need)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
