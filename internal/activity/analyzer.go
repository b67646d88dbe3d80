package activity

import "backend-territorio/internal/shared/geo"

const (
	// Speeds below this are GPS jitter while standing still.
	stationaryKmh = 1.0
	// Speeds above this are single-sample GPS glitches.
	glitchKmh = 150.0
	// Sustained speeds above this mean a vehicle, whatever the mode.
	fraudKmh = 80.0
	// Sliding window width for the sustained-speed check.
	windowSize = 3
)

// SegmentSpeeds returns the km/h speed of every consecutive pair of fixes.
// Segments with no elapsed time contribute zero speed.
func SegmentSpeeds(path []geo.Coordinate) []float64 {
	if len(path) < 2 {
		return nil
	}
	speeds := make([]float64, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		dtHours := float64(path[i].CapturedAtMillis-path[i-1].CapturedAtMillis) / 3600000.0
		if dtHours <= 0 {
			speeds = append(speeds, 0)
			continue
		}
		speeds = append(speeds, geo.DistanceKm(path[i-1], path[i])/dtHours)
	}
	return speeds
}

// AverageSpeed is the mean of the plausible samples: jitter below 1 km/h and
// glitches above 150 km/h are dropped. Zero when nothing survives the filter.
func AverageSpeed(speeds []float64) float64 {
	sum, n := 0.0, 0
	for _, s := range speeds {
		if s < stationaryKmh || s > glitchKmh {
			continue
		}
		sum += s
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MaxSustainedSpeed slides a 3-segment window over the speeds and returns the
// highest window average among windows whose members are all below the glitch
// cutoff. A raw max would flag single GPS spikes; the window does not. Paths
// too short to fill a window cannot be smoothed, so their raw average stands.
func MaxSustainedSpeed(speeds []float64) float64 {
	if len(speeds) == 0 {
		return 0
	}
	if len(speeds) < windowSize {
		sum := 0.0
		for _, s := range speeds {
			sum += s
		}
		return sum / float64(len(speeds))
	}
	max := 0.0
	for i := 0; i+windowSize <= len(speeds); i++ {
		sum, clean := 0.0, true
		for _, s := range speeds[i : i+windowSize] {
			if s >= glitchKmh {
				clean = false
				break
			}
			sum += s
		}
		if !clean {
			continue
		}
		if avg := sum / windowSize; avg > max {
			max = avg
		}
	}
	return max
}

// Analyze classifies a finished path against its declared mode. Rules are
// evaluated in order: sustained speed above the fraud cutoff, then average
// speed above the mode ceiling. Pure: the caller decides what a rejection
// costs the player.
func Analyze(path []geo.Coordinate, mode Mode) Verdict {
	speeds := SegmentSpeeds(path)
	avg := AverageSpeed(speeds)
	sustained := MaxSustainedSpeed(speeds)

	if sustained > fraudKmh {
		return Verdict{Reason: ReasonMotorized, Suspicion: SuspicionHigh, AvgKmh: avg, SustainedKmh: sustained}
	}
	if avg > ProfileFor(mode).MaxAvgSpeedKmh {
		return Verdict{Reason: ReasonModeMismatch, Suspicion: SuspicionHigh, AvgKmh: avg, SustainedKmh: sustained}
	}
	return Verdict{Valid: true, Suspicion: SuspicionLow, AvgKmh: avg, SustainedKmh: sustained}
}
