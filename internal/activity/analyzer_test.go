package activity

import (
	"math"
	"testing"

	"backend-territorio/internal/shared/geo"
)

// pathAtSpeed builds a straight equator path whose segments all move at the
// given speed, one fix per minute.
func pathAtSpeed(kmh float64, segments int) []geo.Coordinate {
	kmPerMinute := kmh / 60
	degPerMinute := kmPerMinute / 111.32
	path := make([]geo.Coordinate, 0, segments+1)
	for i := 0; i <= segments; i++ {
		path = append(path, geo.Coordinate{
			Lng:              float64(i) * degPerMinute,
			CapturedAtMillis: int64(i) * 60_000,
		})
	}
	return path
}

func TestSegmentSpeeds(t *testing.T) {
	if SegmentSpeeds(nil) != nil {
		t.Fatalf("no segments for empty path")
	}

	path := pathAtSpeed(12, 4)
	speeds := SegmentSpeeds(path)
	if len(speeds) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(speeds))
	}
	for _, s := range speeds {
		if math.Abs(s-12) > 0.2 {
			t.Fatalf("unexpected segment speed: %v", s)
		}
	}
}

func TestSegmentSpeedsZeroDelta(t *testing.T) {
	path := []geo.Coordinate{
		{Lng: 0, CapturedAtMillis: 1000},
		{Lng: 0.01, CapturedAtMillis: 1000},
	}
	speeds := SegmentSpeeds(path)
	if len(speeds) != 1 || speeds[0] != 0 {
		t.Fatalf("zero time delta must contribute zero speed: %v", speeds)
	}
}

func TestAverageSpeedFilters(t *testing.T) {
	// Jitter and glitch samples are dropped, the rest averaged.
	avg := AverageSpeed([]float64{0.2, 10, 20, 400})
	if math.Abs(avg-15) > 1e-9 {
		t.Fatalf("unexpected average: %v", avg)
	}
	if AverageSpeed([]float64{0.1, 500}) != 0 {
		t.Fatalf("nothing survives the filter, average must be zero")
	}
	if AverageSpeed(nil) != 0 {
		t.Fatalf("empty input, average must be zero")
	}
}

func TestMaxSustainedSpeedSmoothsSpikes(t *testing.T) {
	// A single 300 km/h spike amid 10 km/h samples must not produce a
	// sustained speed anywhere near the spike.
	sustained := MaxSustainedSpeed([]float64{10, 10, 300, 10, 10})
	if sustained > 11 {
		t.Fatalf("spike leaked into sustained speed: %v", sustained)
	}

	sustained = MaxSustainedSpeed([]float64{10, 90, 90, 90, 10})
	if math.Abs(sustained-90) > 1e-9 {
		t.Fatalf("expected sustained 90, got %v", sustained)
	}
}

func TestMaxSustainedSpeedShortPath(t *testing.T) {
	if got := MaxSustainedSpeed([]float64{600}); got != 600 {
		t.Fatalf("short paths keep their raw average: %v", got)
	}
	if MaxSustainedSpeed(nil) != 0 {
		t.Fatalf("no segments, no sustained speed")
	}
}

func TestAnalyzeMotorized(t *testing.T) {
	// Two points 10 km apart, 60 seconds elapsed: 600 km/h.
	path := []geo.Coordinate{
		{Lng: 0, CapturedAtMillis: 0},
		{Lng: 10.0 / 111.32, CapturedAtMillis: 60_000},
	}
	v := Analyze(path, ModeRunning)
	if v.Valid {
		t.Fatalf("expected invalid verdict")
	}
	if v.Reason != ReasonMotorized {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
	if v.Suspicion != SuspicionHigh {
		t.Fatalf("expected high suspicion")
	}
}

func TestAnalyzeModeMismatch(t *testing.T) {
	// 55 km/h sustained is under the fraud cutoff but over the running
	// ceiling, and fine for cycling.
	path := pathAtSpeed(55, 6)

	v := Analyze(path, ModeRunning)
	if v.Valid || v.Reason != ReasonModeMismatch {
		t.Fatalf("expected mode mismatch, got %+v", v)
	}

	v = Analyze(path, ModeCycling)
	if !v.Valid {
		t.Fatalf("cycling at 55 km/h must be valid, got %+v", v)
	}
}

func TestAnalyzeValidRun(t *testing.T) {
	v := Analyze(pathAtSpeed(10, 8), ModeRunning)
	if !v.Valid || v.Suspicion != SuspicionLow {
		t.Fatalf("expected valid low-suspicion verdict, got %+v", v)
	}
	if v.AvgKmh < 9 || v.AvgKmh > 11 {
		t.Fatalf("unexpected average: %v", v.AvgKmh)
	}
}

func TestProfileFor(t *testing.T) {
	if ProfileFor(ModeCycling).RewardMultiplier != 0.6 {
		t.Fatalf("unexpected cycling multiplier")
	}
	if ProfileFor(Mode("swimming")).MaxAvgSpeedKmh != 45 {
		t.Fatalf("unknown modes fall back to running")
	}
	if Mode("swimming").Valid() {
		t.Fatalf("unknown mode must not validate")
	}
}
