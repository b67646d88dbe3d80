package activity

// Mode is the activity type declared by the player before starting. It fixes
// the speed profile used by validation and the reward multiplier used by
// scoring.
type Mode string

const (
	ModeRunning Mode = "running"
	ModeCycling Mode = "cycling"
)

// Suspicion grades how confident the analyzer is that a path is fraudulent.
type Suspicion string

const (
	SuspicionLow  Suspicion = "low"
	SuspicionHigh Suspicion = "high"
)

const (
	ReasonMotorized    = "motorized transport suspected"
	ReasonModeMismatch = "speed incompatible with declared mode"
)

// Profile holds the per-mode tuning used by validation and scoring.
type Profile struct {
	MaxAvgSpeedKmh   float64
	RewardMultiplier float64
}

var profiles = map[Mode]Profile{
	ModeRunning: {MaxAvgSpeedKmh: 45, RewardMultiplier: 1.0},
	ModeCycling: {MaxAvgSpeedKmh: 60, RewardMultiplier: 0.6},
}

// ProfileFor returns the tuning for a mode. Unknown modes fall back to the
// running profile, the strictest one.
func ProfileFor(mode Mode) Profile {
	if p, ok := profiles[mode]; ok {
		return p
	}
	return profiles[ModeRunning]
}

// Valid reports whether the mode is one the engine knows.
func (m Mode) Valid() bool {
	_, ok := profiles[m]
	return ok
}

// Verdict is the terminal classification of one path. Fraud decisions are
// never retried.
type Verdict struct {
	Valid        bool      `json:"valid"`
	Reason       string    `json:"reason,omitempty"`
	Suspicion    Suspicion `json:"suspicion"`
	AvgKmh       float64   `json:"avg_kmh"`
	SustainedKmh float64   `json:"sustained_kmh"`
}
