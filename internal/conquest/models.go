package conquest

import (
	"backend-territorio/internal/activity"
	"backend-territorio/internal/territory"
)

// Rejection reasons distinguishable by callers; fraud rejections additionally
// carry the analyzer's reason and suspicion.
const (
	ReasonNewTerritory      = "new territory claimed"
	ReasonConquered         = "territory conquered"
	ReasonOpenPath          = "path does not enclose an area"
	ReasonInsufficientReach = "path length below required conquest distance"
	ReasonUnknownMode       = "unknown activity mode"
)

// Result is the complete outcome of one evaluated activity.
type Result struct {
	Accepted     bool                 `json:"accepted"`
	Reason       string               `json:"reason"`
	Suspicion    activity.Suspicion   `json:"suspicion,omitempty"`
	Territory    *territory.Territory `json:"territory,omitempty"`
	StarsAwarded int64                `json:"stars_awarded"`
	NewLevel     int                  `json:"new_level"`
	LeveledUp    bool                 `json:"leveled_up"`
	PathKm       float64              `json:"path_km"`
	AreaM2       float64              `json:"area_m2"`
}
