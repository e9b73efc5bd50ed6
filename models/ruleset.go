package models

import "time"

// PointsConfig is the point schedule a rule set assigns to positional scores.
// Advantage and penalty are counters only and carry no point value.
type PointsConfig struct {
	Takedown    int `json:"takedown"`
	Sweep       int `json:"sweep"`
	KneeOnBelly int `json:"knee_on_belly"`
	GuardPass   int `json:"guard_pass"`
	Mount       int `json:"mount"`
	BackTake    int `json:"back_take"`
	Advantage   int `json:"advantage"`
	Penalty     int `json:"penalty"`
}

type RuleSet struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	DurationSeconds int          `json:"duration_seconds"`
	Points          PointsConfig `json:"points"`
	Description     *string      `json:"description,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// DefaultPointsConfig is the IBJJF schedule used whenever a match's rule set
// cannot be resolved; scoring never fails for lack of configuration.
func DefaultPointsConfig() PointsConfig {
	return PointsConfig{
		Takedown:    2,
		Sweep:       2,
		KneeOnBelly: 2,
		GuardPass:   3,
		Mount:       4,
		BackTake:    4,
		Advantage:   0,
		Penalty:     0,
	}
}
