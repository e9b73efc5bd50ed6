package models

import "time"

type Belt string

const (
	BeltWhite  Belt = "White"
	BeltBlue   Belt = "Blue"
	BeltPurple Belt = "Purple"
	BeltBrown  Belt = "Brown"
	BeltBlack  Belt = "Black"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// AthleteStats are career counters, incremented when a match ends.
type AthleteStats struct {
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	Submissions  int `json:"submissions"`
	PointsScored int `json:"points_scored"`
}

type Athlete struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Nickname  *string    `json:"nickname,omitempty"`
	Academy   string     `json:"academy"`
	Belt      Belt       `json:"belt"`
	Weight    float64    `json:"weight"`
	Gender    Gender     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Age       int        `json:"age"`

	PhotoKey *string `json:"-"`
	PhotoURL *string `json:"photo_url,omitempty"`

	Stats AthleteStats `json:"stats"`
	// RankingPoints is the cumulative ranking total, Balance the spendable
	// one. A win credits the same award to both.
	RankingPoints int `json:"ranking_points"`
	Balance       int `json:"balance"`

	CreatedAt time.Time `json:"created_at"`
}

// AthleteStatsDelta is applied atomically by the athlete repository when a
// match result is recorded.
type AthleteStatsDelta struct {
	Wins          int
	Losses        int
	Submissions   int
	PointsScored  int
	RankingPoints int
	Balance       int
}
