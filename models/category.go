package models

import "time"

type Category struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Name         string    `json:"name"`
	Gender       Gender    `json:"gender"`
	Belt         Belt      `json:"belt"`
	AgeClass     string    `json:"age_class"`
	WeightClass  string    `json:"weight_class"`
	AthleteIDs   []int     `json:"athlete_ids"`
	CreatedAt    time.Time `json:"created_at"`
}
