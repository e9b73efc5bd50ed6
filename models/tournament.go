package models

import "time"

type TournamentStatus string

const (
	TournamentStatusPlanning     TournamentStatus = "Planning"
	TournamentStatusRegistration TournamentStatus = "Registration"
	TournamentStatusActive       TournamentStatus = "Active"
	TournamentStatusCompleted    TournamentStatus = "Completed"
)

type EliminationType string

const (
	SingleElimination EliminationType = "SingleElimination"
	DoubleElimination EliminationType = "DoubleElimination"
)

type Tournament struct {
	ID                 int              `json:"id"`
	Name               string           `json:"name"`
	Date               time.Time        `json:"date"`
	Location           string           `json:"location"`
	Status             TournamentStatus `json:"status"`
	RuleSetID          int              `json:"rule_set_id"`
	DefaultElimination EliminationType  `json:"default_elimination"`
	CreatedAt          time.Time        `json:"created_at"`

	RuleSet *RuleSet `json:"rule_set,omitempty"`
}
