package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "Scheduled"
	MatchStatusOngoing   MatchStatus = "Ongoing"
	MatchStatusFinished  MatchStatus = "Finished"
)

type BracketSegment string

const (
	SegmentWinner BracketSegment = "Winner"
	SegmentLoser  BracketSegment = "Loser"
)

// VictoryMethod describes how a match was decided. Submission carries a
// ranking bonus on top of the base award.
type VictoryMethod string

const (
	MethodPoints     VictoryMethod = "Points"
	MethodSubmission VictoryMethod = "Submission"
	MethodDecision   VictoryMethod = "Decision"
	MethodWalkover   VictoryMethod = "Walkover"
)

// Match is the persisted live-match record. Score is always derived from
// EventLog; the two are never updated independently of each other.
type Match struct {
	ID           int  `json:"id"`
	TournamentID int  `json:"tournament_id"`
	CategoryID   int  `json:"category_id"`
	Athlete1ID   *int `json:"athlete1_id,omitempty"`
	Athlete2ID   *int `json:"athlete2_id,omitempty"`
	WinnerID     *int `json:"winner_id,omitempty"`

	Status   MatchStatus  `json:"status"`
	Score    MatchScore   `json:"score"`
	EventLog []MatchEvent `json:"event_log"`

	Round          int            `json:"round"`
	MatchNumber    int            `json:"match_number"`
	BracketSegment BracketSegment `json:"bracket_segment"`

	// Advancement linkage, resolved to DB match ids at bracket-save time.
	// WinnerToSlot / LoserToSlot are 1 or 2.
	NextMatchDBID      *int `json:"next_match_db_id,omitempty"`
	WinnerToSlot       *int `json:"winner_to_slot,omitempty"`
	LoserNextMatchDBID *int `json:"loser_next_match_db_id,omitempty"`
	LoserToSlot        *int `json:"loser_to_slot,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Linked data, populated by the service layer for responses.
	Athlete1 *Athlete `json:"athlete1,omitempty"`
	Athlete2 *Athlete `json:"athlete2,omitempty"`
}
