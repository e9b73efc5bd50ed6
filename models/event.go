package models

import "time"

// EventKind is the closed set of scoring events a scorekeeper can submit.
// The sub_* kinds reverse their positive counterpart. EventUndo is a control
// operation only: it pops the last log entry and is never stored itself.
type EventKind string

const (
	EventTakedown    EventKind = "takedown"
	EventSweep       EventKind = "sweep"
	EventGuardPass   EventKind = "guardPass"
	EventKneeOnBelly EventKind = "kneeOnBelly"
	EventMount       EventKind = "mount"
	EventBackTake    EventKind = "backTake"

	EventSubTakedown    EventKind = "sub_takedown"
	EventSubSweep       EventKind = "sub_sweep"
	EventSubGuardPass   EventKind = "sub_guardPass"
	EventSubKneeOnBelly EventKind = "sub_kneeOnBelly"
	EventSubMount       EventKind = "sub_mount"
	EventSubBackTake    EventKind = "sub_backTake"

	// Generic point adjustments with an explicit magnitude.
	EventPoints    EventKind = "points"
	EventSubPoints EventKind = "sub_points"

	EventAdvantage    EventKind = "advantage"
	EventSubAdvantage EventKind = "sub_advantage"
	EventPenalty      EventKind = "penalty"
	EventSubPenalty   EventKind = "sub_penalty"

	EventUndo EventKind = "undo"
)

// Side names the competitor an event acts on, wire values "p1"/"p2".
type Side string

const (
	SideP1 Side = "p1"
	SideP2 Side = "p2"
)

type MatchEvent struct {
	Kind      EventKind `json:"type"`
	Side      Side      `json:"athlete_id"`
	Timestamp time.Time `json:"timestamp"`
	// Points is only meaningful for EventPoints / EventSubPoints.
	Points int `json:"points,omitempty"`
}

// MatchScore is the snapshot derived from a match's event log.
type MatchScore struct {
	P1    int `json:"p1"`
	P2    int `json:"p2"`
	P1Adv int `json:"p1_adv"`
	P2Adv int `json:"p2_adv"`
	P1Pen int `json:"p1_pen"`
	P2Pen int `json:"p2_pen"`
}

// IsValidEventKind reports whether k belongs to the closed event set,
// EventUndo included.
func IsValidEventKind(k EventKind) bool {
	switch k {
	case EventTakedown, EventSweep, EventGuardPass, EventKneeOnBelly, EventMount, EventBackTake,
		EventSubTakedown, EventSubSweep, EventSubGuardPass, EventSubKneeOnBelly, EventSubMount, EventSubBackTake,
		EventPoints, EventSubPoints,
		EventAdvantage, EventSubAdvantage, EventPenalty, EventSubPenalty,
		EventUndo:
		return true
	}
	return false
}
