// Package scoring derives match scores from event logs. It is pure: the
// same log and schedule always produce the same snapshot, and recomputing
// never mutates its inputs.
package scoring

import (
	"sort"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

// ComputeScore replays events against a point schedule into a score
// snapshot. Events are re-sorted by timestamp before replay regardless of
// the order the caller hands them in; relative timestamp order is the only
// order that matters.
//
// Undo is not an event: the caller pops the log entry before calling. An
// EventUndo reaching this function is ignored.
func ComputeScore(events []models.MatchEvent, schedule models.PointsConfig) models.MatchScore {
	sorted := make([]models.MatchEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var score models.MatchScore
	for _, ev := range sorted {
		applyEvent(&score, ev, schedule)
	}
	return score
}

// applyEvent folds one event into the running score. Point totals and the
// advantage/penalty counters floor at zero after every event: a later
// addition builds on zero, not on a would-be-negative value.
func applyEvent(score *models.MatchScore, ev models.MatchEvent, schedule models.PointsConfig) {
	isP1 := ev.Side == models.SideP1

	var points int
	switch ev.Kind {
	case models.EventTakedown:
		points = schedule.Takedown
	case models.EventSubTakedown:
		points = -schedule.Takedown
	case models.EventSweep:
		points = schedule.Sweep
	case models.EventSubSweep:
		points = -schedule.Sweep
	case models.EventKneeOnBelly:
		points = schedule.KneeOnBelly
	case models.EventSubKneeOnBelly:
		points = -schedule.KneeOnBelly
	case models.EventGuardPass:
		points = schedule.GuardPass
	case models.EventSubGuardPass:
		points = -schedule.GuardPass
	case models.EventMount:
		points = schedule.Mount
	case models.EventSubMount:
		points = -schedule.Mount
	case models.EventBackTake:
		points = schedule.BackTake
	case models.EventSubBackTake:
		points = -schedule.BackTake
	case models.EventPoints:
		points = ev.Points
	case models.EventSubPoints:
		points = -ev.Points

	case models.EventAdvantage:
		if isP1 {
			score.P1Adv++
		} else {
			score.P2Adv++
		}
		return
	case models.EventSubAdvantage:
		if isP1 {
			score.P1Adv = floorZero(score.P1Adv - 1)
		} else {
			score.P2Adv = floorZero(score.P2Adv - 1)
		}
		return
	case models.EventPenalty:
		if isP1 {
			score.P1Pen++
		} else {
			score.P2Pen++
		}
		return
	case models.EventSubPenalty:
		if isP1 {
			score.P1Pen = floorZero(score.P1Pen - 1)
		} else {
			score.P2Pen = floorZero(score.P2Pen - 1)
		}
		return

	default:
		return
	}

	if isP1 {
		score.P1 = floorZero(score.P1 + points)
	} else {
		score.P2 = floorZero(score.P2 + points)
	}
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
