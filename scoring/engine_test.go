package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ev(kind models.EventKind, side models.Side, offsetSec int) models.MatchEvent {
	return models.MatchEvent{Kind: kind, Side: side, Timestamp: base.Add(time.Duration(offsetSec) * time.Second)}
}

func TestComputeScoreIBJJFScenario(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		ev(models.EventTakedown, models.SideP1, 10),
		ev(models.EventGuardPass, models.SideP1, 40),
		ev(models.EventSweep, models.SideP2, 70),
	}

	score := ComputeScore(events, schedule)
	assert.Equal(t, 5, score.P1)
	assert.Equal(t, 2, score.P2)
}

func TestComputeScoreOrderIndependentInput(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		ev(models.EventMount, models.SideP1, 30),
		ev(models.EventTakedown, models.SideP1, 5),
		ev(models.EventSubMount, models.SideP1, 45),
		ev(models.EventBackTake, models.SideP2, 20),
	}

	// Replay is timestamp-ordered regardless of slice order.
	forward := ComputeScore(events, schedule)
	reversed := make([]models.MatchEvent, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	backward := ComputeScore(reversed, schedule)

	assert.Equal(t, forward, backward)
	assert.Equal(t, 2, forward.P1)
	assert.Equal(t, 4, forward.P2)
}

func TestComputeScoreFloorsAtZeroPerEvent(t *testing.T) {
	schedule := models.DefaultPointsConfig()

	// Subtracting 4 from 2 floors to 0; the later takedown builds on 0.
	events := []models.MatchEvent{
		ev(models.EventTakedown, models.SideP1, 0),
		ev(models.EventSubMount, models.SideP1, 10),
		ev(models.EventTakedown, models.SideP1, 20),
	}
	score := ComputeScore(events, schedule)
	assert.Equal(t, 2, score.P1)
}

func TestComputeScoreGenericPoints(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		{Kind: models.EventPoints, Side: models.SideP2, Timestamp: base, Points: 7},
		{Kind: models.EventSubPoints, Side: models.SideP2, Timestamp: base.Add(time.Second), Points: 3},
	}
	score := ComputeScore(events, schedule)
	assert.Equal(t, 4, score.P2)
}

func TestComputeScoreAdvantagesAndPenalties(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		ev(models.EventAdvantage, models.SideP1, 0),
		ev(models.EventAdvantage, models.SideP1, 10),
		ev(models.EventSubAdvantage, models.SideP1, 20),
		ev(models.EventPenalty, models.SideP2, 30),
		ev(models.EventSubPenalty, models.SideP2, 40),
		ev(models.EventSubPenalty, models.SideP2, 50),
	}

	score := ComputeScore(events, schedule)
	assert.Equal(t, 1, score.P1Adv)
	assert.Equal(t, 0, score.P2Pen)
	// Counters never go negative and never add points.
	assert.Equal(t, 0, score.P1)
	assert.Equal(t, 0, score.P2)
}

func TestComputeScoreIgnoresUndoAndUnknownKinds(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		ev(models.EventTakedown, models.SideP1, 0),
		ev(models.EventUndo, models.SideP1, 10),
		ev(models.EventKind("cartwheel"), models.SideP1, 20),
	}
	score := ComputeScore(events, schedule)
	assert.Equal(t, 2, score.P1)
}

func TestComputeScoreIsPure(t *testing.T) {
	schedule := models.DefaultPointsConfig()
	events := []models.MatchEvent{
		ev(models.EventSweep, models.SideP2, 20),
		ev(models.EventTakedown, models.SideP1, 10),
	}
	snapshot := make([]models.MatchEvent, len(events))
	copy(snapshot, events)

	first := ComputeScore(events, schedule)
	second := ComputeScore(events, schedule)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, events, "input slice must not be reordered")
}

func TestComputeScoreCustomSchedule(t *testing.T) {
	schedule := models.PointsConfig{Takedown: 5, GuardPass: 1}
	events := []models.MatchEvent{
		ev(models.EventTakedown, models.SideP1, 0),
		ev(models.EventGuardPass, models.SideP1, 10),
	}
	score := ComputeScore(events, schedule)
	assert.Equal(t, 6, score.P1)
}
