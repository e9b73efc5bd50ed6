package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FedericoSorianox/TorneoBJJ/live"
	"github.com/FedericoSorianox/TorneoBJJ/models"
)

func intPtr(v int) *int { return &v }

type matchFixture struct {
	service MatchService
	matches *fakeMatchRepo
	repo    *fakeAthleteRepo
	hub     *fakeBroadcaster
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	athletes := newFakeAthleteRepo(
		&models.Athlete{ID: 1, Name: "Ana Souza"},
		&models.Athlete{ID: 2, Name: "Marcos Lima"},
		&models.Athlete{ID: 3, Name: "Pedro Alves"},
	)
	tournaments := newFakeTournamentRepo(&models.Tournament{ID: 1, RuleSetID: 1})
	ruleSets := newFakeRuleSetRepo(&models.RuleSet{ID: 1, Name: "IBJJF Adult", DurationSeconds: 300, Points: models.DefaultPointsConfig()})
	matches := newFakeMatchRepo()
	hub := &fakeBroadcaster{}
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))

	return &matchFixture{
		service: NewMatchService(matches, athletes, tournaments, ruleSets, hub, logger),
		matches: matches,
		repo:    athletes,
		hub:     hub,
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func (f *matchFixture) schedule(m *models.Match) *models.Match {
	if m.TournamentID == 0 {
		m.TournamentID = 1
	}
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	return f.matches.add(m)
}

func takedown(side models.Side) models.MatchEvent {
	return models.MatchEvent{Kind: models.EventTakedown, Side: side, Timestamp: time.Now().UTC()}
}

func TestSubmitEventAppendsAndScores(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	err := f.service.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1))
	require.NoError(t, err)

	stored, err := f.matches.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, stored.EventLog, 1)
	assert.Equal(t, 2, stored.Score.P1)
	assert.Equal(t, models.MatchStatusOngoing, stored.Status, "first event starts the match")

	calls := f.hub.callsFor(live.MatchRoom(m.ID))
	require.Len(t, calls, 1)
	msg, ok := calls[0].message.(live.Message)
	require.True(t, ok)
	assert.Equal(t, live.TypeMatchUpdate, msg.Type)
}

func TestSubmitEventRejectsInvalid(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	err := f.service.SubmitEvent(context.Background(), m.ID, models.MatchEvent{Kind: "cartwheel", Side: models.SideP1})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	err = f.service.SubmitEvent(context.Background(), m.ID, models.MatchEvent{Kind: models.EventTakedown, Side: "p3"})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Empty(t, stored.EventLog)
	assert.Empty(t, f.hub.callsFor(live.MatchRoom(m.ID)), "rejected events must not broadcast")
}

func TestSubmitEventUndoPopsLastEntry(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	require.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1)))
	require.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, takedown(models.SideP2)))
	require.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, models.MatchEvent{Kind: models.EventUndo}))

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Len(t, stored.EventLog, 1)
	assert.Equal(t, 2, stored.Score.P1)
	assert.Equal(t, 0, stored.Score.P2)
}

func TestSubmitEventUndoOnEmptyLogIsNoOp(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	err := f.service.SubmitEvent(context.Background(), m.ID, models.MatchEvent{Kind: models.EventUndo})
	require.NoError(t, err)

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Empty(t, stored.EventLog)
	assert.Equal(t, models.MatchScore{}, stored.Score)
}

func TestSubmitEventUndoDoesNotStartMatch(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	require.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, models.MatchEvent{Kind: models.EventUndo}))

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Equal(t, models.MatchStatusScheduled, stored.Status, "only a scoring event or timer start begins the match")
}

func TestSubmitEventUsesRuleSetSchedule(t *testing.T) {
	athletes := newFakeAthleteRepo(&models.Athlete{ID: 1}, &models.Athlete{ID: 2})
	tournaments := newFakeTournamentRepo(&models.Tournament{ID: 1, RuleSetID: 5})
	custom := models.DefaultPointsConfig()
	custom.Takedown = 10
	ruleSets := newFakeRuleSetRepo(&models.RuleSet{ID: 5, Name: "Local Open", DurationSeconds: 240, Points: custom})
	matches := newFakeMatchRepo()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewMatchService(matches, athletes, tournaments, ruleSets, &fakeBroadcaster{}, logger)

	m := matches.add(&models.Match{TournamentID: 1, Athlete1ID: intPtr(1), Athlete2ID: intPtr(2), Status: models.MatchStatusScheduled})
	require.NoError(t, svc.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1)))

	stored, _ := matches.GetByID(context.Background(), m.ID)
	assert.Equal(t, 10, stored.Score.P1)
}

func TestSubmitEventFallsBackToDefaultSchedule(t *testing.T) {
	athletes := newFakeAthleteRepo(&models.Athlete{ID: 1}, &models.Athlete{ID: 2})
	// The tournament points at a rule set that no longer exists.
	tournaments := newFakeTournamentRepo(&models.Tournament{ID: 1, RuleSetID: 99})
	matches := newFakeMatchRepo()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewMatchService(matches, athletes, tournaments, newFakeRuleSetRepo(), &fakeBroadcaster{}, logger)

	m := matches.add(&models.Match{TournamentID: 1, Athlete1ID: intPtr(1), Athlete2ID: intPtr(2), Status: models.MatchStatusScheduled})
	require.NoError(t, svc.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1)))

	stored, _ := matches.GetByID(context.Background(), m.ID)
	assert.Equal(t, 2, stored.Score.P1, "default schedule applies when the rule set cannot be resolved")
}

func TestSubmitEventOnFinishedMatch(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2), Status: models.MatchStatusFinished})

	err := f.service.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1))
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)
}

func TestSubmitEventUnknownMatch(t *testing.T) {
	f := newMatchFixture(t)
	err := f.service.SubmitEvent(context.Background(), 999, takedown(models.SideP1))
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestEndMatchAwardsAndAdvances(t *testing.T) {
	f := newMatchFixture(t)
	final := f.schedule(&models.Match{MatchNumber: 3, Round: 2})
	m := f.schedule(&models.Match{
		MatchNumber:   1,
		Athlete1ID:    intPtr(1),
		Athlete2ID:    intPtr(2),
		NextMatchDBID: intPtr(final.ID),
		WinnerToSlot:  intPtr(1),
	})

	require.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, takedown(models.SideP1)))
	require.NoError(t, f.service.EndMatch(context.Background(), m.ID, 1, models.MethodPoints))

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Equal(t, models.MatchStatusFinished, stored.Status)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, 1, *stored.WinnerID)

	winner, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, 1, winner.Stats.Wins)
	assert.Equal(t, 2, winner.Stats.PointsScored)
	assert.Equal(t, 100, winner.RankingPoints)
	assert.Equal(t, 100, winner.Balance)

	loser, _ := f.repo.GetByID(context.Background(), 2)
	assert.Equal(t, 1, loser.Stats.Losses)
	assert.Equal(t, 0, loser.RankingPoints)

	advanced, _ := f.matches.GetByID(context.Background(), final.ID)
	require.NotNil(t, advanced.Athlete1ID)
	assert.Equal(t, 1, *advanced.Athlete1ID)

	// Both the finished match room and the advanced match room hear about it.
	assert.NotEmpty(t, f.hub.callsFor(live.MatchRoom(m.ID)))
	assert.NotEmpty(t, f.hub.callsFor(live.MatchRoom(final.ID)))
}

func TestEndMatchSubmissionBonus(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	require.NoError(t, f.service.EndMatch(context.Background(), m.ID, 2, models.MethodSubmission))

	winner, _ := f.repo.GetByID(context.Background(), 2)
	assert.Equal(t, 150, winner.RankingPoints)
	assert.Equal(t, 150, winner.Balance)
	assert.Equal(t, 1, winner.Stats.Submissions)
}

func TestEndMatchLoserAdvancesToConsolation(t *testing.T) {
	f := newMatchFixture(t)
	consolation := f.schedule(&models.Match{MatchNumber: 4, BracketSegment: models.SegmentLoser})
	m := f.schedule(&models.Match{
		MatchNumber:        1,
		Athlete1ID:         intPtr(1),
		Athlete2ID:         intPtr(2),
		LoserNextMatchDBID: intPtr(consolation.ID),
		LoserToSlot:        intPtr(2),
	})

	require.NoError(t, f.service.EndMatch(context.Background(), m.ID, 1, models.MethodPoints))

	stored, _ := f.matches.GetByID(context.Background(), consolation.ID)
	require.NotNil(t, stored.Athlete2ID)
	assert.Equal(t, 2, *stored.Athlete2ID)
}

func TestEndMatchRejectsFinished(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	require.NoError(t, f.service.EndMatch(context.Background(), m.ID, 1, models.MethodPoints))
	err := f.service.EndMatch(context.Background(), m.ID, 1, models.MethodPoints)
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)

	// Ending twice must not double the award.
	winner, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, 100, winner.RankingPoints)
}

func TestEndMatchRejectsOutsideWinner(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	err := f.service.EndMatch(context.Background(), m.ID, 3, models.MethodPoints)
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.NotEqual(t, models.MatchStatusFinished, stored.Status)
}

func TestTimerActionValidation(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	err := f.service.TimerAction(context.Background(), m.ID, "rewind", 0)
	assert.ErrorIs(t, err, ErrInvalidTimerAction)

	require.NoError(t, f.service.TimerAction(context.Background(), m.ID, TimerStart, 300))

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Equal(t, models.MatchStatusOngoing, stored.Status, "starting the clock starts the match")

	calls := f.hub.callsFor(live.MatchRoom(m.ID))
	require.Len(t, calls, 1)
	msg := calls[0].message.(live.Message)
	assert.Equal(t, live.TypeTimerUpdate, msg.Type)
}

func TestSnapshotPopulatesAthletes(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	snap, err := f.service.Snapshot(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Athlete1)
	require.NotNil(t, snap.Athlete2)
	assert.Equal(t, "Ana Souza", snap.Athlete1.Name)
	assert.Equal(t, "Marcos Lima", snap.Athlete2.Name)
}

func TestConcurrentSubmitEventsSerialize(t *testing.T) {
	f := newMatchFixture(t)
	m := f.schedule(&models.Match{Athlete1ID: intPtr(1), Athlete2ID: intPtr(2)})

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ev := models.MatchEvent{
				Kind:      models.EventTakedown,
				Side:      models.SideP1,
				Timestamp: time.Now().UTC().Add(time.Duration(n) * time.Millisecond),
			}
			assert.NoError(t, f.service.SubmitEvent(context.Background(), m.ID, ev))
		}(i)
	}
	wg.Wait()

	stored, _ := f.matches.GetByID(context.Background(), m.ID)
	assert.Len(t, stored.EventLog, workers, "every accepted event lands in the log exactly once")
	assert.Equal(t, workers*2, stored.Score.P1)
}
