package services

import (
	"context"
	"sync"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
)

// In-memory fakes backing the service tests. They implement just enough of
// the repository interfaces to exercise the live-match paths.

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) add(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}
	cp := *m
	r.matches[m.ID] = &cp
	return m
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.add(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	cp.EventLog = append([]models.MatchEvent(nil), m.EventLog...)
	return &cp, nil
}

func (r *fakeMatchRepo) ListByCategory(ctx context.Context, categoryID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.CategoryID == categoryID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateLiveState(ctx context.Context, id int, eventLog []models.MatchEvent, score models.MatchScore, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.EventLog = append([]models.MatchEvent(nil), eventLog...)
	m.Score = score
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, id int, status models.MatchStatus, winnerID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	m.WinnerID = winnerID
	return nil
}

func (r *fakeMatchRepo) UpdateSlot(ctx context.Context, id int, slot int, athleteID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == 1 {
		m.Athlete1ID = &athleteID
	} else {
		m.Athlete2ID = &athleteID
	}
	return nil
}

func (r *fakeMatchRepo) UpdateAdvancement(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID, winnerToSlot, loserNextMatchID, loserToSlot *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchDBID = nextMatchID
	m.WinnerToSlot = winnerToSlot
	m.LoserNextMatchDBID = loserNextMatchID
	m.LoserToSlot = loserToSlot
	return nil
}

func (r *fakeMatchRepo) DeleteByCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		if m.CategoryID == categoryID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeAthleteRepo struct {
	mu       sync.Mutex
	athletes map[int]*models.Athlete
}

func newFakeAthleteRepo(athletes ...*models.Athlete) *fakeAthleteRepo {
	r := &fakeAthleteRepo{athletes: make(map[int]*models.Athlete)}
	for _, a := range athletes {
		cp := *a
		r.athletes[a.ID] = &cp
	}
	return r
}

func (r *fakeAthleteRepo) Create(ctx context.Context, athlete *models.Athlete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.athletes[athlete.ID] = athlete
	return nil
}

func (r *fakeAthleteRepo) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.athletes[id]
	if !ok {
		return nil, repositories.ErrAthleteNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAthleteRepo) List(ctx context.Context, limit, offset int) ([]*models.Athlete, error) {
	return nil, nil
}

func (r *fakeAthleteRepo) ListLeaderboard(ctx context.Context, limit int) ([]*models.Athlete, error) {
	return nil, nil
}

func (r *fakeAthleteRepo) Update(ctx context.Context, athlete *models.Athlete) error {
	return nil
}

func (r *fakeAthleteRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	return nil
}

func (r *fakeAthleteRepo) IncrementStats(ctx context.Context, id int, delta models.AthleteStatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.athletes[id]
	if !ok {
		return repositories.ErrAthleteNotFound
	}
	a.Stats.Wins += delta.Wins
	a.Stats.Losses += delta.Losses
	a.Stats.Submissions += delta.Submissions
	a.Stats.PointsScored += delta.PointsScored
	a.RankingPoints += delta.RankingPoints
	a.Balance += delta.Balance
	return nil
}

func (r *fakeAthleteRepo) Delete(ctx context.Context, id int) error {
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error) {
	return nil, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, tournament *models.Tournament) error {
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	return nil
}

type fakeRuleSetRepo struct {
	ruleSets map[int]*models.RuleSet
}

func newFakeRuleSetRepo(ruleSets ...*models.RuleSet) *fakeRuleSetRepo {
	r := &fakeRuleSetRepo{ruleSets: make(map[int]*models.RuleSet)}
	for _, rs := range ruleSets {
		r.ruleSets[rs.ID] = rs
	}
	return r
}

func (r *fakeRuleSetRepo) Create(ctx context.Context, ruleSet *models.RuleSet) error {
	r.ruleSets[ruleSet.ID] = ruleSet
	return nil
}

func (r *fakeRuleSetRepo) GetByID(ctx context.Context, id int) (*models.RuleSet, error) {
	rs, ok := r.ruleSets[id]
	if !ok {
		return nil, repositories.ErrRuleSetNotFound
	}
	return rs, nil
}

func (r *fakeRuleSetRepo) List(ctx context.Context) ([]*models.RuleSet, error) {
	return nil, nil
}

type broadcastCall struct {
	roomID  string
	message interface{}
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{roomID: roomID, message: message})
}

func (b *fakeBroadcaster) callsFor(roomID string) []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastCall
	for _, c := range b.calls {
		if c.roomID == roomID {
			out = append(out, c)
		}
	}
	return out
}
