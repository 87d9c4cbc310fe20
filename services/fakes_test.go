package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

// In-memory repositories for service tests. The passThroughTx manager hands
// services a nil SQLExecutor, which the fakes ignore.

type passThroughTx struct{}

func (passThroughTx) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type spyBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *spyBroadcaster) Broadcast(tournamentID int, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
}

func (b *spyBroadcaster) sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, t := range tournaments {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetMostRecent(ctx context.Context) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Tournament
	for _, t := range r.tournaments {
		if latest == nil || t.Year > latest.Year {
			latest = t
		}
	}
	if latest == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateCurrentRound(ctx context.Context, exec repositories.SQLExecutor, id int, round models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CurrentRound = round
	return nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeTransitionRepo struct {
	mu          sync.Mutex
	transitions map[int]*models.ScheduledTransition // keyed by tournament ID
	nextID      int
}

func newFakeTransitionRepo(transitions ...*models.ScheduledTransition) *fakeTransitionRepo {
	r := &fakeTransitionRepo{transitions: make(map[int]*models.ScheduledTransition), nextID: 1}
	for _, tr := range transitions {
		tr.ID = r.nextID
		r.nextID++
		r.transitions[tr.TournamentID] = tr
	}
	return r
}

func (r *fakeTransitionRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, tr *models.ScheduledTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.transitions[tr.TournamentID]; ok {
		tr.ID = existing.ID
	} else {
		tr.ID = r.nextID
		r.nextID++
	}
	copied := *tr
	r.transitions[tr.TournamentID] = &copied
	return nil
}

func (r *fakeTransitionRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.ScheduledTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.transitions[tournamentID]
	if !ok {
		return nil, repositories.ErrTransitionNotFound
	}
	copied := *tr
	return &copied, nil
}

func (r *fakeTransitionRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*models.ScheduledTransition
	for _, tr := range r.transitions {
		if tr.Due(now) {
			copied := *tr
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].TournamentID < due[j].TournamentID })
	return due, nil
}

func (r *fakeTransitionRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transitions[tournamentID]; !ok {
		return repositories.ErrTransitionNotFound
	}
	delete(r.transitions, tournamentID)
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
	for _, t := range teams {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.TournamentID == team.TournamentID &&
			existing.Region == team.Region && existing.Seed == team.Seed {
			return repositories.ErrTeamSeedConflict
		}
	}
	team.ID = r.nextID
	r.nextID++
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int, region *string) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Team
	for _, t := range r.teams {
		if t.TournamentID != tournamentID {
			continue
		}
		if region != nil && t.Region != *region {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) SetEliminated(ctx context.Context, exec repositories.SQLExecutor, id int, eliminated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Eliminated = eliminated
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
	for _, m := range matches {
		if m.ID == 0 {
			m.ID = r.nextID
		}
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match.ID = r.nextID
	r.nextID++
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *models.Round, region *string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		if region != nil && m.Region != *region {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (r *fakeMatchRepo) ApplyResult(ctx context.Context, exec repositories.SQLExecutor, id int, patch models.MatchResultPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if patch.WinnerID != nil {
		m.WinnerID = patch.WinnerID
	}
	if patch.Team1Score != nil {
		m.Team1Score = patch.Team1Score
	}
	if patch.Team2Score != nil {
		m.Team2Score = patch.Team2Score
	}
	if patch.Completed != nil {
		m.Completed = *patch.Completed
	}
	return nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[int]*models.Participant
	nextID       int
}

func newFakeParticipantRepo(participants ...*models.Participant) *fakeParticipantRepo {
	r := &fakeParticipantRepo{participants: make(map[int]*models.Participant), nextID: 1}
	for _, p := range participants {
		if p.ID == 0 {
			p.ID = r.nextID
		}
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
		r.participants[p.ID] = p
	}
	return r
}

func (r *fakeParticipantRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.Email == p.Email {
			return repositories.ErrParticipantEmailConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	r.participants[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipantRepo) GetByEntryToken(ctx context.Context, token string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.EntryToken == token {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) ListLeaderboard(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	out, err := r.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeParticipantRepo) SetPaid(ctx context.Context, exec repositories.SQLExecutor, id int, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Paid = paid
	return nil
}

func (r *fakeParticipantRepo) UpdateTotalScore(ctx context.Context, exec repositories.SQLExecutor, id int, totalScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.TotalScore = totalScore
	return nil
}

type fakeMatchPickRepo struct {
	mu     sync.Mutex
	picks  map[int]*models.MatchPick
	nextID int
}

func newFakeMatchPickRepo(picks ...*models.MatchPick) *fakeMatchPickRepo {
	r := &fakeMatchPickRepo{picks: make(map[int]*models.MatchPick), nextID: 1}
	for _, p := range picks {
		if p.ID == 0 {
			p.ID = r.nextID
		}
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
		r.picks[p.ID] = p
	}
	return r
}

func (r *fakeMatchPickRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, pick *models.MatchPick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.picks {
		if existing.ParticipantID == pick.ParticipantID && existing.MatchID == pick.MatchID {
			existing.TeamID = pick.TeamID
			existing.Correct = false
			existing.RoundScore = 0
			pick.ID = existing.ID
			return nil
		}
	}
	pick.ID = r.nextID
	r.nextID++
	copied := *pick
	r.picks[pick.ID] = &copied
	return nil
}

func (r *fakeMatchPickRepo) ListByParticipant(ctx context.Context, participantID int) ([]*models.MatchPick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MatchPick
	for _, p := range r.picks {
		if p.ParticipantID == participantID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchPickRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id int, correct bool, roundScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.picks[id]
	if !ok {
		return repositories.ErrMatchPickNotFound
	}
	p.Correct = correct
	p.RoundScore = roundScore
	return nil
}

type fakePrePickRepo struct {
	mu     sync.Mutex
	picks  map[int]*models.PreTournamentPick // keyed by participant ID
	nextID int
}

func newFakePrePickRepo(picks ...*models.PreTournamentPick) *fakePrePickRepo {
	r := &fakePrePickRepo{picks: make(map[int]*models.PreTournamentPick), nextID: 1}
	for _, p := range picks {
		p.ID = r.nextID
		r.nextID++
		r.picks[p.ParticipantID] = p
	}
	return r
}

func (r *fakePrePickRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, pick *models.PreTournamentPick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.picks[pick.ParticipantID]; ok {
		pick.ID = existing.ID
	} else {
		pick.ID = r.nextID
		r.nextID++
	}
	copied := *pick
	r.picks[pick.ParticipantID] = &copied
	return nil
}

func (r *fakePrePickRepo) GetByParticipant(ctx context.Context, participantID int) (*models.PreTournamentPick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.picks[participantID]
	if !ok {
		return nil, repositories.ErrPreTournamentPickNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePrePickRepo) UpdateScores(ctx context.Context, exec repositories.SQLExecutor, id int, score, cinderellaScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.picks {
		if p.ID == id {
			p.Score = score
			p.CinderellaScore = cinderellaScore
			return nil
		}
	}
	return repositories.ErrPreTournamentPickNotFound
}
