package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
)

// The services open real transactions; a stub driver gives them a *sql.DB
// whose Begin/Commit/Rollback are no-ops while the fake repositories hold
// the actual state.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct{}

func (*stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (*stubConn) Close() error                        { return nil }
func (*stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("stub", stubDriver{})
}

// zeroRand always takes the first option and never swaps seats, which makes
// matchmaking fully deterministic: pairings follow roster order.
type zeroRand struct{}

func (zeroRand) NextIndex(int) int { return 0 }
func (zeroRand) FlipCoin() bool    { return false }

type fakePlayerRepo struct {
	players map[int]models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]models.Player), nextID: 1}
}

func (r *fakePlayerRepo) add(p models.Player) models.Player {
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Unix(int64(1000+p.ID), 0)
	r.players[p.ID] = p
	return p
}

func (r *fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	for _, existing := range r.players {
		if existing.Nickname == p.Nickname && existing.Status == models.PlayerActive {
			return repositories.ErrPlayerNicknameConflict
		}
	}
	stored := r.add(*p)
	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *fakePlayerRepo) GetByIDs(_ context.Context, ids []int) ([]models.Player, error) {
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) GetActiveByNickname(_ context.Context, nickname string) (*models.Player, error) {
	for _, p := range r.players {
		if p.Nickname == nickname && p.Status == models.PlayerActive {
			return &p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) NicknameTaken(_ context.Context, nickname string) (bool, error) {
	for _, p := range r.players {
		if p.Nickname == nickname && p.Status == models.PlayerActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlayerRepo) ListActive(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, p := range r.players {
		if p.Status == models.PlayerActive && p.Role == models.RolePlayer {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Retire(_ context.Context, id int) error {
	p, ok := r.players[id]
	if !ok || p.Status != models.PlayerActive {
		return repositories.ErrPlayerNotFound
	}
	p.Status = models.PlayerRetired
	r.players[id] = p
	return nil
}

func (r *fakePlayerRepo) RetireAllPlayers(_ context.Context) error {
	for id, p := range r.players {
		if p.Status == models.PlayerActive && p.Role == models.RolePlayer {
			p.Status = models.PlayerRetired
			r.players[id] = p
		}
	}
	return nil
}

type fakeGameMapRepo struct {
	gameMaps map[int]models.GameMap
	nextID   int
}

func newFakeGameMapRepo() *fakeGameMapRepo {
	return &fakeGameMapRepo{gameMaps: make(map[int]models.GameMap), nextID: 1}
}

func (r *fakeGameMapRepo) add(m models.GameMap) models.GameMap {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Unix(int64(2000+m.ID), 0)
	r.gameMaps[m.ID] = m
	return m
}

func (r *fakeGameMapRepo) Create(_ context.Context, m *models.GameMap) error {
	for _, existing := range r.gameMaps {
		if existing.Name == m.Name && existing.Status == models.GameMapActive {
			return repositories.ErrGameMapNameConflict
		}
	}
	stored := r.add(*m)
	m.ID = stored.ID
	m.CreatedAt = stored.CreatedAt
	return nil
}

func (r *fakeGameMapRepo) GetByID(_ context.Context, id int) (*models.GameMap, error) {
	m, ok := r.gameMaps[id]
	if !ok {
		return nil, repositories.ErrGameMapNotFound
	}
	return &m, nil
}

func (r *fakeGameMapRepo) GetByIDs(_ context.Context, ids []int) ([]models.GameMap, error) {
	out := make([]models.GameMap, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.gameMaps[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeGameMapRepo) NameTaken(_ context.Context, name string) (bool, error) {
	for _, m := range r.gameMaps {
		if m.Name == name && m.Status == models.GameMapActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGameMapRepo) ListActive(_ context.Context) ([]models.GameMap, error) {
	out := make([]models.GameMap, 0)
	for _, m := range r.gameMaps {
		if m.Status == models.GameMapActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGameMapRepo) Retire(_ context.Context, id int) error {
	m, ok := r.gameMaps[id]
	if !ok || m.Status != models.GameMapActive {
		return repositories.ErrGameMapNotFound
	}
	m.Status = models.GameMapRetired
	r.gameMaps[id] = m
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Unix(int64(3000+t.ID), 0)
	r.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) FindActive(_ context.Context, _ repositories.SQLExecutor) (*models.Tournament, error) {
	for _, t := range r.tournaments {
		if !t.Finished() {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTournamentRepo) FindLatestFinished(_ context.Context, _ repositories.SQLExecutor) (*models.Tournament, error) {
	var latest *models.Tournament
	for id := range r.tournaments {
		t := r.tournaments[id]
		if t.Finished() && (latest == nil || t.ID > latest.ID) {
			latest = &t
		}
	}
	return latest, nil
}

func (r *fakeTournamentRepo) ListFinished(_ context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Finished() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Begin(_ context.Context, _ repositories.SQLExecutor, id int) error {
	t, ok := r.tournaments[id]
	if !ok || t.Status != models.TournamentPreparing {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.TournamentInProgress
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Finish(_ context.Context, _ repositories.SQLExecutor, id, winnerID, maxStreakPlayerID int) error {
	t, ok := r.tournaments[id]
	if !ok || t.Status != models.TournamentInProgress {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.TournamentFinished
	t.WinnerID = &winnerID
	t.MaxStreakPlayerID = &maxStreakPlayerID
	r.tournaments[id] = t
	return nil
}

type fakeMatchRepo struct {
	matches []models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Unix(int64(4000+m.ID*60), 0)
	r.matches = append(r.matches, *m)
	return nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, order repositories.MatchOrder) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == repositories.RoundDesc {
			return out[i].Round > out[j].Round
		}
		return out[i].Round < out[j].Round
	})
	return out, nil
}

func (r *fakeMatchRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, matchID, winnerID int) error {
	for i := range r.matches {
		if r.matches[i].ID == matchID {
			if r.matches[i].WinnerID != nil {
				return repositories.ErrMatchAlreadyDecided
			}
			w := winnerID
			r.matches[i].WinnerID = &w
			return nil
		}
	}
	return repositories.ErrMatchAlreadyDecided
}

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Publish(_ string, event Event) {
	n.events = append(n.events, event)
}

type fixture struct {
	players     *fakePlayerRepo
	gameMaps    *fakeGameMapRepo
	tournaments *fakeTournamentRepo
	matches     *fakeMatchRepo
	notifier    *recordingNotifier
	svc         *TournamentService
}

func newFixture(t *testing.T, rnd gauntlet.RandSource) *fixture {
	t.Helper()
	db, err := sql.Open("stub", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		players:     newFakePlayerRepo(),
		gameMaps:    newFakeGameMapRepo(),
		tournaments: newFakeTournamentRepo(),
		matches:     newFakeMatchRepo(),
		notifier:    &recordingNotifier{},
	}
	f.svc = NewTournamentService(
		db,
		f.tournaments,
		f.matches,
		f.players,
		f.gameMaps,
		gauntlet.NewEngine(rnd),
		f.notifier,
		discardLogger(),
	)
	return f
}

func (f *fixture) addPlayer(nickname string) models.Player {
	return f.players.add(models.Player{
		Name:     "real " + nickname,
		Nickname: nickname,
		Race:     "T",
		Role:     models.RolePlayer,
		Status:   models.PlayerActive,
	})
}

func (f *fixture) addMap(name string) models.GameMap {
	return f.gameMaps.add(models.GameMap{Name: name, Status: models.GameMapActive})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
