// Package storetest holds a conformance suite every store.Store backend runs
// from its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

// Factory opens an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

var base = time.Date(2026, 1, 23, 12, 0, 0, 0, time.UTC)

// Run exercises the full store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"PlayerCreateGet", testPlayerCreateGet},
		{"PlayerNotFound", testPlayerNotFound},
		{"PlayerCounters", testPlayerCounters},
		{"Leaderboard", testLeaderboard},
		{"GameCreateGet", testGameCreateGet},
		{"GameNotFound", testGameNotFound},
		{"GameUpdateVersion", testGameUpdateVersion},
		{"GameCopies", testGameCopies},
		{"ListGamesFilter", testListGamesFilter},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tc.fn(t, s)
		})
	}
}

func seedPlayers(t *testing.T, s store.Store, names ...string) []*game.Player {
	t.Helper()
	out := make([]*game.Player, len(names))
	for i, n := range names {
		p := &game.Player{ID: "p-" + n, Name: n, CreatedAt: base}
		if err := s.CreatePlayer(context.Background(), p); err != nil {
			t.Fatalf("create player %s: %v", n, err)
		}
		out[i] = p
	}
	return out
}

func newGame(t *testing.T, id string, created time.Time, playerIDs ...string) *game.Game {
	t.Helper()
	g, err := game.New(id, 1, 100, playerIDs, game.NewSource(7), created)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func testPlayerCreateGet(t *testing.T, s store.Store) {
	seedPlayers(t, s, "ada")
	p, err := s.GetPlayer(context.Background(), "p-ada")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.Name != "ada" || p.GamesPlayed != 0 || p.Wins != 0 {
		t.Fatalf("unexpected player %+v", p)
	}
	if !p.CreatedAt.Equal(base) {
		t.Fatalf("expected created_at %v, got %v", base, p.CreatedAt)
	}
}

func testPlayerNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.GetPlayer(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.IncrementWins(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on wins, got %v", err)
	}
	seedPlayers(t, s, "bo")
	if err := s.IncrementGamesPlayed(ctx, "p-bo", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on games played, got %v", err)
	}
	p, _ := s.GetPlayer(ctx, "p-bo")
	if p.GamesPlayed != 0 {
		t.Fatalf("partial increment applied: %+v", p)
	}
}

func testPlayerCounters(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "ada", "bo")
	if err := s.IncrementGamesPlayed(ctx, "p-ada", "p-bo"); err != nil {
		t.Fatalf("games played: %v", err)
	}
	if err := s.IncrementGamesPlayed(ctx, "p-ada"); err != nil {
		t.Fatalf("games played: %v", err)
	}
	if err := s.IncrementWins(ctx, "p-ada"); err != nil {
		t.Fatalf("wins: %v", err)
	}
	ada, _ := s.GetPlayer(ctx, "p-ada")
	bo, _ := s.GetPlayer(ctx, "p-bo")
	if ada.GamesPlayed != 2 || ada.Wins != 1 {
		t.Fatalf("unexpected ada %+v", ada)
	}
	if bo.GamesPlayed != 1 || bo.Wins != 0 {
		t.Fatalf("unexpected bo %+v", bo)
	}
}

func testLeaderboard(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "cy", "ada", "bo", "di")
	_ = s.IncrementGamesPlayed(ctx, "p-ada", "p-bo", "p-cy")
	_ = s.IncrementGamesPlayed(ctx, "p-bo")
	_ = s.IncrementWins(ctx, "p-ada")
	_ = s.IncrementWins(ctx, "p-bo")

	all, err := s.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if got := names(all); got != "ada,bo,cy,di" {
		t.Fatalf("expected players by name, got %s", got)
	}

	top, err := s.Leaderboard(ctx, 3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	// ada and bo tie on wins, ada played fewer games. Same for di over cy.
	if got := names(top); got != "ada,bo,di" {
		t.Fatalf("unexpected leaderboard %s", got)
	}
	everyone, _ := s.Leaderboard(ctx, 0)
	if len(everyone) != 4 {
		t.Fatalf("expected 4 players without limit, got %d", len(everyone))
	}
}

func testGameCreateGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "ada", "bo")
	g := newGame(t, "g-1", base, "p-ada", "p-bo")
	if err := s.CreateGame(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}
	loaded, err := s.GetGame(ctx, "g-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loaded.MinValue != 1 || loaded.MaxValue != 100 || loaded.Round != 1 {
		t.Fatalf("unexpected game %+v", loaded)
	}
	if loaded.Status != game.StatusOngoing || loaded.Version != 0 {
		t.Fatalf("unexpected status/version %s/%d", loaded.Status, loaded.Version)
	}
	if len(loaded.Players) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded.Players))
	}
	for i, p := range loaded.Players {
		if p != g.Players[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, g.Players[i], p)
		}
	}
	if !loaded.CreatedAt.Equal(base) || !loaded.UpdatedAt.Equal(base) {
		t.Fatalf("unexpected timestamps %v %v", loaded.CreatedAt, loaded.UpdatedAt)
	}
}

func testGameNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.GetGame(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	g := newGame(t, "nope", base, "p-x")
	if err := s.UpdateGame(ctx, g); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func testGameUpdateVersion(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "ada", "bo")
	g := newGame(t, "g-1", base, "p-ada", "p-bo")
	if err := s.CreateGame(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}

	first, _ := s.GetGame(ctx, "g-1")
	second, _ := s.GetGame(ctx, "g-1")

	first.Players[0].Attempts = 1
	first.UpdatedAt = base.Add(time.Second)
	if err := s.UpdateGame(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1 after update, got %d", first.Version)
	}

	second.Players[1].Attempts = 1
	if err := s.UpdateGame(ctx, second); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	loaded, _ := s.GetGame(ctx, "g-1")
	if loaded.Version != 1 || loaded.Players[0].Attempts != 1 || loaded.Players[1].Attempts != 0 {
		t.Fatalf("stale write leaked: %+v", loaded)
	}
	if !loaded.UpdatedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("updated_at not persisted: %v", loaded.UpdatedAt)
	}

	loaded.Status = game.StatusWaiting
	loaded.Players[0].Winner = true
	loaded.Round = 3
	if err := s.UpdateGame(ctx, loaded); err != nil {
		t.Fatalf("second update: %v", err)
	}
	again, _ := s.GetGame(ctx, "g-1")
	if again.Version != 2 || again.Status != game.StatusWaiting || again.Round != 3 || !again.Players[0].Winner {
		t.Fatalf("unexpected game after second update %+v", again)
	}
}

func testGameCopies(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "ada")
	g := newGame(t, "g-1", base, "p-ada")
	if err := s.CreateGame(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}
	g.Players[0].Attempts = 9

	a, _ := s.GetGame(ctx, "g-1")
	a.Players[0].Attempts = 5
	b, _ := s.GetGame(ctx, "g-1")
	if b.Players[0].Attempts != 0 {
		t.Fatalf("store aliases caller state: %+v", b.Players[0])
	}
}

func testListGamesFilter(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedPlayers(t, s, "ada")
	for i, id := range []string{"g-a", "g-b", "g-c"} {
		g := newGame(t, id, base.Add(time.Duration(i)*time.Minute), "p-ada")
		if id == "g-b" {
			g.Status = game.StatusFinished
		}
		if err := s.CreateGame(ctx, g); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	all, err := s.ListGames(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := ids(all); got != "g-c,g-b,g-a" {
		t.Fatalf("expected newest first, got %s", got)
	}

	yes, no := true, false
	finished, _ := s.ListGames(ctx, store.Filter{Finished: &yes})
	if got := ids(finished); got != "g-b" {
		t.Fatalf("expected finished only, got %s", got)
	}
	open, _ := s.ListGames(ctx, store.Filter{Finished: &no})
	if got := ids(open); got != "g-c,g-a" {
		t.Fatalf("expected unfinished only, got %s", got)
	}
	if len(open[0].Players) != 1 {
		t.Fatalf("listed games must carry entries, got %+v", open[0])
	}
}

func names(ps []*game.Player) string {
	s := ""
	for i, p := range ps {
		if i > 0 {
			s += ","
		}
		s += p.Name
	}
	return s
}

func ids(gs []*game.Game) string {
	s := ""
	for i, g := range gs {
		if i > 0 {
			s += ","
		}
		s += g.ID
	}
	return s
}
