// Package sqlstore is a database/sql backed store.Store.
//
// Games live in two tables: games holds the round state and the optimistic
// version, game_players holds one row per participant in game order.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

// timeLayout is fixed-width so text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements store.Store on top of *sql.DB.
type Store struct {
	db     *sql.DB
	driver string
}

var _ store.Store = (*Store)(nil)

// Open connects with the given driver and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := openDB(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) q(query string) string { return rebind(s.driver, query) }

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(v string) (time.Time, error) { return time.Parse(timeLayout, v) }

// ------------------------------- games --------------------------------------

func (s *Store) CreateGame(ctx context.Context, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`
        INSERT INTO games (id, min_value, max_value, round, status, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.MinValue, g.MaxValue, g.Round, string(g.Status), g.Version,
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	for i, p := range g.Players {
		if _, err := tx.ExecContext(ctx, s.q(`
            INSERT INTO game_players (game_id, position, player_id, mystery_number, attempts, winner)
            VALUES (?, ?, ?, ?, ?, ?)`),
			g.ID, i, p.PlayerID, p.MysteryNumber, p.Attempts, p.Winner,
		); err != nil {
			return fmt.Errorf("insert game player: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateGame is a compare-and-swap on games.version.
func (s *Store) UpdateGame(ctx context.Context, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.q(`
        UPDATE games SET round=?, status=?, version=version+1, updated_at=?
        WHERE id=? AND version=?`),
		g.Round, string(g.Status), formatTime(g.UpdatedAt), g.ID, g.Version,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM games WHERE id=?`), g.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return store.ErrConflict
	}

	for _, p := range g.Players {
		if _, err := tx.ExecContext(ctx, s.q(`
            UPDATE game_players SET attempts=?, winner=? WHERE game_id=? AND player_id=?`),
			p.Attempts, p.Winner, g.ID, p.PlayerID,
		); err != nil {
			return fmt.Errorf("update game player: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	g.Version++
	return nil
}

const gameColumns = `id, min_value, max_value, round, status, version, created_at, updated_at`

func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+gameColumns+` FROM games WHERE id=?`), id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadEntries(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) ListGames(ctx context.Context, f store.Filter) ([]*game.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games`
	var args []any
	if f.Finished != nil {
		if *f.Finished {
			query += ` WHERE status = ?`
		} else {
			query += ` WHERE status <> ?`
		}
		args = append(args, string(game.StatusFinished))
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	out := []*game.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, g := range out {
		if err := s.loadEntries(ctx, g); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadEntries(ctx context.Context, g *game.Game) error {
	rows, err := s.db.QueryContext(ctx, s.q(`
        SELECT player_id, mystery_number, attempts, winner
        FROM game_players WHERE game_id=? ORDER BY position ASC`), g.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	g.Players = []game.PlayerEntry{}
	for rows.Next() {
		var p game.PlayerEntry
		if err := rows.Scan(&p.PlayerID, &p.MysteryNumber, &p.Attempts, &p.Winner); err != nil {
			return err
		}
		g.Players = append(g.Players, p)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(sc scanner) (*game.Game, error) {
	var g game.Game
	var status, created, updated string
	if err := sc.Scan(&g.ID, &g.MinValue, &g.MaxValue, &g.Round, &status, &g.Version, &created, &updated); err != nil {
		return nil, err
	}
	g.Status = game.Status(status)
	var err error
	if g.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("game %s created_at: %w", g.ID, err)
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("game %s updated_at: %w", g.ID, err)
	}
	return &g, nil
}

// ------------------------------ players -------------------------------------

const playerColumns = `id, name, games_played, wins, created_at`

func (s *Store) CreatePlayer(ctx context.Context, p *game.Player) error {
	_, err := s.db.ExecContext(ctx, s.q(`
        INSERT INTO players (id, name, games_played, wins, created_at) VALUES (?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.GamesPlayed, p.Wins, formatTime(p.CreatedAt),
	)
	return err
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*game.Player, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+playerColumns+` FROM players WHERE id=?`), id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

func (s *Store) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name ASC, id ASC`)
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*game.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players
              ORDER BY wins DESC, games_played ASC, name ASC, id ASC`
	if limit > 0 {
		return s.queryPlayers(ctx, query+` LIMIT ?`, limit)
	}
	return s.queryPlayers(ctx, query)
}

func (s *Store) queryPlayers(ctx context.Context, query string, args ...any) ([]*game.Player, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*game.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlayer(sc scanner) (*game.Player, error) {
	var p game.Player
	var created string
	if err := sc.Scan(&p.ID, &p.Name, &p.GamesPlayed, &p.Wins, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("player %s created_at: %w", p.ID, err)
	}
	p.CreatedAt = t
	return &p, nil
}

// IncrementGamesPlayed bumps every listed player in one transaction.
func (s *Store) IncrementGamesPlayed(ctx context.Context, ids ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if err := bump(ctx, tx, s.q(`UPDATE players SET games_played = games_played + 1 WHERE id=?`), id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) IncrementWins(ctx context.Context, id string) error {
	return bump(ctx, s.db, s.q(`UPDATE players SET wins = wins + 1 WHERE id=?`), id)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func bump(ctx context.Context, db execer, query, id string) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
