// Package archive keeps the results of finished matches in SQLite.
package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	VictoryPoints int    `json:"victory_points"`
}

// Result is a finished match. FinishedAt is kept to the millisecond.
type Result struct {
	MatchID     string         `json:"match_id"`
	WinnerID    string         `json:"winner_id"`
	WinnerName  string         `json:"winner_name"`
	TerrainSeed string         `json:"terrain_seed"`
	TokenSeed   string         `json:"token_seed"`
	Players     []PlayerResult `json:"players"`
	FinishedAt  time.Time      `json:"finished_at"`
}

type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and applies pending migrations.
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// migrate runs each embedded script once, in name order, recording it in
// _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}
		text, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(text)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record stores a result. Recording the same match twice is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO matches (id, winner_id, winner_name, terrain_seed, token_seed, finished_ms)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.WinnerID, r.WinnerName, r.TerrainSeed, r.TokenSeed, r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	for seat, p := range r.Players {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO match_players (match_id, seat, player_id, name, color, victory_points)
            VALUES (?, ?, ?, ?, ?, ?)`,
			r.MatchID, seat, p.ID, p.Name, p.Color, p.VictoryPoints,
		); err != nil {
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, winner_id, winner_name, terrain_seed, token_seed, finished_ms
        FROM matches ORDER BY finished_ms DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var out []Result
	for rows.Next() {
		var r Result
		var finished int64
		if err := rows.Scan(&r.MatchID, &r.WinnerID, &r.WinnerName, &r.TerrainSeed, &r.TokenSeed, &finished); err != nil {
			rows.Close()
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		players, err := s.players(ctx, out[i].MatchID)
		if err != nil {
			return nil, err
		}
		out[i].Players = players
	}
	return out, nil
}

func (s *Store) players(ctx context.Context, matchID string) ([]PlayerResult, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_id, name, color, victory_points
        FROM match_players WHERE match_id=? ORDER BY seat`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerResult
	for rows.Next() {
		var p PlayerResult
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.VictoryPoints); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
