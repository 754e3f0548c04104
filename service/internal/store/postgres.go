// internal/store/postgres.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppravin88/Shanko/service/internal/config"
	"github.com/ppravin88/Shanko/service/internal/report"
)

// ConnectPostgres opens a connection pool sized from cfg.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	seed        BIGINT NOT NULL,
	winner      TEXT NOT NULL,
	stalemates  INT NOT NULL DEFAULT 0,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS game_players (
	game_id          TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player_id        TEXT NOT NULL,
	name             TEXT NOT NULL,
	type             TEXT NOT NULL,
	place            INT NOT NULL,
	cumulative_score INT NOT NULL,
	round_scores     INT[] NOT NULL,
	PRIMARY KEY (game_id, player_id)
);
`

// ResultRepository stores finished games in Postgres.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository wraps an open pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

var (
	_ Sink    = (*ResultRepository)(nil)
	_ Ranking = (*ResultRepository)(nil)
)

// Migrate creates the tables if they do not exist.
func (r *ResultRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// Record writes a game and its seats in one transaction. Recording the same
// game twice is a no-op.
func (r *ResultRepository) Record(ctx context.Context, rep report.GameReport) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO games (id, seed, winner, stalemates)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, rep.GameID, int64(rep.Seed), rep.Winner, rep.Stalemates)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", rep.GameID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	for _, p := range rep.Players {
		_, err := tx.Exec(ctx, `
			INSERT INTO game_players (game_id, player_id, name, type, place, cumulative_score, round_scores)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rep.GameID, p.ID, p.Name, string(p.Type), p.Place, p.CumulativeScore, p.RoundScores)
		if err != nil {
			return fmt.Errorf("insert player %s: %w", p.Name, err)
		}
	}
	return tx.Commit(ctx)
}

// Top returns the n names with the most wins, best first.
func (r *ResultRepository) Top(ctx context.Context, n int64) ([]report.Standing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT winner, COUNT(*) AS wins
		FROM games
		GROUP BY winner
		ORDER BY wins DESC, winner
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Standing
	for rows.Next() {
		var w report.Standing
		if err := rows.Scan(&w.Name, &w.Wins); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
