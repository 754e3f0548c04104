// internal/store/redis.go
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ppravin88/Shanko/service/internal/config"
	"github.com/ppravin88/Shanko/service/internal/report"
)

// ConnectRedis opens a client for cfg and checks it answers.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Leaderboard counts wins per player name in a Redis sorted set.
type Leaderboard struct {
	rdb redis.Cmdable
	key string
}

// NewLeaderboard uses the sorted set at key.
func NewLeaderboard(rdb redis.Cmdable, key string) *Leaderboard {
	return &Leaderboard{rdb: rdb, key: key}
}

var (
	_ Sink    = (*Leaderboard)(nil)
	_ Ranking = (*Leaderboard)(nil)
)

// Record adds one win for the game's winner.
func (l *Leaderboard) Record(ctx context.Context, rep report.GameReport) error {
	return l.rdb.ZIncrBy(ctx, l.key, 1, rep.Winner).Err()
}

// Top returns the n names with the most wins, best first.
func (l *Leaderboard) Top(ctx context.Context, n int64) ([]report.Standing, error) {
	zs, err := l.rdb.ZRevRangeWithScores(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]report.Standing, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, report.Standing{Name: name, Wins: int64(z.Score)})
	}
	return out, nil
}
