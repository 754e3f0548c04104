// Command shanko-sim plays Shanko games between AI seats and prints the
// results.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
	"github.com/ppravin88/Shanko/service/internal/config"
	"github.com/ppravin88/Shanko/service/internal/game"
	"github.com/ppravin88/Shanko/service/internal/logging"
	"github.com/ppravin88/Shanko/service/internal/report"
	"github.com/ppravin88/Shanko/service/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "shanko-sim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("shanko-sim", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path, flags)
	if err != nil {
		return err
	}
	log, err := logging.NewWithOutput(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	sink, rankings, closeSinks, err := openSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	reports, err := simulate(ctx, cfg, log, sink)
	if err != nil {
		return err
	}
	summary := report.Summarize(reports)
	summary.Leaderboard = leaderboard(ctx, rankings, log)
	return report.Write(stdout, cfg.Sim.Format, summary)
}

const leaderboardSize = 10

// leaderboard reads the win table of the first store that answers.
func leaderboard(ctx context.Context, rankings []store.Ranking, log *logrus.Logger) []report.Standing {
	for _, r := range rankings {
		top, err := r.Top(ctx, leaderboardSize)
		if err != nil {
			log.WithError(err).Warn("Failed to read leaderboard")
			continue
		}
		return top
	}
	return nil
}

// openSinks connects the configured result stores. The returned sink is
// nil when none are configured.
func openSinks(ctx context.Context, cfg *config.Config, log *logrus.Logger) (store.Sink, []store.Ranking, func(), error) {
	var sinks store.Multi
	var rankings []store.Ranking
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled() {
		pool, err := store.ConnectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, pool.Close)
		repo := store.NewResultRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("migrate results: %w", err)
		}
		sinks = append(sinks, repo)
		rankings = append(rankings, repo)
		log.WithField("host", cfg.Database.Host).Info("Recording results to Postgres")
	}

	if cfg.Redis.Enabled() {
		rdb, err := store.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		lb := store.NewLeaderboard(rdb, cfg.Redis.Key)
		sinks = append(sinks, lb)
		rankings = append(rankings, lb)
		log.WithField("addr", cfg.Redis.Addr).Info("Recording wins to Redis")
	}

	if len(sinks) == 0 {
		return nil, nil, closeAll, nil
	}
	return sinks, rankings, closeAll, nil
}

// simulate plays cfg.Sim.Games games, at most cfg.Sim.Parallel at a time,
// and returns their reports in game order.
func simulate(ctx context.Context, cfg *config.Config, log *logrus.Logger, sink store.Sink) ([]report.GameReport, error) {
	rules := game.HouseRules{
		MaxTurnsPerRound: cfg.Table.MaxTurnsPerRound,
		TurnTimeout:      cfg.Table.TurnTimeout,
	}
	reports := make([]report.GameReport, cfg.Sim.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Sim.Parallel)
	for i := range cfg.Sim.Games {
		seed := cfg.Sim.Seed + uint64(i)
		if cfg.Sim.Seed == 0 {
			seed = engine.RandomSeed()
		}
		g.Go(func() error {
			r, err := playOne(ctx, cfg.Sim, rules, seed, log)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
			}
			reports[i] = r
			if sink != nil {
				if err := sink.Record(ctx, r); err != nil {
					log.WithError(err).WithField("game", r.GameID).Warn("Failed to record result")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func playOne(ctx context.Context, sim config.SimConfig, rules game.HouseRules, seed uint64, log *logrus.Logger) (report.GameReport, error) {
	state, err := engine.InitializeGameWithSeed(sim.Players, sim.Humans, seed)
	if err != nil {
		return report.GameReport{}, err
	}

	t := game.NewTable(state, agent.NewHeuristic(), logrus.NewEntry(log), rules)
	defer t.Close()
	stalemates := 0
	t.OnEvent = func(ev game.Event) {
		if ev.Type == game.EventStalemate {
			stalemates++
		}
	}

	final, err := t.Run(ctx, game.FirstCardInput{})
	if err != nil {
		return report.GameReport{}, err
	}
	log.WithFields(logrus.Fields{"game": final.GameID, "seed": seed}).Debug("Game finished")
	return report.FromState(final, seed, stalemates)
}
