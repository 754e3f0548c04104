// internal/report/report.go
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	engine "github.com/ppravin88/Shanko/engine"
)

// PlayerResult is one seat's outcome in a finished game.
type PlayerResult struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Type            engine.PlayerType `json:"type" yaml:"type"`
	Place           int               `json:"place" yaml:"place"`
	RoundScores     []int             `json:"roundScores" yaml:"roundScores,flow"`
	CumulativeScore int               `json:"cumulativeScore" yaml:"cumulativeScore"`
}

// GameReport summarizes one finished game.
type GameReport struct {
	GameID     string         `json:"gameId" yaml:"gameId"`
	Seed       uint64         `json:"seed" yaml:"seed"`
	Winner     string         `json:"winner" yaml:"winner"`
	Stalemates int            `json:"stalemates" yaml:"stalemates"`
	Players    []PlayerResult `json:"players" yaml:"players"`
}

// SeatStats aggregates one seat across games. Seats are matched by name.
type SeatStats struct {
	Name         string  `json:"name" yaml:"name"`
	Wins         int     `json:"wins" yaml:"wins"`
	AverageScore float64 `json:"averageScore" yaml:"averageScore"`
	BestScore    int     `json:"bestScore" yaml:"bestScore"`
}

// Standing is one row of a stored win table.
type Standing struct {
	Name string `json:"name" yaml:"name"`
	Wins int64  `json:"wins" yaml:"wins"`
}

// Summary is the output of a simulator run. Leaderboard is the all-time win
// table of the results store, when one is configured.
type Summary struct {
	Games       int          `json:"games" yaml:"games"`
	Seats       []SeatStats  `json:"seats" yaml:"seats"`
	Runs        []GameReport `json:"runs" yaml:"runs"`
	Leaderboard []Standing   `json:"leaderboard,omitempty" yaml:"leaderboard,omitempty"`
}

// FromState builds the report of a game in GAME_END.
func FromState(g engine.GameState, seed uint64, stalemates int) (GameReport, error) {
	if g.Phase != engine.PhaseGameEnd {
		return GameReport{}, fmt.Errorf("%w: game %s is in %s", engine.ErrWrongPhase, g.GameID, g.Phase)
	}
	r := GameReport{GameID: g.GameID, Seed: seed, Stalemates: stalemates}
	for i, p := range engine.FinalStandings(g.Players) {
		if p.ID == g.Winner {
			r.Winner = p.Name
		}
		r.Players = append(r.Players, PlayerResult{
			ID:              p.ID,
			Name:            p.Name,
			Type:            p.Type,
			Place:           i + 1,
			RoundScores:     append([]int(nil), p.RoundScores...),
			CumulativeScore: p.CumulativeScore,
		})
	}
	return r, nil
}

// Summarize aggregates reports, seats ordered by wins then average score.
func Summarize(reports []GameReport) Summary {
	type acc struct {
		wins, games, total, best int
	}
	seats := make(map[string]*acc)
	for _, r := range reports {
		for _, p := range r.Players {
			a, ok := seats[p.Name]
			if !ok {
				a = &acc{best: p.CumulativeScore}
				seats[p.Name] = a
			}
			a.games++
			a.total += p.CumulativeScore
			a.best = min(a.best, p.CumulativeScore)
			if p.Name == r.Winner {
				a.wins++
			}
		}
	}

	s := Summary{Games: len(reports), Runs: reports}
	for name, a := range seats {
		s.Seats = append(s.Seats, SeatStats{
			Name:         name,
			Wins:         a.wins,
			AverageScore: float64(a.total) / float64(a.games),
			BestScore:    a.best,
		})
	}
	sort.Slice(s.Seats, func(i, j int) bool {
		a, b := s.Seats[i], s.Seats[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore < b.AverageScore
		}
		return a.Name < b.Name
	})
	return s
}

// Write renders s to w as "text", "json" or "yaml".
func Write(w io.Writer, format string, s Summary) error {
	switch format {
	case "text":
		return writeText(w, s)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range s.Runs {
		fmt.Fprintf(tw, "game %s (seed %d), winner %s", r.GameID, r.Seed, r.Winner)
		if r.Stalemates > 0 {
			fmt.Fprintf(tw, ", %d stalled rounds", r.Stalemates)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "  place\tplayer\ttype\trounds\ttotal\t")
		for _, p := range r.Players {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d\t\n", p.Place, p.Name, p.Type, joinInts(p.RoundScores), p.CumulativeScore)
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "%d games\n", s.Games)
	fmt.Fprintln(tw, "  player\twins\tavg\tbest\t")
	for _, seat := range s.Seats {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f\t%d\t\n", seat.Name, seat.Wins, seat.AverageScore, seat.BestScore)
	}

	if len(s.Leaderboard) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "leaderboard")
		for i, st := range s.Leaderboard {
			fmt.Fprintf(tw, "  %d\t%s\t%d\t\n", i+1, st.Name, st.Wins)
		}
	}
	return tw.Flush()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}
