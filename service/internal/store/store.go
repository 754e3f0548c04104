// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/ppravin88/Shanko/service/internal/report"
)

// Sink receives the report of every finished game.
type Sink interface {
	Record(ctx context.Context, r report.GameReport) error
}

// Ranking reads back the win table a store keeps.
type Ranking interface {
	Top(ctx context.Context, n int64) ([]report.Standing, error)
}

// Multi fans a report out to every sink. A failing sink does not stop the
// others; all failures are returned joined.
type Multi []Sink

func (m Multi) Record(ctx context.Context, r report.GameReport) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
