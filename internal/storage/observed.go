package storage

import (
	"context"
	"fmt"

	"github.com/JakeFAU/trendwatch/internal/metrics"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Observed counts writes of the wrapped store and tags failures with ErrStore.
type Observed struct {
	driver string
	next   trends.RecordStore
}

// NewObserved wraps next with write metrics.
func NewObserved(driver string, next trends.RecordStore) *Observed {
	return &Observed{driver: driver, next: next}
}

// Persist delegates to the wrapped store.
func (o *Observed) Persist(ctx context.Context, record trends.FetchRecord) error {
	err := o.next.Persist(ctx, record)
	metrics.ObserveStoreWrite(o.driver, err == nil)
	if err != nil {
		return fmt.Errorf("%w (%s): %w", trends.ErrStore, o.driver, err)
	}
	return nil
}
