// Package refresh keeps open report views current. A periodic sweep fans
// out over the tracked views with bounded concurrency so one slow update
// cannot stall the rest, and every sweep runs under a hard deadline.
package refresh

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage"
)

// ViewUpdater pushes fresh report content into one open view.
type ViewUpdater interface {
	UpdateView(ctx context.Context, view internal.ActiveView) error
}

// maxViewAge is how long a view stays tracked without a successful update
// before the sweep drops it as abandoned.
const maxViewAge = 24 * time.Hour

type Refresher struct {
	views       storage.ActiveViewRepository
	updater     ViewUpdater
	logger      internal.Logger
	interval    time.Duration
	deadline    time.Duration
	concurrency int

	now func() time.Time
}

func NewRefresher(views storage.ActiveViewRepository, updater ViewUpdater, logger internal.Logger, interval, deadline time.Duration, concurrency int) *Refresher {
	return &Refresher{
		views:       views,
		updater:     updater,
		logger:      logger,
		interval:    interval,
		deadline:    deadline,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run sweeps on the configured interval until the context is canceled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.SweepOnce(ctx); err != nil {
				r.logger.Errorf("refresh: sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce refreshes every tracked view under the sweep deadline. A view
// whose update fails is dropped; the owner reopening it re-registers it.
func (r *Refresher) SweepOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	views, err := r.views.ListActiveViews(ctx)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, view := range views {
		view := view
		g.Go(func() error {
			if r.now().UnixMilli()-view.LastUpdatedAt > maxViewAge.Milliseconds() {
				r.logger.Infof("refresh: dropping stale view %s", view.ViewID)
				return r.views.DeleteActiveView(ctx, view.ViewID)
			}
			if err := r.updater.UpdateView(ctx, view); err != nil {
				r.logger.Warnf("refresh: dropping view %s after update failure: %v", view.ViewID, err)
				return r.views.DeleteActiveView(ctx, view.ViewID)
			}
			view.LastUpdatedAt = r.now().UnixMilli()
			return r.views.SaveActiveView(ctx, &view)
		})
	}
	return g.Wait()
}
