package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const DefaultReconcileTimeout = 5 * time.Minute

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Total   int
	Indexed int
	Failed  int
}

// Reconciler re-mirrors shops modified since a point in time, repairing index
// documents left stale by failed index writes.
//
// As a cron.Job it reconciles everything modified since the start of its
// previous run that indexed every shop it found.
type Reconciler struct {
	service *Service
	timeout time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewReconciler returns a reconciler whose first scheduled run covers shops
// modified since since.
func NewReconciler(service *Service, since time.Time) *Reconciler {
	return &Reconciler{
		service: service,
		timeout: DefaultReconcileTimeout,
		last:    since,
	}
}

// ReconcileSince indexes every shop updated at or after since. Failures on
// individual shops are logged and counted in the result.
func (r *Reconciler) ReconcileSince(ctx context.Context, since time.Time) (ReconcileResult, error) {
	var result ReconcileResult
	shops, err := r.service.store.ListShopsUpdatedSince(ctx, since)
	if err != nil {
		return result, persistenceError("list modified shops", err)
	}

	result.Total = len(shops)
	for i := range shops {
		if err := r.service.SyncShop(ctx, &shops[i]); err != nil {
			result.Failed++
			r.service.logger.Warn().Err(err).Stringer("shop_id", shops[i].ID).Msg("failed to reconcile shop")
			continue
		}
		result.Indexed++
		r.service.metrics.ReconciledShops.Inc()
	}

	r.service.logger.Info().
		Time("since", since).
		Int("shops", result.Total).
		Int("failed", result.Failed).
		Msg("search index reconciled")
	return result, nil
}

// Run implements cron.Job.
func (r *Reconciler) Run() {
	r.mu.Lock()
	since := r.last
	r.mu.Unlock()

	start := time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.ReconcileSince(ctx, since)
	if err != nil {
		r.service.logger.Error().Err(err).Msg("scheduled reconciliation failed")
		return
	}
	// Keep the window open until every shop in it has been indexed.
	if result.Failed > 0 {
		return
	}

	r.mu.Lock()
	r.last = start
	r.mu.Unlock()
}

// Schedule registers the reconciler on c. Overlapping runs are skipped.
func (r *Reconciler) Schedule(c *cron.Cron, schedule string) (cron.EntryID, error) {
	job := cron.NewChain(cron.SkipIfStillRunning(CronLogger(r.service.logger))).Then(r)
	return c.AddJob(schedule, job)
}

type cronLogger struct {
	logger zerolog.Logger
}

// CronLogger adapts a zerolog logger to cron.Logger.
func CronLogger(logger zerolog.Logger) cron.Logger {
	return cronLogger{logger: logger.With().Str("component", "cron").Logger()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
