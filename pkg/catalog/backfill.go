package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// BackfillMode selects the path used to copy a stored shop into the index.
type BackfillMode string

const (
	// BackfillSync writes the stored record to the index without saving it
	// again (Service.SyncShop).
	BackfillSync BackfillMode = "sync"

	// BackfillCreate runs the stored record through the create persistence
	// path (Service.ReindexThroughCreate).
	BackfillCreate BackfillMode = "create"
)

const DefaultBackfillWorkers = 4

// ParseBackfillMode accepts "sync" and "create". An empty string selects sync.
func ParseBackfillMode(s string) (BackfillMode, error) {
	switch BackfillMode(s) {
	case "", BackfillSync:
		return BackfillSync, nil
	case BackfillCreate:
		return BackfillCreate, nil
	default:
		return "", fmt.Errorf("unknown backfill mode %q (expected %s or %s)", s, BackfillSync, BackfillCreate)
	}
}

type BackfillOptions struct {
	Mode    BackfillMode
	Workers int
	// Force runs the backfill even when the latch is already set.
	Force bool
}

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Skipped bool
	Total   int
	Indexed int64
	Failed  int64
}

// Backfiller populates the search index from the relational store once per
// deployment. Completion is recorded by a durable latch in the relational
// store; while the latch is set, Run does nothing. An index that does not
// survive restarts is backfilled on every run.
//
// If the process stops before the latch is written, the next run processes
// every shop again. Indexing is an upsert, so this is safe.
type Backfiller struct {
	service *Service
	opts    BackfillOptions
}

func NewBackfiller(service *Service, opts BackfillOptions) *Backfiller {
	if opts.Mode == "" {
		opts.Mode = BackfillSync
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultBackfillWorkers
	}
	return &Backfiller{service: service, opts: opts}
}

// Run checks the latch, indexes every stored shop and writes the latch.
// Failures on individual shops are logged and counted, never returned.
func (b *Backfiller) Run(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult
	logger := b.service.logger.With().Str("mode", string(b.opts.Mode)).Logger()
	metrics := b.service.metrics

	if !b.opts.Force && !b.service.index.Durable() {
		logger.Info().Msg("search index is not durable, ignoring sync latch")
	} else if !b.opts.Force {
		done, err := b.service.store.IsSyncCompleted(ctx)
		if err != nil {
			metrics.BackfillRuns.WithLabelValues("error").Inc()
			return result, persistenceError("read sync latch", err)
		}
		if done {
			result.Skipped = true
			metrics.BackfillRuns.WithLabelValues("skipped").Inc()
			logger.Info().Msg("search index already synced, skipping backfill")
			return result, nil
		}
	}

	page, err := b.service.store.FindShops(ctx, store.ShopFilter{}, store.OrderByID, models.Unpaged())
	if err != nil {
		metrics.BackfillRuns.WithLabelValues("error").Inc()
		return result, persistenceError("list shops for backfill", err)
	}
	result.Total = len(page.Content)
	logger.Info().Int("shops", result.Total).Int("workers", b.opts.Workers).Msg("starting search index backfill")

	pool, err := ants.NewPool(b.opts.Workers)
	if err != nil {
		return result, fmt.Errorf("failed to create backfill pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		indexed atomic.Int64
		failed  atomic.Int64
	)
	fail := func(shop *models.Shop, err error) {
		failed.Add(1)
		metrics.BackfillRecords.WithLabelValues("failed").Inc()
		logger.Warn().Err(err).Stringer("shop_id", shop.ID).Msg("failed to backfill shop")
	}

	for i := range page.Content {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			metrics.BackfillRuns.WithLabelValues("error").Inc()
			return result, err
		}
		shop := &page.Content[i]
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := b.process(ctx, shop); err != nil {
				fail(shop, err)
				return
			}
			indexed.Add(1)
			metrics.BackfillRecords.WithLabelValues("indexed").Inc()
		})
		if err != nil {
			wg.Done()
			fail(shop, err)
		}
	}
	wg.Wait()

	result.Indexed = indexed.Load()
	result.Failed = failed.Load()

	if err := b.service.store.MarkSyncCompleted(ctx); err != nil {
		metrics.BackfillRuns.WithLabelValues("error").Inc()
		return result, persistenceError("write sync latch", err)
	}
	metrics.BackfillRuns.WithLabelValues("completed").Inc()
	logger.Info().
		Int("shops", result.Total).
		Int64("indexed", result.Indexed).
		Int64("failed", result.Failed).
		Msg("search index backfill completed")
	return result, nil
}

func (b *Backfiller) process(ctx context.Context, shop *models.Shop) error {
	switch b.opts.Mode {
	case BackfillCreate:
		_, err := b.service.ReindexThroughCreate(ctx, shop)
		return err
	default:
		return b.service.SyncShop(ctx, shop)
	}
}
