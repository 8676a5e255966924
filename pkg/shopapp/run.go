package shopapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/fullstack/shopapp/pkg/catalog"
)

const requestIDHeader = "X-Request-ID"

// Run serves the HTTP API until ctx is cancelled.
//
// Before the server starts, the search index backfill runs once per
// deployment (guarded by its durable latch) unless backfill.on_startup is
// off, and the periodic reconciler is scheduled when
// index.reconcile_schedule is set.
//
// # API Endpoints
//
//	GET    /health                       - Liveness and store connectivity
//	GET    /metrics                      - Prometheus metrics
//
//	POST   /api/v1/shops                 - Create shop
//	PUT    /api/v1/shops                 - Update shop (full entity)
//	GET    /api/v1/shops                 - List shops (search, sortBy, inVacations, createdAfter, createdBefore, page, size)
//	GET    /api/v1/shops/{id}            - Get shop
//	DELETE /api/v1/shops/{id}            - Delete shop
//
//	POST   /api/v1/products              - Create product
//	PUT    /api/v1/products              - Update product
//	GET    /api/v1/products              - List products (shopId, categoryId, page, size)
//	GET    /api/v1/products/{id}         - Get product
//	DELETE /api/v1/products/{id}         - Delete product
//
//	POST   /api/v1/categories            - Create category
//	GET    /api/v1/categories            - List categories
//	GET    /api/v1/categories/{id}       - Get category
//	DELETE /api/v1/categories/{id}       - Delete category
//
//	GET    /api/v1/admin/routes          - Shop query routing rules, in priority order
//	GET    /api/v1/admin/read-only       - Current read-only state
//	POST   /api/v1/admin/read-only       - Change read-only state
//
// On cancellation the server gets server.shutdown_timeout to finish in-flight
// requests.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	if a.config.Backfill.OnStartup {
		if err := a.Backfill(ctx, &BackfillCommand{}); err != nil {
			return err
		}
	}

	if schedule := a.config.Index.ReconcileSchedule; schedule != "" {
		scheduler := cron.New(cron.WithLogger(catalog.CronLogger(a.logger)))
		reconciler := catalog.NewReconciler(a.service, time.Now().UTC())
		if _, err := reconciler.Schedule(scheduler, schedule); err != nil {
			return fmt.Errorf("failed to schedule reconciler: %w", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		a.logger.Info().Str("schedule", schedule).Msg("index reconciler scheduled")
	}

	addr := fmt.Sprintf(":%s", a.config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info().Str("addr", addr).Bool("read_only", a.IsReadOnly()).Msg("starting shopapp server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down server")
		timeout := a.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (a *App) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(a.requestID, a.accessLog)

	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/shops", a.handleCreateShop).Methods(http.MethodPost)
	api.HandleFunc("/shops", a.handleUpdateShop).Methods(http.MethodPut)
	api.HandleFunc("/shops", a.handleListShops).Methods(http.MethodGet)
	api.HandleFunc("/shops/{id}", a.handleGetShop).Methods(http.MethodGet)
	api.HandleFunc("/shops/{id}", a.handleDeleteShop).Methods(http.MethodDelete)

	api.HandleFunc("/products", a.handleCreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products", a.handleUpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products", a.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", a.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", a.handleDeleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/categories", a.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories", a.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", a.handleGetCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", a.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/admin/routes", a.handleRoutes).Methods(http.MethodGet)
	api.HandleFunc("/admin/read-only", a.handleGetReadOnly).Methods(http.MethodGet)
	api.HandleFunc("/admin/read-only", a.handleSetReadOnly).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	return router
}

type ctxKey int

const requestIDKey ctxKey = iota

// requestID propagates the caller's X-Request-ID or assigns a new one.
func (a *App) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *App) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		a.logger.Debug().
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
