package api

import (
	"sync/atomic"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/notify"
	"or-schedule-backend/internal/oracle"
	"or-schedule-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	provider oracle.Provider
	grid     grid.Config
	dayFloor string
	sessions *oracle.SessionRegistry
	pool     *notify.WorkerPool
	cache    *cache.Cache
	webpush  *webpush.Options

	// rewriting guards compaction and optimization: only one schedule
	// rewrite may be in flight at a time so two passes cannot race to
	// overwrite start times.
	rewriting atomic.Bool
}

// Options carries the handler dependencies.
type Options struct {
	Store    store.Store
	Provider oracle.Provider
	Grid     grid.Config
	DayFloor string
	Pool     *notify.WorkerPool
	Cache    *cache.Cache
	WebPush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(opts Options) *Handler {
	return &Handler{
		store:    opts.Store,
		provider: opts.Provider,
		grid:     opts.Grid,
		dayFloor: opts.DayFloor,
		sessions: oracle.NewSessionRegistry(opts.Provider),
		pool:     opts.Pool,
		cache:    opts.Cache,
		webpush:  opts.WebPush,
	}
}

// invalidate drops all cached GET responses after a successful write.
func (h *Handler) invalidate() {
	if h.cache != nil {
		h.cache.Flush()
	}
}

// dispatch queues a schedule-change notification.
func (h *Handler) dispatch(event notify.Event) {
	if h.pool != nil {
		h.pool.Dispatch(event)
	}
}
