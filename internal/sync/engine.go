// package sync reconciles observed reading/watching progress against the
// persistent item store and fans updates out to linked trackers.
package sync

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/store"
	"github.com/desertthunder/trax/internal/trackers"
)

// Engine owns the reconciliation and fan-out logic. All operations are safe
// for concurrent use as long as the underlying Store is.
type Engine struct {
	store    *store.Client
	registry trackers.Registry
	notify   Notifier
	cache    *SessionCache
	logger   *log.Logger
	now      func() time.Time
}

// EngineOpts configures an Engine. Zero-valued optional fields get defaults.
type EngineOpts struct {
	Store    *store.Client
	Registry trackers.Registry
	Notify   Notifier
	Cache    *SessionCache
	Logger   *log.Logger
	Now      func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Notify == nil {
		opts.Notify = NoopNotifier{}
	}
	if opts.Cache == nil {
		opts.Cache = NewSessionCache()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:    opts.Store,
		registry: opts.Registry,
		notify:   opts.Notify,
		cache:    opts.Cache,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Cache exposes the session discovery cache, e.g. for running its sweeper.
func (e *Engine) Cache() *SessionCache {
	return e.cache
}
