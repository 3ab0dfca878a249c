package page

import (
	"context"
	"sync"

	"storefront/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/wb-go/wbf/zlog"
)

// Initializer loads the payload a page shows. It runs on every visit and must
// be idempotent.
type Initializer func(ctx context.Context, session string) (any, error)

type controller struct {
	mu      sync.Mutex
	current domain.PageID
	visits  int
	data    any
}

// Registry holds one page controller per session. Exactly one page is visible
// at a time; the default page is shown when a session is first seen. Idle
// sessions expire and come back on the default page.
type Registry struct {
	mu          sync.Mutex
	controllers *expirable.LRU[string, *controller]
	inits       map[domain.PageID]Initializer
	logger      *zlog.Zerolog
}

func NewRegistry(inits map[domain.PageID]Initializer, limits domain.SessionLimits, logger *zlog.Zerolog) *Registry {
	limits = limits.WithDefaults()
	r := &Registry{
		inits:  inits,
		logger: logger,
	}
	r.controllers = expirable.NewLRU[string, *controller](limits.MaxActive, func(session string, _ *controller) {
		r.logger.Debug().Str("session", session).Msg("Page state evicted")
	}, limits.IdleTTL)
	return r
}

func Known(id domain.PageID) bool {
	for _, p := range domain.Pages {
		if p == id {
			return true
		}
	}
	return false
}

// State returns the session's current page, creating the controller on first use.
func (r *Registry) State(ctx context.Context, session string) domain.PageState {
	c := r.controller(ctx, session)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// NavigateTo shows page id and re-runs its initializer. An unknown id leaves the
// state untouched and reports false.
func (r *Registry) NavigateTo(ctx context.Context, session string, id domain.PageID) (domain.PageState, bool) {
	c := r.controller(ctx, session)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !Known(id) {
		r.logger.Debug().Str("session", session).Str("page", string(id)).Msg("Ignoring navigation to unknown page")
		return c.state(), false
	}

	r.show(ctx, session, c, id)
	return c.state(), true
}

func (r *Registry) controller(ctx context.Context, session string) *controller {
	r.mu.Lock()
	c, ok := r.controllers.Get(session)
	if !ok {
		c = &controller{}
	}
	// Add refreshes the idle deadline.
	r.controllers.Add(session, c)
	r.mu.Unlock()

	c.mu.Lock()
	if c.current == "" {
		r.show(ctx, session, c, domain.DefaultPage)
	}
	c.mu.Unlock()
	return c
}

// show must be called with c.mu held.
func (r *Registry) show(ctx context.Context, session string, c *controller, id domain.PageID) {
	c.current = id
	c.visits++
	c.data = nil

	load, ok := r.inits[id]
	if !ok {
		return
	}
	data, err := load(ctx, session)
	if err != nil {
		r.logger.Warn().Err(err).Str("session", session).Str("page", string(id)).Msg("Page initializer failed")
		return
	}
	c.data = data
}

func (c *controller) state() domain.PageState {
	visible := make(map[domain.PageID]bool, len(domain.Pages))
	for _, p := range domain.Pages {
		visible[p] = p == c.current
	}
	return domain.PageState{
		Current: c.current,
		Visible: visible,
		Visits:  c.visits,
		Data:    c.data,
	}
}
