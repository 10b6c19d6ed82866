package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// Navigators are the ways a tool-requested route can be applied, in
// priority order. At most one is used; the choice is made once, when the
// correlator is built.
type Navigators struct {
	// Custom takes priority over everything else.
	Custom ports.RouteNavigator

	// Environment is used when it also implements ports.RouteNavigator.
	Environment ports.Environment

	// History is the client router's history, used last.
	History ports.HistoryPusher
}

// resolve picks the navigator to use and names it for logging.
func (n Navigators) resolve() (ports.RouteNavigator, string) {
	if n.Custom != nil {
		return n.Custom, "custom"
	}
	if nav, ok := n.Environment.(ports.RouteNavigator); ok && nav != nil {
		return nav, "environment"
	}
	if n.History != nil {
		h := n.History
		return ports.RouteNavigatorFunc(func(_ context.Context, path string) error {
			h.Push(path)
			return nil
		}), "history"
	}
	return nil, ""
}

// NavigationCorrelator folds application navigation into store snapshots
// and applies routes requested by the tool without echoing them back.
type NavigationCorrelator struct {
	store     ports.Store
	source    ports.NavigationSource
	navigator ports.RouteNavigator
	kind      string
	logger    log.Logger

	mu      sync.Mutex
	pending *domain.Replay

	unsubscribe func()
}

// NewNavigationCorrelator creates a correlator. source may be nil, which
// disables route correlation entirely.
func NewNavigationCorrelator(store ports.Store, source ports.NavigationSource, navs Navigators, logger log.Logger) *NavigationCorrelator {
	nav, kind := navs.resolve()
	return &NavigationCorrelator{
		store:     store,
		source:    source,
		navigator: nav,
		kind:      kind,
		logger:    logger,
	}
}

// NavigatorKind names the navigator in use ("custom", "environment",
// "history") or returns "" when none is available.
func (c *NavigationCorrelator) NavigatorKind() string {
	return c.kind
}

// Start records the current route and subscribes to route changes.
func (c *NavigationCorrelator) Start() {
	if c.source == nil || c.unsubscribe != nil {
		return
	}
	c.commit(c.source.CurrentPath())
	c.unsubscribe = c.source.Subscribe(c.OnNavigated)
}

// Stop removes the subscription and drops any pending replay.
func (c *NavigationCorrelator) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Pending returns the replay whose navigation has not been observed yet.
func (c *NavigationCorrelator) Pending() *domain.Replay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// OnNavigated handles one application route change.
func (c *NavigationCorrelator) OnNavigated(path string) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if pending != nil {
		recordNavigation(navToolEcho)
		if pending.Path != path {
			c.logger.Warn("navigation after tool replay went elsewhere",
				log.String("replay", pending.ID),
				log.String("want", pending.Path),
				log.String("got", path),
			)
		}
		return
	}

	recordNavigation(navApp)
	c.commit(path)
}

// Replay moves the application to path on behalf of the tool. The replay
// carried by ctx marks the next observed navigation as tool-triggered.
// Navigating to the current route is a no-op. ErrNoNavigator is returned
// when nothing can navigate; callers treat it as a soft failure.
func (c *NavigationCorrelator) Replay(ctx context.Context, path string) error {
	if c.source == nil || path == c.source.CurrentPath() {
		return nil
	}
	if c.navigator == nil {
		recordNavigation(navSkipped)
		return domain.ErrNoNavigator
	}

	r, ok := domain.ReplayFromContext(ctx)
	if !ok {
		r = domain.NewReplay("", path)
	}

	c.mu.Lock()
	prev := c.pending
	c.pending = r
	c.mu.Unlock()

	if prev != nil {
		c.logger.Warn("route replay replaced an unobserved one",
			log.String("replay", r.ID),
			log.String("displaced", prev.ID),
		)
	}

	recordNavigation(navTool)
	c.logger.Debug("navigating for tool",
		log.String("replay", r.ID),
		log.String("path", path),
		log.String("navigator", c.kind),
	)

	if err := c.navigator.Navigate(ctx, path); err != nil {
		c.mu.Lock()
		if c.pending == r {
			c.pending = nil
		}
		c.mu.Unlock()
		return fmt.Errorf("navigate to %s: %w", path, err)
	}
	return nil
}

func (c *NavigationCorrelator) commit(path string) {
	c.store.SetState(domain.RouteSnapshot(path), domain.RouteLabel(path), true)
}
