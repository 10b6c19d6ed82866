// Package sessionwatch replays recorded sessions into the debugging tool
// as they are dropped into a directory.
package sessionwatch

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/devsync/internal/adapters/fs"
	"github.com/bft-labs/devsync/pkg/devsync"
	"github.com/bft-labs/devsync/pkg/log"
)

// Plugin watches a session directory. Every session file that is created or
// rewritten is parsed and imported into the tool once writes settle.
type Plugin struct {
	mu sync.Mutex

	dir            string
	debounceDelay  time.Duration
	importExisting bool
	sessions       *fs.SessionDir

	logger   devsync.Logger
	importer devsync.Importer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	pending  map[string]struct{}
}

// Config holds configuration options for the session watcher plugin.
type Config struct {
	// Dir is the directory to watch. Empty disables the plugin.
	Dir string

	// DebounceDelay is the delay to wait after a file change before
	// importing.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// ImportExisting imports the sessions already in Dir when the plugin
	// starts, in name order.
	ImportExisting bool
}

// DefaultConfig returns a Config with sensible defaults for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		DebounceDelay:  100 * time.Millisecond,
		ImportExisting: true,
	}
}

// New creates a new session watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		dir:            cfg.Dir,
		debounceDelay:  cfg.DebounceDelay,
		importExisting: cfg.ImportExisting,
		sessions:       fs.NewSessionDir(cfg.Dir),
		pending:        make(map[string]struct{}),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "sessionwatch"
}

// Initialize starts watching the session directory. A directory that cannot
// be watched is logged and leaves the plugin idle.
func (p *Plugin) Initialize(ctx context.Context, cfg devsync.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.importer = cfg.Importer
	p.mu.Unlock()

	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}

	if p.dir == "" || p.importer == nil {
		p.logger.Warn("session watcher disabled: no directory or importer configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("session watcher: failed to create watcher", log.Err(err))
		return nil
	}
	if err := watcher.Add(p.dir); err != nil {
		p.logger.Error("session watcher: failed to watch directory",
			log.String("dir", p.dir),
			log.Err(err))
		_ = watcher.Close()
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("session watcher plugin initialized", log.String("dir", p.dir))

	if p.importExisting {
		existing, err := p.sessions.List(watchCtx)
		if err != nil {
			p.logger.Warn("session watcher: failed to list sessions", log.Err(err))
		}
		for _, path := range existing {
			p.schedule(watchCtx, path)
		}
	}

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher and drops pending imports.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.pending = make(map[string]struct{})
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !fs.IsSessionFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("session watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) schedule(ctx context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending[path] = struct{}{}
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.flush(ctx)
	})
}

// flush imports every pending session in name order. Sessions that arrive
// before the instance is running stay pending for the next flush.
func (p *Plugin) flush(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	paths := make([]string, 0, len(p.pending))
	for path := range p.pending {
		paths = append(paths, path)
	}
	p.pending = make(map[string]struct{})
	p.mu.Unlock()

	sort.Strings(paths)
	for _, path := range paths {
		if p.importFile(ctx, path) {
			p.schedule(ctx, path)
		}
	}
}

// importFile imports one session and reports whether it should be retried.
func (p *Plugin) importFile(ctx context.Context, path string) bool {
	session, err := p.sessions.Load(ctx, path)
	if err != nil {
		p.logger.Warn("session watcher: skipping unreadable session",
			log.String("file", filepath.Base(path)),
			log.Err(err))
		return false
	}

	if err := p.importer.Import(ctx, session); err != nil {
		switch {
		case errors.Is(err, devsync.ErrNotRunning) && ctx.Err() == nil:
			p.logger.Debug("session watcher: not running yet, retrying", log.String("file", filepath.Base(path)))
			return true
		case errors.Is(err, devsync.ErrNotRunning), errors.Is(err, context.Canceled):
			p.logger.Debug("session watcher: import dropped", log.String("file", filepath.Base(path)))
		default:
			p.logger.Error("session watcher: import failed",
				log.String("file", filepath.Base(path)),
				log.Err(err))
		}
		return false
	}

	p.logger.Info("session watcher: imported session",
		log.String("file", filepath.Base(path)),
		log.Int("states", len(session.ComputedStates)))
	return false
}

// Ensure Plugin implements devsync.Plugin.
var _ devsync.Plugin = (*Plugin)(nil)
