// Package navigation provides an in-memory route history that devsync can
// observe and drive.
//
// History reports every route change to its subscribers. Push, Replace,
// Back and Forward are all reported the same way, so a bridge cannot tell
// browser-style back/forward apart from programmatic navigation.
package navigation

import (
	"context"
	"sync"

	"github.com/bft-labs/devsync/internal/ports"
)

// History is a linear route history with a cursor.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	subs    map[int]func(string)
	order   []int
	next    int
}

// NewHistory creates a history positioned at initial.
func NewHistory(initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{
		entries: []string{initial},
		subs:    make(map[int]func(string)),
	}
}

// CurrentPath returns the route at the cursor.
func (h *History) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Subscribe registers fn for every route change.
func (h *History) Subscribe(fn func(path string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	h.subs[id] = fn
	h.order = append(h.order, id)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
		for i, v := range h.order {
			if v == id {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
}

// Push appends path after the cursor, discarding forward entries.
func (h *History) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.cursor+1], path)
	h.cursor++
	h.mu.Unlock()
	h.emit(path)
}

// Replace overwrites the route at the cursor.
func (h *History) Replace(path string) {
	h.mu.Lock()
	h.entries[h.cursor] = path
	h.mu.Unlock()
	h.emit(path)
}

// Back moves the cursor one entry back. It reports false at the start.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves the cursor one entry forward. It reports false at the end.
func (h *History) Forward() bool {
	return h.move(1)
}

// Navigate pushes path; it lets a History serve as a custom route navigator.
func (h *History) Navigate(_ context.Context, path string) error {
	h.Push(path)
	return nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	target := h.cursor + delta
	if target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.cursor = target
	path := h.entries[target]
	h.mu.Unlock()

	h.emit(path)
	return true
}

// emit notifies subscribers outside the lock so they may navigate again.
func (h *History) emit(path string) {
	h.mu.Lock()
	fns := make([]func(string), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}

var (
	_ ports.NavigationSource = (*History)(nil)
	_ ports.RouteNavigator   = (*History)(nil)
	_ ports.HistoryPusher    = (*History)(nil)
)
