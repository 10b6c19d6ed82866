package navigation

import (
	"context"
	"reflect"
	"testing"
)

func TestHistory_ReportsEveryMove(t *testing.T) {
	h := NewHistory("/a")

	var seen []string
	unsubscribe := h.Subscribe(func(path string) { seen = append(seen, path) })

	h.Push("/b")
	h.Push("/c")
	if !h.Back() {
		t.Fatal("Back() = false, want true")
	}
	if !h.Forward() {
		t.Fatal("Forward() = false, want true")
	}
	h.Replace("/d")
	if err := h.Navigate(context.Background(), "/e"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	want := []string{"/b", "/c", "/b", "/c", "/d", "/e"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("events = %v, want %v", seen, want)
	}
	if got := h.CurrentPath(); got != "/e" {
		t.Errorf("CurrentPath() = %q, want /e", got)
	}

	unsubscribe()
	h.Push("/f")
	if len(seen) != len(want) {
		t.Errorf("received event after unsubscribe: %v", seen)
	}
}

func TestHistory_BoundsAndTruncation(t *testing.T) {
	h := NewHistory("")
	if got := h.CurrentPath(); got != "/" {
		t.Errorf("default path = %q, want /", got)
	}
	if h.Back() {
		t.Error("Back() at start = true, want false")
	}

	h.Push("/x")
	h.Push("/y")
	h.Back()
	h.Push("/z")

	if h.Forward() {
		t.Error("Forward() after push = true, want false")
	}
	if got := h.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3 (forward entry discarded)", got)
	}
}
