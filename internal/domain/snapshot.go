package domain

import "strings"

// MetaKey is the reserved top-level key holding synchronization metadata.
const MetaKey = "__devTools"

// Metadata keys inside the __devTools object.
const (
	metaAction    = "action"
	metaDebugging = "debugging"
	metaRouter    = "router"
	metaPath      = "path"
)

// Reserved action labels.
const (
	// ActionRouteNavigation tags snapshots produced by application navigation.
	ActionRouteNavigation = "ROUTE_NAVIGATION"

	// JumpMarker is appended (in brackets) to the action label of every state
	// applied from a tool jump, e.g. "increment [REDUX_DEVTOOLS_JUMP]".
	JumpMarker = "REDUX_DEVTOOLS_JUMP"
)

// Snapshot is the full serializable application state at one instant.
// Values follow encoding/json decoding conventions (map[string]any, []any,
// float64, string, bool, nil).
type Snapshot map[string]any

// JumpLabel returns the action label used when applying a replayed state.
func JumpLabel(action string) string {
	return action + " [" + JumpMarker + "]"
}

// IsJumpLabel reports whether an action label was produced by JumpLabel.
func IsJumpLabel(action string) bool {
	return strings.HasSuffix(action, JumpMarker+"]")
}

// RouteLabel returns the action label used when committing a navigation.
func RouteLabel(path string) string {
	return ActionRouteNavigation + " [" + path + "]"
}

// RouteSnapshot builds the partial state committed on application navigation.
func RouteSnapshot(path string) Snapshot {
	return Snapshot{
		MetaKey: map[string]any{
			metaRouter: map[string]any{metaPath: path},
			metaAction: ActionRouteNavigation,
		},
	}
}

// Meta returns the live __devTools object, or nil and false when absent.
// Mutations to the returned map are visible through the snapshot.
func (s Snapshot) Meta() (map[string]any, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s[MetaKey].(map[string]any)
	return m, ok
}

// HasMeta reports whether the snapshot carries __devTools metadata.
func (s Snapshot) HasMeta() bool {
	_, ok := s.Meta()
	return ok
}

// Action returns the action label recorded in the metadata.
func (s Snapshot) Action() string {
	m, ok := s.Meta()
	if !ok {
		return ""
	}
	a, _ := m[metaAction].(string)
	return a
}

// Debugging reports whether the snapshot is a tool replay being applied.
func (s Snapshot) Debugging() bool {
	m, ok := s.Meta()
	if !ok {
		return false
	}
	d, _ := m[metaDebugging].(bool)
	return d
}

// MarkDebugging sets the transient debugging flag. The snapshot must carry
// metadata; MarkDebugging reports whether the flag was set.
func (s Snapshot) MarkDebugging() bool {
	m, ok := s.Meta()
	if !ok {
		return false
	}
	m[metaDebugging] = true
	return true
}

// ConsumeDebugging clears the debugging flag in place and reports whether it
// was set. The flag is removed from the live metadata object so it cannot
// leak into later snapshots that share it.
func (s Snapshot) ConsumeDebugging() bool {
	m, ok := s.Meta()
	if !ok {
		return false
	}
	d, _ := m[metaDebugging].(bool)
	delete(m, metaDebugging)
	return d
}

// RouterPath returns __devTools.router.path when present and non-empty.
func (s Snapshot) RouterPath() (string, bool) {
	m, ok := s.Meta()
	if !ok {
		return "", false
	}
	r, ok := m[metaRouter].(map[string]any)
	if !ok {
		return "", false
	}
	p, ok := r[metaPath].(string)
	return p, ok && p != ""
}

// WithAction returns a shallow copy of s whose metadata is a copy of the
// original metadata with action set. s itself is not modified.
func (s Snapshot) WithAction(action string) Snapshot {
	out := make(Snapshot, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	meta := map[string]any{}
	if m, ok := s.Meta(); ok {
		for k, v := range m {
			meta[k] = v
		}
	}
	meta[metaAction] = action
	out[MetaKey] = meta
	return out
}

// Merge returns a new snapshot holding s overlaid with the top-level keys of
// partial. Neither input is modified.
func (s Snapshot) Merge(partial Snapshot) Snapshot {
	out := make(Snapshot, len(s)+len(partial))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return Snapshot(cloneMap(s))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Snapshot:
		return Snapshot(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// HistoryEntry records one committed store mutation.
type HistoryEntry struct {
	Action      string   `json:"action"`
	StateBefore Snapshot `json:"beginState"`
	StateAfter  Snapshot `json:"endState"`
}
