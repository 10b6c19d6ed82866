// Package fs reads recorded debugging sessions from disk.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bft-labs/devsync/internal/domain"
)

// SessionExtensions are the file extensions recognized as recorded sessions.
var SessionExtensions = []string{".json", ".jsonc"}

// IsSessionFile reports whether path has a session file extension.
func IsSessionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SessionExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseSession strips comments and trailing commas from data, then decodes
// the lifted state it holds.
func ParseSession(data []byte) (domain.LiftedState, error) {
	var lifted domain.LiftedState
	if err := json.Unmarshal(jsonc.ToJSON(data), &lifted); err != nil {
		return domain.LiftedState{}, fmt.Errorf("parsing session: %w", err)
	}
	if len(lifted.ComputedStates) == 0 {
		return domain.LiftedState{}, fmt.Errorf("%w: session has no computed states", domain.ErrMalformedCommand)
	}
	return lifted, nil
}

// SessionDir lists and reads the recorded sessions in one directory.
type SessionDir struct {
	dir string
}

// NewSessionDir creates a SessionDir for dir.
func NewSessionDir(dir string) *SessionDir {
	return &SessionDir{dir: dir}
}

// List returns the session files in the directory, sorted by name.
// A missing directory yields no sessions and no error.
func (d *SessionDir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsSessionFile(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(d.dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Load reads one session file. A bare file name is resolved inside the
// directory; any other path is used as given.
func (d *SessionDir) Load(ctx context.Context, path string) (domain.LiftedState, error) {
	if err := ctx.Err(); err != nil {
		return domain.LiftedState{}, err
	}
	if filepath.Base(path) == path {
		path = filepath.Join(d.dir, path)
	}
	return LoadSession(path)
}

// LoadSession reads and parses a session file.
func LoadSession(path string) (domain.LiftedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LiftedState{}, fmt.Errorf("reading %s: %w", path, err)
	}
	lifted, err := ParseSession(data)
	if err != nil {
		return domain.LiftedState{}, fmt.Errorf("%s: %w", path, err)
	}
	return lifted, nil
}
