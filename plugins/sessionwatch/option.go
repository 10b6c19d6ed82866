package sessionwatch

import "github.com/bft-labs/devsync/pkg/devsync"

// WithSessionWatch returns a devsync Option that imports recorded sessions
// written to cfg.Dir.
//
// Usage:
//
//	d, err := devsync.New(s, cfg,
//	    sessionwatch.WithSessionWatch(sessionwatch.Config{
//	        Dir:           "./sessions",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithSessionWatch(cfg Config) devsync.Option {
	return devsync.WithPlugin(New(cfg))
}
