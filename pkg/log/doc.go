// Package log provides the structured logging abstraction used by devsync.
//
// The bridge never logs through a global logger. Library users inject a
// [Logger] with devsync.WithLogger; the default discards everything.
//
// # Usage
//
// Wrap zerolog:
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("tool connected", log.String("instance", id))
//
// Or adapt an existing zerolog.Logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Implement [Logger] to route messages to any other logging library.
package log
