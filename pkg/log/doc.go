// Package log provides structured logging for beacon components.
//
// Loggers are constructed explicitly and passed by dependency injection;
// there is no package-level default logger.
//
// Example:
//
//	logger := log.NewLogger(
//	    log.WithLevel(log.DebugLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	logger = logger.With(log.Component("eventlog"))
//	logger.Info("append committed", log.Uint64("seq", 42))
//
// RedirectStdLog routes standard library log output (Pebble logs through
// the stdlib logger) into a Logger so all process output shares one format.
package log
