package authgate

import "github.com/go-logr/logr"

// resolveLogger falls back to a no-op logger so embedding applications
// are never forced to configure logging, and names the configured one so
// its lines are attributable.
func resolveLogger(logger logr.Logger) logr.Logger {
	if logger.GetSink() == nil {
		return logr.Discard()
	}
	return logger.WithName("authgate")
}
