package waldb

import "waldb/internal/logging"

// Logger re-exports the logging interface so callers configuring Options
// don't need to import the internal package directly.
type Logger = logging.Logger

// Options configures Open.
type Options struct {
	// Logger receives structured log lines for recovery and database
	// operations. If nil, a default stderr logger at LevelWarn is used.
	Logger Logger

	// Truncate, if true, discards any existing log file at Open instead of
	// recovering from and appending to it. Used by callers that want a
	// fresh database at a given path.
	Truncate bool
}

func (o Options) logger() Logger {
	return logging.OrDefault(o.Logger)
}
