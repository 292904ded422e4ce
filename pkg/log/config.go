package log

// Config is the process-level logging configuration, typically sourced
// from flags or BEACON_LOG_* environment variables.
type Config struct {
	// Level is one of debug|info|warn|error|fatal. Default info.
	Level string
	// Format is one of text|json. Default text.
	Format string
}

// ApplyConfig builds a Logger from a Config. Unknown values are errors so
// callers can fall back deliberately.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, errUnknownFormat(cfg.Format)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(NewConsoleOutput())), nil
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string { return "log: unknown format " + string(e) }
