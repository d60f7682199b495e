package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process-wide logger for the aqualink server.
// In prod it emits JSON with RFC3339Nano timestamps so the log pipeline
// can ingest entries without reparsing; every other env gets
// human-readable text output. Unknown levels fall back to info.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lv := new(slog.LevelVar) // info unless overridden
	switch level {
	case "debug":
		lv.Set(slog.LevelDebug)
	case "warn":
		lv.Set(slog.LevelWarn)
	case "error":
		lv.Set(slog.LevelError)
	case "info", "":
	default:
		slog.Default().Warn("unknown LOG_LEVEL, using info", slog.String("value", level))
	}

	if env == "prod" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lv,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}
