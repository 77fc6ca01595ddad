package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyPath        = "path"
	KeyFormat      = "format"
	KeyFingerprint = "fingerprint"
	KeyRenderMode  = "render_mode"
	KeyAdapter     = "adapter"
	KeyFallback    = "fallback"
	KeyPages       = "pages"
	KeyDurationMS  = "duration_ms"
	KeyOutcome     = "outcome"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Fingerprint(fp string) slog.Attr { return slog.String(KeyFingerprint, fp) }
func RenderMode(m string) slog.Attr   { return slog.String(KeyRenderMode, m) }
func Adapter(name string) slog.Attr   { return slog.String(KeyAdapter, name) }
func Fallback(doc string) slog.Attr   { return slog.String(KeyFallback, doc) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
