package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyBase       = "base"
	KeyRoute      = "route"
	KeyLink       = "link"
	KeyEntry      = "entry"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyJobID      = "job_id"
	KeyTrigger    = "trigger"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Base(b string) slog.Attr         { return slog.String(KeyBase, b) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func Entry(loc string) slog.Attr      { return slog.String(KeyEntry, loc) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func Trigger(reason string) slog.Attr { return slog.String(KeyTrigger, reason) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
