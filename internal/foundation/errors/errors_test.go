package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var errSentinel = stderrors.New("group has no prefix")

func TestClassifiedError(t *testing.T) {
	t.Run("config error carries location", func(t *testing.T) {
		err := ConfigError("invalid sidebar entry").
			WithContext("entry", `sidebar["/"][1]`).
			WithContext("line", 12).
			WithCause(errSentinel).
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
		if err.CanRetry() {
			t.Error("config errors require user action")
		}
		if !stderrors.Is(err, errSentinel) {
			t.Error("expected cause to be reachable with errors.Is")
		}
		entry, ok := err.Context().GetString("entry")
		if !ok || entry != `sidebar["/"][1]` {
			t.Errorf("unexpected entry context %q", entry)
		}
		want := `[config:fatal] invalid sidebar entry (entry=sidebar["/"][1], line=12): group has no prefix`
		if err.Error() != want {
			t.Errorf("unexpected message:\n got %s\nwant %s", err.Error(), want)
		}
	})

	t.Run("detection through wrapping", func(t *testing.T) {
		inner := ContentError("frontmatter unterminated").Build()
		wrapped := fmt.Errorf("index content: %w", inner)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryContent) {
			t.Error("expected content category")
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Errorf("unexpected severity %s", GetSeverity(wrapped))
		}
		if GetCategory(stderrors.New("plain")) != CategoryInternal {
			t.Error("unclassified errors default to internal")
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := GitError("log failed").Build()
		extended := base.WithContext("path", "posts/a.md")
		if _, ok := base.Context().Get("path"); ok {
			t.Error("WithContext must not mutate the original error")
		}
		if p, _ := extended.Context().GetString("path"); p != "posts/a.md" {
			t.Errorf("unexpected path %q", p)
		}
	})
}

func TestCLIErrorAdapter(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{stderrors.New("boom"), 1},
		{ValidationError("bad flag").Build(), 2},
		{ConfigError("missing prefix").Build(), 7},
		{ContentError("bad frontmatter").Build(), 7},
		{GitError("no repo").Build(), 8},
		{BuildError("write failed").Build(), 11},
		{InternalError("bug").Build(), 10},
	}
	for _, tt := range tests {
		if got := adapter.ExitCodeFor(tt.err); got != tt.code {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}

	code := adapter.HandleError(ConfigError("link has no target").WithContext("entry", "navbar[1]").Build())
	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "entry=navbar[1]") {
		t.Errorf("config diagnostics should include the entry location, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=config") {
		t.Errorf("expected category in logs, got %q", logs.String())
	}

	out.Reset()
	adapter.HandleError(GitError("history unavailable").WithCause(stderrors.New("repository does not exist")).Build())
	if strings.Contains(out.String(), "repository does not exist") {
		t.Error("non-verbose output should hide the cause of non-config errors")
	}
}

func TestHTTPErrorAdapter(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/navbar.json", nil)

	adapter.WriteErrorResponse(rec, req, ConfigError("no successful build").WithContext("entry", "navbar[0]").Build())

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"code":"config"`) || !strings.Contains(body, `"entry":"navbar[0]"`) {
		t.Errorf("unexpected body %s", body)
	}
	if adapter.StatusCodeFor(NotFoundError("no page").Build()) != http.StatusNotFound {
		t.Error("not_found should map to 404")
	}
}
