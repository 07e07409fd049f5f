package build

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/navbuilder/internal/logfields"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// staging collects build output in a sibling of the final directory and
// swaps it into place on promote.
type staging struct {
	final string
	dir   string
	bytes int64
}

func beginStaging(final string) (*staging, error) {
	parent := filepath.Dir(final)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, stagingError(ErrStaging, err, final)
	}
	dir, err := os.MkdirTemp(parent, filepath.Base(final)+".staging-")
	if err != nil {
		return nil, stagingError(ErrStaging, err, final)
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, stagingError(ErrStaging, err, final)
	}
	slog.Debug("Initialized staging directory", slog.String("staging", dir), logfields.Path(final))
	return &staging{final: final, dir: dir}, nil
}

func stagingError(sentinel, cause error, path string) error {
	return ferrors.FileSystemError(sentinel.Error()).
		WithCause(errors.Join(sentinel, cause)).
		WithContext("path", path).
		Build()
}

// writeJSON writes v as indented JSON to rel inside the staging directory.
func (s *staging) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal output").WithContext("file", rel).Build()
	}
	return s.writeFile(rel, append(data, '\n'))
}

func (s *staging) writeFile(rel string, data []byte) error {
	path := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stagingError(ErrStaging, err, path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stagingError(ErrStaging, err, path)
	}
	s.bytes += int64(len(data))
	return nil
}

// carryOver copies files of the current output that this build did not
// produce into the staging directory.
func (s *staging) carryOver() error {
	if _, err := os.Stat(s.final); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(s.final, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.final, path)
		if err != nil || rel == "." {
			return err
		}
		target := filepath.Join(s.dir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if _, err := os.Lstat(target); err == nil {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

// promote replaces the final directory with the staging directory. The
// previous output is moved aside first and removed once the rename succeeded.
func (s *staging) promote() error {
	prev := s.final + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return stagingError(ErrPromoteStaging, err, prev)
	}
	hadPrev := false
	if _, err := os.Stat(s.final); err == nil {
		if err := os.Rename(s.final, prev); err != nil {
			return stagingError(ErrPromoteStaging, err, s.final)
		}
		hadPrev = true
	}
	if err := os.Rename(s.dir, s.final); err != nil {
		if hadPrev {
			_ = os.Rename(prev, s.final)
		}
		return stagingError(ErrPromoteStaging, err, s.final)
	}
	s.dir = ""
	if hadPrev {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Info("Promoted staging directory", logfields.Path(s.final))
	return nil
}

// abort removes the staging directory of a failed build.
func (s *staging) abort() {
	if s == nil || s.dir == "" {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("Failed to remove staging directory", logfields.Path(s.dir), logfields.Error(err))
	}
	s.dir = ""
}
