// Package gitinfo reads per-file authorship and timestamps from git history.
package gitinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// ErrNoRepository is returned by Open when dir is not inside a git work tree.
var ErrNoRepository = errors.New("not a git repository")

// Contributor is an author of commits touching a file.
type Contributor struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Commits int    `json:"commits"`
}

// FileInfo is the history summary of one file. Times are Unix milliseconds.
type FileInfo struct {
	CreatedTime  int64         `json:"createdTime,omitempty"`
	UpdatedTime  int64         `json:"updatedTime,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
}

// Repo reads history from a repository opened on disk. It is safe for
// concurrent use; history walks are serialized.
type Repo struct {
	mu   sync.Mutex
	repo *git.Repository
	root string
}

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoRepository
		}
		return nil, ferrors.GitError("open repository").WithCause(err).WithContext("path", dir).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no files to describe.
		return nil, ErrNoRepository
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	return &Repo{repo: repo, root: root}, nil
}

// Root returns the work tree root.
func (r *Repo) Root() string { return r.root }

// File summarizes the commits that touched path. ok is false when the file
// has no committed history.
func (r *Repo) File(path string) (info FileInfo, ok bool, err error) {
	rel, err := r.relative(path)
	if err != nil {
		return FileInfo{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return FileInfo{}, false, nil
		}
		return FileInfo{}, false, ferrors.GitError("read file history").WithCause(err).WithContext("file", rel).Build()
	}
	defer iter.Close()

	byEmail := map[string]*Contributor{}
	var order []string
	err = iter.ForEach(func(c *object.Commit) error {
		ms := c.Author.When.UnixMilli()
		if info.CreatedTime == 0 || ms < info.CreatedTime {
			info.CreatedTime = ms
		}
		if ms > info.UpdatedTime {
			info.UpdatedTime = ms
		}
		key := c.Author.Email
		if key == "" {
			key = c.Author.Name
		}
		if existing, seen := byEmail[key]; seen {
			existing.Commits++
			return nil
		}
		byEmail[key] = &Contributor{Name: c.Author.Name, Email: c.Author.Email, Commits: 1}
		order = append(order, key)
		return nil
	})
	if err != nil {
		return FileInfo{}, false, ferrors.GitError("walk file history").WithCause(err).WithContext("file", rel).Build()
	}
	if len(order) == 0 {
		return FileInfo{}, false, nil
	}

	for _, k := range order {
		info.Contributors = append(info.Contributors, *byEmail[k])
	}
	sort.SliceStable(info.Contributors, func(i, j int) bool {
		return info.Contributors[i].Commits > info.Contributors[j].Commits
	})
	return info, true, nil
}

func (r *Repo) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || (len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)) {
		return "", ferrors.GitError("file is outside the repository").
			WithContext("file", path).WithContext("root", r.root).Build()
	}
	return filepath.ToSlash(rel), nil
}

// String describes the repository for logs.
func (r *Repo) String() string { return fmt.Sprintf("git(%s)", r.root) }
