package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/dshills/prdoctor/internal/outcome"
)

// Mode selects where the file list comes from.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Source records which branch produced a file list.
type Source string

const (
	SourceLocal         Source = "local"
	SourceRemote        Source = "remote"
	SourceLocalFallback Source = "local_fallback"
)

// EntryBlob is the tree entry type for regular files.
const EntryBlob = "blob"

// TreeEntry is one entry of a recursive repository tree listing.
type TreeEntry struct {
	Path string
	Type string
}

// TreeLister lists the full recursive tree of a repository ref.
type TreeLister interface {
	ListRepositoryTree(ctx context.Context, ref string) ([]TreeEntry, error)
}

// Result is the outcome of a scan.
type Result struct {
	Files  []string
	Source Source
	// Remote is the remote attempt; zero value when no remote scan ran.
	Remote outcome.Outcome[[]string]
}

// Scanner enumerates repository file paths.
type Scanner struct {
	Root   string
	Tree   TreeLister
	Ref    string
	Logger *slog.Logger
}

// New creates a Scanner rooted at root. tree may be nil when only local
// scans are needed.
func New(root string, tree TreeLister, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{Root: root, Tree: tree, Logger: logger}
}

// Scan lists the files of repo. Remote failures fall back to a local scan.
// The only error returned is a failed local scan.
func (s *Scanner) Scan(ctx context.Context, repo string, mode Mode) (Result, error) {
	s.logger().Info("Scanning repository structure", "repo", repo, "mode", mode)

	if mode != ModeRemote {
		files, err := s.Local()
		if err != nil {
			return Result{}, err
		}
		return Result{Files: files, Source: SourceLocal}, nil
	}

	remote := s.Remote(ctx)
	if files, ok := remote.Value(); ok {
		return Result{Files: files, Source: SourceRemote, Remote: remote}, nil
	}

	s.logger().Warn("Remote tree listing failed, falling back to local scan",
		"repo", repo, "reason", remote.Reason(), "error", remote.Err())
	files, err := s.Local()
	if err != nil {
		return Result{}, err
	}
	return Result{Files: files, Source: SourceLocalFallback, Remote: remote}, nil
}

// Remote lists blob paths through the tree lister.
func (s *Scanner) Remote(ctx context.Context) outcome.Outcome[[]string] {
	if s.Tree == nil {
		return outcome.Fail[[]string](outcome.ReasonUnavailable, errors.New("no hosting client configured"))
	}
	entries, err := s.Tree.ListRepositoryTree(ctx, s.Ref)
	if err != nil {
		return outcome.Fail[[]string](outcome.ReasonRemoteScanFallback, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == EntryBlob {
			files = append(files, e.Path)
		}
	}
	return outcome.Ok(files)
}

// Local walks Root and returns forward-slash relative paths of every file
// that is not ignored.
func (s *Scanner) Local() ([]string, error) {
	root := s.Root
	if root == "" {
		root = "."
	}
	rules, err := LoadIgnoreRules(root)
	if err != nil {
		s.logger().Warn("Could not read ignore file, using defaults", "error", err)
		rules = NewIgnoreRules()
	}
	s.logger().Debug("Walking local tree", "root", root, "ignore", rules.Patterns())
	return walk(root, rules, s.logger())
}

func walk(root string, rules *IgnoreRules, logger *slog.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && rules.PruneDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !rules.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
