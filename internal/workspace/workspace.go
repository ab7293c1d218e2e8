// Package workspace enumerates and reads C# source files under a project
// root. Enumeration honors configurable include/exclude glob patterns;
// build output and VCS directories are always skipped.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/classkit/classkit/internal/debug"
	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/types"
)

// Default patterns applied when the configuration supplies none.
var (
	DefaultInclude = []string{"**/*.cs"}
	DefaultExclude = []string{
		"**/bin/**",
		"**/obj/**",
		"**/.git/**",
		"**/.vs/**",
		"**/node_modules/**",
	}
)

// Workspace provides file access rooted at a single directory.
type Workspace struct {
	Root    string
	Include []string
	Exclude []string
	// MaxParallel bounds concurrent file scans; 0 or less means one worker
	// per CPU.
	MaxParallel int
}

// New builds a workspace over root. Empty pattern lists fall back to the
// defaults.
func New(root string, include, exclude []string) *Workspace {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}
	return &Workspace{Root: root, Include: include, Exclude: exclude}
}

// Files walks the root and returns the relative paths of every source file
// matching the include patterns and none of the exclude patterns, sorted
// for deterministic output. The walk stops early when ctx is done.
func (w *Workspace) Files(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			debug.Printf("walk: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.excluded(rel) || !w.included(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (w *Workspace) included(rel string) bool {
	for _, p := range w.Include {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Workspace) excluded(rel string) bool {
	for _, p := range w.Exclude {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		// A directory prefix match excludes the whole subtree.
		if ok, err := doublestar.Match(p, strings.TrimSuffix(rel, "/")); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadDocument loads a file (absolute or root-relative path) as a document.
// The document URI is the root-relative slash path.
func (w *Workspace) ReadDocument(path string) (*types.Document, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.Root, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.NewFileError("read", path, err)
	}
	rel, relErr := filepath.Rel(w.Root, abs)
	if relErr != nil {
		rel = path
	}
	return types.NewDocument(filepath.ToSlash(rel), 0, string(data)), nil
}

// PartialClassHit is one file containing a partial declaration of a class.
type PartialClassHit struct {
	Path  string
	Lines []int // zero-based line numbers of the partial declarations
}

// FindPartialClasses scans every workspace file for `partial class <name>`
// declarations outside comments and strings. Scanning runs with bounded
// parallelism and stops returning new work once ctx is done; hits gathered
// so far are returned alongside the context error so callers can degrade
// to partial results.
func (w *Workspace) FindPartialClasses(ctx context.Context, className string) ([]PartialClassHit, error) {
	files, err := w.Files(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		hits []PartialClassHit
	)
	limit := w.MaxParallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			doc, err := w.ReadDocument(rel)
			if err != nil {
				// A file deleted mid-scan is not an error for the whole scan.
				debug.Printf("partial scan: %v", err)
				return nil
			}
			lines := textscan.PartialClassLines(doc.Text, className)
			if len(lines) == 0 {
				return nil
			}
			mu.Lock()
			hits = append(hits, PartialClassHit{Path: rel, Lines: lines})
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	sort.Slice(hits, func(i, j int) bool { return hits[i].Path < hits[j].Path })
	if err != nil {
		return hits, err
	}
	return hits, nil
}
