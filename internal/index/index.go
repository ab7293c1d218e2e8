// Package index maintains a workspace-wide map from class names to the
// files declaring them, so cross-file lookups (base classes, partial
// declarations) avoid rescanning unchanged files.
package index

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/classkit/classkit/internal/debug"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/workspace"
)

// ClassLocation records one class declaration found during a scan.
type ClassLocation struct {
	ClassName string
	Path      string
	Namespace string
	Line      int // zero-based
	Partial   bool
}

// fileEntry is the index's per-file snapshot. Rebuilds replace the whole
// entry atomically under the index lock; readers never see a half-updated
// file.
type fileEntry struct {
	hash    uint64
	classes []ClassLocation
}

// Index is the class-name index. All methods are safe for concurrent use.
type Index struct {
	ws *workspace.Workspace

	mu      sync.RWMutex
	files   map[string]*fileEntry
	byClass map[string][]*ClassLocation
}

// New builds an empty index over the workspace.
func New(ws *workspace.Workspace) *Index {
	return &Index{
		ws:      ws,
		files:   make(map[string]*fileEntry),
		byClass: make(map[string][]*ClassLocation),
	}
}

var classDeclRe = regexp.MustCompile(
	`(?m)^[ \t]*(?:\[[^\n]*\][ \t]*)*(?:(?:public|protected|internal|private|static|sealed|abstract)\s+)*(partial\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)

// Build scans every workspace file and populates the index. Files whose
// content hash matches the previous scan are skipped.
func (ix *Index) Build(ctx context.Context) error {
	files, err := ix.ws.Files(ctx)
	if err != nil {
		return err
	}
	for _, rel := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ix.UpdateFile(rel)
	}
	return nil
}

// UpdateFile rescans a single file. A read failure removes the file from
// the index, matching deletion semantics.
func (ix *Index) UpdateFile(rel string) {
	doc, err := ix.ws.ReadDocument(rel)
	if err != nil {
		debug.Printf("index: dropping %s: %v", rel, err)
		ix.RemoveFile(rel)
		return
	}

	hash := xxhash.Sum64String(doc.Text)
	ix.mu.RLock()
	prev, ok := ix.files[rel]
	ix.mu.RUnlock()
	if ok && prev.hash == hash {
		return
	}

	classes := scanClasses(rel, doc.Text)
	ix.mu.Lock()
	ix.replaceLocked(rel, &fileEntry{hash: hash, classes: classes})
	ix.mu.Unlock()
}

// RemoveFile drops a file's contribution to the index.
func (ix *Index) RemoveFile(rel string) {
	ix.mu.Lock()
	ix.replaceLocked(rel, nil)
	ix.mu.Unlock()
}

// replaceLocked swaps the per-file snapshot and rebuilds the affected
// class-name postings. Caller holds the write lock.
func (ix *Index) replaceLocked(rel string, entry *fileEntry) {
	if old, ok := ix.files[rel]; ok {
		for i := range old.classes {
			loc := &old.classes[i]
			ix.byClass[loc.ClassName] = removeLoc(ix.byClass[loc.ClassName], loc)
		}
	}
	if entry == nil {
		delete(ix.files, rel)
		return
	}
	ix.files[rel] = entry
	for i := range entry.classes {
		loc := &entry.classes[i]
		ix.byClass[loc.ClassName] = append(ix.byClass[loc.ClassName], loc)
	}
}

// Lookup returns copies of every known declaration of className, sorted by
// path then line. The returned slice is owned by the caller.
func (ix *Index) Lookup(className string) []ClassLocation {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ptrs := ix.byClass[className]
	out := make([]ClassLocation, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Classes returns the sorted set of all known class names.
func (ix *Index) Classes() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.byClass))
	for name, ptrs := range ix.byClass {
		if len(ptrs) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func removeLoc(s []*ClassLocation, target *ClassLocation) []*ClassLocation {
	out := s[:0]
	for _, p := range s {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

// scanClasses extracts class declarations from a file. Comment and string
// content is blanked line by line before matching so commented-out
// declarations never index.
func scanClasses(rel, text string) []ClassLocation {
	stripped := stripCommentsAndStrings(text)
	var out []ClassLocation
	for _, m := range classDeclRe.FindAllStringSubmatchIndex(stripped, -1) {
		name := stripped[m[4]:m[5]]
		line := lineOf(stripped, m[0])
		ns := ""
		if scope, ok := textscan.FindNamespaceScope(text, m[0]); ok {
			ns = scope.Name
		}
		out = append(out, ClassLocation{
			ClassName: name,
			Path:      rel,
			Namespace: ns,
			Line:      line,
			Partial:   m[2] >= 0,
		})
	}
	return out
}

func stripCommentsAndStrings(text string) string {
	var sc textscan.CodeScanner
	var b []byte
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			line := text[start:i]
			b = append(b, sc.StripLine(line)...)
			if i < len(text) {
				b = append(b, '\n')
			}
			start = i + 1
		}
	}
	return string(b)
}

func lineOf(text string, offset int) int {
	n := 0
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}
