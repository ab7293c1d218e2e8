// Package movebase implements the move-to-base refactor: detect the movable
// member under the cursor, resolve the textual base class in the same
// document, compute the name-reference dependency closure, and emit an edit
// set that relocates the members while promoting private to protected.
package movebase

import (
	"context"
	"strings"

	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/types"
)

// MemberKind classifies a movable member.
type MemberKind string

const (
	KindField    MemberKind = "field"
	KindProperty MemberKind = "property"
	KindMethod   MemberKind = "method"
)

// MovableClassMemberInfo captures one class member as a relocatable text
// unit. Start/End cover the full span including immediately preceding
// attribute and doc-comment lines plus the trailing line break; Text is the
// verbatim slice without that trailing break. Order is the absolute start
// offset, used for stable ordering.
type MovableClassMemberInfo struct {
	Kind   MemberKind
	Name   string
	Start  int
	End    int
	Text   string
	Order  int
	Symbol *types.Symbol // nil on the textual fallback path
}

// MoveToBaseContext is everything the edit builder needs: the triggering
// member, both class bodies and every movable member of the source class.
// BaseBody is always a distinct class declared in the same document.
type MoveToBaseContext struct {
	Member        *MovableClassMemberInfo
	ClassBody     *extract.ClassBody
	BaseBody      *extract.ClassBody
	BaseClassName string
	AllMembers    []*MovableClassMemberInfo
}

// Engine prepares and builds move-to-base refactors.
type Engine struct {
	cache *symbols.Cache
}

// NewEngine builds an engine over the given symbol cache.
func NewEngine(cache *symbols.Cache) *Engine {
	return &Engine{cache: cache}
}

// Prepare detects whether a move-to-base action applies at pos. A nil
// result means the feature offers no action: no member at the cursor, no
// in-document base class, or the base resolves to the class itself. None of
// those are errors.
func (e *Engine) Prepare(ctx context.Context, doc *types.Document, pos types.Position) *MoveToBaseContext {
	offset := doc.OffsetAt(pos)

	cls, ok := extract.FindClassAt(doc.Text, offset)
	if !ok {
		return nil
	}

	baseName, ok := ResolveBaseName(cls.Header)
	if !ok {
		return nil
	}
	base, ok := extract.FindClass(doc.Text, baseName)
	if !ok || base.HeaderStart == cls.HeaderStart {
		return nil
	}

	all := e.collectMembers(ctx, doc, cls)
	if len(all) == 0 {
		return nil
	}

	var trigger *MovableClassMemberInfo
	for _, m := range all {
		if offset >= m.Start && offset < m.End {
			trigger = m
			break
		}
	}
	if trigger == nil {
		return nil
	}

	return &MoveToBaseContext{
		Member:        trigger,
		ClassBody:     cls,
		BaseBody:      base,
		BaseClassName: baseName,
		AllMembers:    all,
	}
}

// Members lists the movable members of the named class in source order.
func (e *Engine) Members(ctx context.Context, doc *types.Document, className string) ([]*MovableClassMemberInfo, error) {
	cls, ok := extract.FindClass(doc.Text, className)
	if !ok {
		return nil, errors.NewResolutionError("class", className)
	}
	return e.collectMembers(ctx, doc, cls), nil
}

// ResolveBaseName extracts the bare base class identifier from a class
// header: the text after ':' up to any where clause, first comma-separated
// entry, with global:: prefix, generic arguments and namespace
// qualification stripped. Interfaces listed first are indistinguishable
// from a base class textually; the caller's in-document class lookup
// filters those out.
func ResolveBaseName(header string) (string, bool) {
	colon := strings.IndexByte(header, ':')
	if colon < 0 {
		return "", false
	}
	inherit := header[colon+1:]
	if w := strings.Index(inherit, "where"); w >= 0 {
		inherit = inherit[:w]
	}
	first := extract.SplitTopLevel(inherit, ',')[0]
	first = strings.TrimSpace(first)
	first = strings.TrimPrefix(first, "global::")
	if lt := strings.IndexByte(first, '<'); lt >= 0 {
		first = first[:lt]
	}
	if dot := strings.LastIndexByte(first, '.'); dot >= 0 {
		first = first[dot+1:]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	return first, true
}

// DependencyClosure returns the transitive set of members that must move
// together with trigger, ordered by ascending source position. A candidate
// joins the set when its name appears as a whole-word token in the text of
// any member already in the set. The scan is name-based, not scope-aware:
// an unrelated member sharing a name token is pulled in too. That is a
// documented property of the heuristic, preserved for compatibility.
func DependencyClosure(trigger *MovableClassMemberInfo, all []*MovableClassMemberInfo) []*MovableClassMemberInfo {
	inSet := map[*MovableClassMemberInfo]bool{trigger: true}
	queue := []*MovableClassMemberInfo{trigger}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, candidate := range all {
			if inSet[candidate] {
				continue
			}
			if referencesName(current.Text, candidate.Name) {
				inSet[candidate] = true
				queue = append(queue, candidate)
			}
		}
	}

	result := make([]*MovableClassMemberInfo, 0, len(inSet))
	for _, m := range all {
		if inSet[m] {
			result = append(result, m)
		}
	}
	// all is already in ascending source order, so result is too.
	return result
}
