package movebase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/classkit/classkit/internal/types"
)

// BuildEdits produces the edit set relocating the triggering member and its
// dependency closure into the base class. Members are inserted in ascending
// source order and deleted in descending order so earlier deletion offsets
// stay valid. Each moved member has any leading private token promoted to
// protected.
func (e *Engine) BuildEdits(doc *types.Document, mctx *MoveToBaseContext) *types.WorkspaceEdit {
	moving := DependencyClosure(mctx.Member, mctx.AllMembers)
	if len(moving) == 0 {
		return types.NewWorkspaceEdit()
	}
	eol := doc.EOL()

	blocks := make([]string, 0, len(moving))
	for _, m := range moving {
		blocks = append(blocks, promoteToProtected(stripTrailingSpace(m.Text, eol)))
	}
	insertion := eol + strings.Join(blocks, eol+eol) + eol

	we := types.NewWorkspaceEdit()

	insertAt := insertOffsetBeforeBrace(doc.Text, mctx.BaseBody.CloseBrace)
	we.Add(doc.URI, types.Insert(doc.PositionAt(insertAt), insertion))

	// Descending deletion order.
	deletions := make([]*MovableClassMemberInfo, len(moving))
	copy(deletions, moving)
	sort.Slice(deletions, func(i, j int) bool {
		return deletions[i].Order > deletions[j].Order
	})
	for _, m := range deletions {
		we.Add(doc.URI, types.Delete(doc.RangeOf(m.Start, m.End)))
	}
	return we
}

// insertOffsetBeforeBrace anchors the insertion at the start of the closing
// brace's line when the brace sits alone on it, otherwise directly before
// the brace.
func insertOffsetBeforeBrace(text string, closeBrace int) int {
	lineStart := strings.LastIndexByte(text[:closeBrace], '\n') + 1
	if strings.TrimSpace(text[lineStart:closeBrace]) == "" {
		return lineStart
	}
	return closeBrace
}

// stripTrailingSpace removes trailing whitespace from every line of the
// member text without touching indentation.
func stripTrailingSpace(text, eol string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.Join(lines, eol)
}

var privateTokenRe = regexp.MustCompile(`^([ \t]*)private(\s)`)

// promoteToProtected rewrites a leading private token on the declaration
// line to protected. Members with no explicit accessibility, members
// already protected, public or internal, and the compound
// private-protected form are left byte-for-byte unchanged.
func promoteToProtected(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "private protected") {
			return text
		}
		lines[i] = privateTokenRe.ReplaceAllString(line, "${1}protected${2}")
		return strings.Join(lines, "\n")
	}
	return text
}
