package movebase

import (
	"context"
	"regexp"
	"strings"

	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/types"
)

// collectMembers gathers every movable member of the class. The symbol tree
// supplies exact member boundaries when available; otherwise a textual
// chunker walks the class body at brace depth zero. Both paths extend each
// member's span backward over immediately preceding attribute and
// doc-comment lines and return members in ascending source order.
func (e *Engine) collectMembers(ctx context.Context, doc *types.Document, cls *extract.ClassBody) []*MovableClassMemberInfo {
	syms := e.cache.DocumentSymbols(ctx, doc)
	if syms != nil {
		if classSym := symbols.FindByKindAndName(syms, types.KindClass, cls.Info.Name); classSym != nil {
			return membersFromSymbols(doc, classSym)
		}
		return nil
	}
	return membersFromText(doc.Text, cls)
}

func membersFromSymbols(doc *types.Document, classSym *types.Symbol) []*MovableClassMemberInfo {
	var out []*MovableClassMemberInfo
	for _, child := range classSym.Children {
		var kind MemberKind
		switch child.Kind {
		case types.KindField:
			kind = KindField
		case types.KindProperty:
			kind = KindProperty
		case types.KindMethod:
			kind = KindMethod
		default:
			continue
		}
		start := doc.OffsetAt(child.Range.Start)
		end := doc.OffsetAt(child.Range.End)
		info := buildMemberInfo(doc.Text, kind, child.Name, start, end)
		info.Symbol = child
		out = append(out, info)
	}
	return out
}

// buildMemberInfo normalizes a raw declaration span into a member record:
// the span grows backward over leading attribute/doc-comment lines, snaps
// to line boundaries and swallows the trailing line break so deleting the
// span leaves no blank hole.
func buildMemberInfo(text string, kind MemberKind, name string, start, end int) *MovableClassMemberInfo {
	start = extendLeading(text, start)

	textEnd := end
	if nl := strings.IndexByte(text[end:], '\n'); nl >= 0 {
		rest := text[end : end+nl]
		if strings.TrimSpace(rest) == "" {
			end = end + nl + 1
		}
	}

	return &MovableClassMemberInfo{
		Kind:  kind,
		Name:  name,
		Start: start,
		End:   end,
		Text:  strings.TrimRight(text[start:textEnd], " \t\r\n"),
		Order: start,
	}
}

var leadingLineRe = regexp.MustCompile(`^[ \t]*(\[[^\n]*\]|///[^\n]*|//[^\n]*)\r?$`)

// extendLeading walks upward from the declaration start over contiguous
// attribute or documentation-comment lines, stopping at the first blank or
// unrelated line. When code precedes the declaration on its own line the
// exact start is kept: snapping to the line start would swallow that code
// into the member span.
func extendLeading(text string, start int) int {
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	if strings.TrimSpace(text[lineStart:start]) != "" {
		return start
	}
	for lineStart > 0 {
		prevEnd := lineStart - 1 // the newline
		prevStart := strings.LastIndexByte(text[:prevEnd], '\n') + 1
		line := strings.TrimSuffix(text[prevStart:prevEnd], "\r")
		if !leadingLineRe.MatchString(line) {
			break
		}
		lineStart = prevStart
	}
	return lineStart
}

var (
	fieldDeclRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:(?:protected\s+internal|private\s+protected|public|protected|internal|private)\s+)?` +
			`(?:(?:static|readonly|const|volatile|new)\s+)*` +
			`[\w\.\?]+(?:<[^;=]*?>)?(?:\[[,\s]*\])*\??\s+` +
			`([A-Za-z_][A-Za-z0-9_]*)\s*(?:=|;)`)

	methodNameRe = regexp.MustCompile(
		`(?:protected\s+internal|private\s+protected|public|protected|internal|private|static|virtual|override|sealed|async|new|partial|\s)*` +
			`[\w\.\?<>,\[\]\s]+?\s([A-Za-z_][A-Za-z0-9_]*)\s*(?:<[^(>]*>)?\s*\($`)

	propertyNameRe = regexp.MustCompile(
		`([A-Za-z_][A-Za-z0-9_]*)\s*(?:\{|=>)`)

	nestedTypeRe = regexp.MustCompile(`^\s*(?:\[[^\n]*\]\s*)*(?:(?:public|protected|internal|private|static|sealed|abstract|partial)\s+)*(?:class|interface|struct|enum|record)\b`)
)

// membersFromText is the fallback collector: it chunks the class body into
// depth-zero declarations and classifies each chunk. Constructors, nested
// types and anything unclassifiable are skipped.
func membersFromText(text string, cls *extract.ClassBody) []*MovableClassMemberInfo {
	var out []*MovableClassMemberInfo
	bodyStart := cls.OpenBrace + 1
	for _, c := range memberChunks(text, bodyStart, cls.CloseBrace) {
		chunk := text[c.start:c.end]
		if nestedTypeRe.MatchString(chunk) {
			continue
		}
		kind, name, ok := classifyChunk(chunk, cls.Info.Name)
		if !ok {
			continue
		}
		out = append(out, buildMemberInfo(text, kind, name, c.start, c.end))
	}
	return out
}

type chunkSpan struct {
	start, end int
}

// memberChunks splits the body slice [start, end) into member declaration
// chunks. A chunk runs from the first non-whitespace character to the
// matching terminator: a depth-zero semicolon, or a matched brace block
// (extended over a property initializer's trailing `= ...;`).
func memberChunks(text string, start, end int) []chunkSpan {
	var chunks []chunkSpan
	i := start
	for i < end {
		for i < end && isSpaceByte(text[i]) {
			i++
		}
		if i >= end {
			break
		}
		chunkStart := i
		chunkEnd := scanChunkEnd(text, i, end)
		if chunkEnd <= chunkStart {
			break
		}
		chunks = append(chunks, chunkSpan{start: chunkStart, end: chunkEnd})
		i = chunkEnd
	}
	return chunks
}

func scanChunkEnd(text string, start, limit int) int {
	var quote byte
	for i := start; i < limit; i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '/':
			if i+1 < limit && text[i+1] == '/' {
				// Comment runs to end of line.
				if nl := strings.IndexByte(text[i:limit], '\n'); nl >= 0 {
					i += nl
				} else {
					return limit
				}
			}
		case ';':
			return i + 1
		case '{':
			close, ok := textscan.FindMatchingBrace(text[:limit], i)
			if !ok {
				return limit
			}
			// A property initializer continues past the accessor block:
			// `public int X { get; } = 5;`
			j := close + 1
			for j < limit && isSpaceByte(text[j]) {
				j++
			}
			if j < limit && text[j] == '=' && (j+1 >= limit || text[j+1] != '>') {
				if semi := strings.IndexByte(text[j:limit], ';'); semi >= 0 {
					return j + semi + 1
				}
			}
			return close + 1
		}
	}
	return limit
}

// classifyChunk decides what kind of member a chunk declares and extracts
// its name. The declaration line is the first line that is not an
// attribute or comment.
func classifyChunk(chunk, className string) (MemberKind, string, bool) {
	decl := declarationText(chunk)
	if decl == "" {
		return "", "", false
	}

	// Methods: a name directly before the parameter list, with a real type
	// token before the name (which excludes constructors).
	if open := strings.IndexByte(decl, '('); open >= 0 {
		head := decl[:open+1]
		if m := methodNameRe.FindStringSubmatch(head); m != nil && m[1] != className {
			return KindMethod, m[1], true
		}
		return "", "", false
	}

	if strings.Contains(decl, "{") || strings.Contains(decl, "=>") {
		cut := strings.IndexByte(decl, '{')
		if arrow := strings.Index(decl, "=>"); arrow >= 0 && (cut < 0 || arrow < cut) {
			cut = arrow
		}
		head := decl[:min(cut+2, len(decl))]
		if m := propertyNameRe.FindStringSubmatch(head); m != nil {
			return KindProperty, m[1], true
		}
		return "", "", false
	}

	if m := fieldDeclRe.FindStringSubmatch(decl); m != nil {
		return KindField, m[1], true
	}
	return "", "", false
}

// declarationText strips leading attribute and comment lines from a chunk.
func declarationText(chunk string) string {
	lines := strings.Split(chunk, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		return strings.Join(lines[i:], "\n")
	}
	return ""
}

func referencesName(text, name string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(text)
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
