// Package extract pulls structured member descriptions out of raw class
// body text: constructors, abstract methods, abstract properties and generic
// type parameters. Every function here is a narrowly scoped pass over a
// pre-sliced body string; patterns are best-effort contracts, not a grammar.
package extract

import (
	"regexp"
	"strings"

	"github.com/classkit/classkit/internal/textscan"
)

// ClassInfo describes a class header: its name, declared generic type
// parameters and the constraint clause, kept verbatim so a derived class
// redeclaring the same parameters can repeat it.
type ClassInfo struct {
	Name           string
	TypeParameters []string
	Constraints    string // "where ..." or empty
}

// ClassBody locates a class declaration inside a document's text.
type ClassBody struct {
	Info        ClassInfo
	HeaderStart int // offset of the class keyword
	OpenBrace   int
	CloseBrace  int
	Header      string // header text from the class keyword up to the brace
}

// Body returns the text between the class braces, exclusive.
func (cb *ClassBody) Body(text string) string {
	return text[cb.OpenBrace+1 : cb.CloseBrace]
}

// FindClass locates the first lexical occurrence of `class <name>` and
// resolves its body via brace matching. Returns false when the class is not
// declared or its body never closes.
func FindClass(text, name string) (*ClassBody, bool) {
	re := regexp.MustCompile(`\bclass\s+` + regexp.QuoteMeta(name) + `\b`)
	m := re.FindStringIndex(text)
	if m == nil {
		return nil, false
	}
	return resolveClassAt(text, m[0], m[1], name)
}

// FindClassAt returns the innermost class whose body contains offset.
func FindClassAt(text string, offset int) (*ClassBody, bool) {
	re := regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`)
	var best *ClassBody
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		cb, ok := resolveClassAt(text, m[0], m[1], text[m[2]:m[3]])
		if !ok {
			continue
		}
		if offset > cb.OpenBrace && offset <= cb.CloseBrace {
			if best == nil || cb.HeaderStart > best.HeaderStart {
				best = cb
			}
		}
	}
	return best, best != nil
}

func resolveClassAt(text string, matchStart, nameEnd int, name string) (*ClassBody, bool) {
	info := ClassInfo{Name: name}

	i := nameEnd
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	if i < len(text) && text[i] == '<' {
		close, ok := matchingAngle(text, i)
		if !ok {
			return nil, false
		}
		info.TypeParameters = ParseTypeParameters(text[i+1 : close])
		i = close + 1
	}

	open := strings.IndexByte(text[i:], '{')
	if open < 0 {
		return nil, false
	}
	open += i
	if w := classWhereRe.FindStringIndex(text[i:open]); w != nil {
		info.Constraints = NormalizeType(text[i+w[0] : open])
	}
	closeBrace, ok := textscan.FindMatchingBrace(text, open)
	if !ok {
		return nil, false
	}
	return &ClassBody{
		Info:        info,
		HeaderStart: matchStart,
		OpenBrace:   open,
		CloseBrace:  closeBrace,
		Header:      strings.TrimSpace(text[matchStart:open]),
	}, true
}

// ParseTypeParameters extracts the ordered type parameter identifiers from
// the inside of a `<...>` list. Variance annotations and per-segment
// constraints are ignored; only the leading identifier of each
// comma-separated segment survives.
func ParseTypeParameters(inner string) []string {
	var params []string
	for _, segment := range SplitTopLevel(inner, ',') {
		fields := strings.Fields(segment)
		for _, f := range fields {
			if f == "in" || f == "out" {
				continue
			}
			params = append(params, strings.TrimRight(f, ":"))
			break
		}
	}
	return params
}

// NormalizeType collapses consecutive whitespace to single spaces and trims,
// so `Dictionary<string,\n    int>` compares equal across formatting.
func NormalizeType(t string) string {
	return strings.Join(strings.Fields(t), " ")
}

// SplitTopLevel splits s on sep, ignoring separators nested inside angle
// brackets, parentheses, square brackets or string/char literals.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func matchingAngle(text string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i, true
			}
		case '{', ';':
			return 0, false
		}
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

var classWhereRe = regexp.MustCompile(`\bwhere\b`)

// matchDeclarations applies re repeatedly over body, resuming each search on
// the previous match's final byte. Declaration patterns anchor on a line
// start or a preceding member terminator (;, { or }); resuming on the
// terminator keeps it available as the anchor for a declaration that follows
// it on the same line. Returned submatch indices are absolute into body.
func matchDeclarations(re *regexp.Regexp, body string) [][]int {
	var out [][]int
	pos := 0
	for pos < len(body) {
		idx := re.FindStringSubmatchIndex(body[pos:])
		if idx == nil {
			break
		}
		abs := make([]int, len(idx))
		for i, v := range idx {
			if v < 0 {
				abs[i] = -1
			} else {
				abs[i] = pos + v
			}
		}
		out = append(out, abs)
		next := abs[1] - 1
		if next <= pos {
			next = abs[1]
		}
		pos = next
	}
	return out
}

// submatch returns the text of capture group g, or "" when it did not
// participate in the match.
func submatch(body string, abs []int, g int) string {
	if abs[2*g] < 0 {
		return ""
	}
	return body[abs[2*g]:abs[2*g+1]]
}

// accessibilityPattern matches every C# accessibility modifier, longest
// compound forms first.
const accessibilityPattern = `protected\s+internal|private\s+protected|public|protected|internal|private`
