// Package textscan provides the low-level text primitives every structural
// extraction builds on: brace matching, line-ending detection, namespace
// detection and a comment/string-aware code scanner. None of these require a
// parser; they are deliberately best-effort over raw source text.
package textscan

import (
	"regexp"
	"strings"
)

// DetectEOL returns the document's line ending convention. A document whose
// first newline is preceded by a carriage return is treated as CRLF
// throughout; everything else as LF.
func DetectEOL(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// FindMatchingBrace scans forward from the opening brace at open, tracking
// nesting depth, and returns the index of the balancing closing brace. The
// second result is false when the text ends before the brace is balanced or
// open does not sit on an opening brace.
func FindMatchingBrace(text string, open int) (int, bool) {
	if open < 0 || open >= len(text) || text[open] != '{' {
		return 0, false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// FindMatchingParen scans forward from the opening parenthesis at open and
// returns the index of the balancing close, skipping over string and
// character literals so a default value like "(" does not break matching.
func FindMatchingParen(text string, open int) (int, bool) {
	if open < 0 || open >= len(text) || text[open] != '(' {
		return 0, false
	}
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
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
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

var namespaceRe = regexp.MustCompile(`\bnamespace\s+([A-Za-z_][A-Za-z0-9_]*(?:\s*\.\s*[A-Za-z_][A-Za-z0-9_]*)*)`)

// DetectNamespace returns the first namespace name declared in the text.
// It does not distinguish block-scoped from file-scoped syntax; use
// FindNamespaceScope when the insertion position matters.
func DetectNamespace(text string) (string, bool) {
	m := namespaceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return collapseDots(m[1]), true
}

func collapseDots(name string) string {
	parts := strings.Split(name, ".")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ".")
}

// NamespaceScope describes one namespace declaration and where new top-level
// declarations belonging to it should be inserted. A block-scoped namespace
// inserts before BodyClose; a file-scoped one appends at end of file.
type NamespaceScope struct {
	Name       string
	Start      int // offset of the namespace keyword
	BodyOpen   int // offset of '{', -1 for file-scoped
	BodyClose  int // offset of matching '}', or len(text) for file-scoped
	FileScoped bool
}

// FindNamespaceScope locates the namespace scope containing pos. Block-scoped
// namespaces win over a file-scoped declaration when both match (nested
// block namespaces return the innermost). The second result is false when no
// namespace declaration covers pos.
func FindNamespaceScope(text string, pos int) (NamespaceScope, bool) {
	matches := namespaceRe.FindAllStringSubmatchIndex(text, -1)
	var best NamespaceScope
	found := false
	for _, m := range matches {
		scope, ok := resolveNamespaceScope(text, m)
		if !ok {
			continue
		}
		if scope.FileScoped {
			if pos >= scope.Start && !found {
				best = scope
				found = true
			}
			continue
		}
		if pos > scope.BodyOpen && pos <= scope.BodyClose {
			// A block scope beats a file scope, and a later-starting block
			// containing pos is necessarily nested inside the current best.
			if !found || best.FileScoped || scope.Start > best.Start {
				best = scope
				found = true
			}
		}
	}
	return best, found
}

func resolveNamespaceScope(text string, m []int) (NamespaceScope, bool) {
	scope := NamespaceScope{
		Name:  collapseDots(text[m[2]:m[3]]),
		Start: m[0],
	}
	i := m[3]
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\r' || text[i] == '\n') {
		i++
	}
	if i >= len(text) {
		return scope, false
	}
	switch text[i] {
	case '{':
		close, ok := FindMatchingBrace(text, i)
		if !ok {
			return scope, false
		}
		scope.BodyOpen = i
		scope.BodyClose = close
		return scope, true
	case ';':
		scope.BodyOpen = -1
		scope.BodyClose = len(text)
		scope.FileScoped = true
		return scope, true
	}
	return scope, false
}

// LineIndent returns the leading whitespace of the line containing offset.
func LineIndent(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}
