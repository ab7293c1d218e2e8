package textscan

import (
	"regexp"
	"strings"
)

// ScanState is one of the mutually exclusive lexical states the code scanner
// tracks while walking source text character by character.
type ScanState uint8

const (
	StateCode ScanState = iota
	StateLineComment
	StateBlockComment
	StateString
	StateVerbatimString
	StateChar
)

// CodeScanner is a line-oriented scanner that blanks out comment and literal
// content so token searches only ever match real code. Block-comment and
// verbatim-string state carries across line boundaries; line comments,
// regular strings and character literals are line-local.
type CodeScanner struct {
	state ScanState
}

// NewCodeScanner returns a scanner in the code state.
func NewCodeScanner() *CodeScanner {
	return &CodeScanner{state: StateCode}
}

// State exposes the carried state, for tests and diagnostics.
func (s *CodeScanner) State() ScanState {
	return s.state
}

// StripLine returns line with every character that is not code replaced by a
// space. The result has the same length as the input so offsets line up.
func (s *CodeScanner) StripLine(line string) string {
	out := []byte(line)
	i := 0
	for i < len(line) {
		switch s.state {
		case StateCode:
			switch {
			case line[i] == '/' && i+1 < len(line) && line[i+1] == '/':
				s.state = StateLineComment
				out[i], out[i+1] = ' ', ' '
				i += 2
			case line[i] == '/' && i+1 < len(line) && line[i+1] == '*':
				s.state = StateBlockComment
				out[i], out[i+1] = ' ', ' '
				i += 2
			case line[i] == '@' && i+1 < len(line) && line[i+1] == '"':
				s.state = StateVerbatimString
				out[i], out[i+1] = ' ', ' '
				i += 2
			case (line[i] == '$' && i+2 < len(line) && line[i+1] == '@' && line[i+2] == '"') ||
				(line[i] == '@' && i+2 < len(line) && line[i+1] == '$' && line[i+2] == '"'):
				s.state = StateVerbatimString
				out[i], out[i+1], out[i+2] = ' ', ' ', ' '
				i += 3
			case line[i] == '"':
				s.state = StateString
				out[i] = ' '
				i++
			case line[i] == '\'':
				s.state = StateChar
				out[i] = ' '
				i++
			default:
				i++
			}
		case StateLineComment:
			out[i] = ' '
			i++
		case StateBlockComment:
			if line[i] == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.state = StateCode
				out[i], out[i+1] = ' ', ' '
				i += 2
			} else {
				out[i] = ' '
				i++
			}
		case StateString:
			switch {
			case line[i] == '\\' && i+1 < len(line):
				out[i], out[i+1] = ' ', ' '
				i += 2
			case line[i] == '"':
				s.state = StateCode
				out[i] = ' '
				i++
			default:
				out[i] = ' '
				i++
			}
		case StateVerbatimString:
			switch {
			case line[i] == '"' && i+1 < len(line) && line[i+1] == '"':
				// Doubled quote is an escaped quote inside a verbatim string.
				out[i], out[i+1] = ' ', ' '
				i += 2
			case line[i] == '"':
				s.state = StateCode
				out[i] = ' '
				i++
			default:
				out[i] = ' '
				i++
			}
		case StateChar:
			switch {
			case line[i] == '\\' && i+1 < len(line):
				out[i], out[i+1] = ' ', ' '
				i += 2
			case line[i] == '\'':
				s.state = StateCode
				out[i] = ' '
				i++
			default:
				out[i] = ' '
				i++
			}
		}
	}
	// Line comments, strings and char literals never span lines. An
	// unterminated regular string is malformed source; resetting keeps the
	// scanner from poisoning the rest of the file.
	switch s.state {
	case StateLineComment, StateString, StateChar:
		s.state = StateCode
	}
	return string(out)
}

// PartialClassLines returns the zero-based line numbers on which text
// declares `partial ... class <className>`, ignoring occurrences inside
// comments and string literals.
func PartialClassLines(text, className string) []int {
	re := regexp.MustCompile(`\bpartial\b[^;{]*\bclass\s+` + regexp.QuoteMeta(className) + `\b`)
	scanner := NewCodeScanner()
	var lines []int
	for n, line := range strings.Split(text, "\n") {
		stripped := scanner.StripLine(line)
		if re.MatchString(stripped) {
			lines = append(lines, n)
		}
	}
	return lines
}

// HasPartialClass reports whether text contains a partial declaration of the
// named class outside comments and literals.
func HasPartialClass(text, className string) bool {
	return len(PartialClassLines(text, className)) > 0
}
