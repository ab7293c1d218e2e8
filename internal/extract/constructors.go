package extract

import (
	"regexp"
	"strings"
)

// ConstructorInfo describes one parameterized constructor. ArgumentList is
// the call-forwarding text a derived constructor passes to base(...).
type ConstructorInfo struct {
	Accessibility string // empty when the constructor declared none
	Parameters    string // raw parameter list text, verbatim
	ArgumentList  string
}

// parameterModifiers are re-prepended to a forwarded argument when present
// among the parameter's tokens.
var parameterModifiers = map[string]bool{
	"ref":  true,
	"out":  true,
	"in":   true,
	"this": true,
}

// Constructors extracts every parameterized constructor of className from
// the class body text. Default (parameterless) constructors are skipped:
// they need no explicit forwarding in a derived class.
func Constructors(body, className string) []ConstructorInfo {
	re := regexp.MustCompile(
		`(?m)(?:^|[;{}])\s*(?:(` + accessibilityPattern + `)\s+)?(?:static\s+)?` +
			regexp.QuoteMeta(className) + `\s*\(`)

	var ctors []ConstructorInfo
	for _, m := range matchDeclarations(re, body) {
		open := m[1] - 1 // the matched '(' is the last character
		close, ok := matchingParen(body, open)
		if !ok {
			continue
		}
		params := strings.TrimSpace(body[open+1 : close])
		if params == "" {
			continue
		}
		// Static constructors take no parameters, so anything matched here
		// with the static keyword is a false positive; re-check the header.
		header := body[m[0]:open]
		if strings.Contains(header, "static") {
			continue
		}
		var accessibility string
		if m[2] >= 0 {
			accessibility = NormalizeType(body[m[2]:m[3]])
		}
		ctors = append(ctors, ConstructorInfo{
			Accessibility: accessibility,
			Parameters:    params,
			ArgumentList:  BuildArgumentList(params),
		})
	}
	return ctors
}

// BuildArgumentList derives the base-call forwarding text for a parameter
// list: per parameter, the default value is dropped, the trailing identifier
// token becomes the argument name, and any ref/out/in/this modifier found
// among the tokens is re-prepended.
func BuildArgumentList(params string) string {
	var args []string
	for _, param := range SplitTopLevel(params, ',') {
		// Drop a default-value expression; the '=' never appears at the top
		// level of a parameter except to introduce one.
		if eq := topLevelIndex(param, '='); eq >= 0 {
			param = param[:eq]
		}
		tokens := strings.Fields(param)
		if len(tokens) == 0 {
			continue
		}
		name := tokens[len(tokens)-1]
		var modifiers []string
		for _, tok := range tokens[:len(tokens)-1] {
			if parameterModifiers[tok] {
				modifiers = append(modifiers, tok)
			}
		}
		args = append(args, strings.Join(append(modifiers, name), " "))
	}
	return strings.Join(args, ", ")
}

func topLevelIndex(s string, target byte) int {
	depth := 0
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
		case target:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchingParen(text string, open int) (int, bool) {
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
