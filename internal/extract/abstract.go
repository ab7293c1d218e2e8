package extract

import (
	"regexp"
	"strings"
)

// AbstractMethodInfo describes one abstract method declaration. The generic
// parameter list and constraint clause are kept verbatim so a generated
// override can mirror them exactly.
type AbstractMethodInfo struct {
	Accessibility         string
	ReturnType            string
	Name                  string
	FullTypeParameterText string // "<T, U>" or empty
	TypeParameters        []string
	Parameters            string
	Constraints           string // "where ..." or empty
}

// AbstractPropertyInfo describes one abstract property declaration and
// which auto-accessors it carries.
type AbstractPropertyInfo struct {
	Accessibility string
	Type          string
	Name          string
	HasGetter     bool
	HasSetter     bool
	HasInit       bool
}

// Abstract methods have no body: accessibility, the abstract keyword, a
// return type, a name, an optional generic list, a parameter list, an
// optional where clause, then a semicolon. The where clause may span lines.
// Declarations anchor on a line start or a preceding member terminator, so
// a whole class written on one line still extracts.
var abstractMethodRe = regexp.MustCompile(
	`(?m)(?:^|[;{}])\s*(` + accessibilityPattern + `)\s+(?:(?:override|sealed|new|partial)\s+)*abstract\s+` +
		`([\w\.\?]+(?:<[^(;]*?>)?(?:\[[,\s]*\])*\??)\s+` + // return type, generics and arrays included
		`([A-Za-z_][A-Za-z0-9_]*)\s*` +
		`(<[^(>]*>)?\s*` +
		`\(([^)]*)\)\s*` +
		`(where[^;]+)?;`)

// AbstractMethods extracts every abstract method declared in the class body
// text. A malformed declaration simply fails to match; callers cannot
// distinguish that from a class with no abstract methods.
func AbstractMethods(body string) []AbstractMethodInfo {
	var methods []AbstractMethodInfo
	for _, abs := range matchDeclarations(abstractMethodRe, body) {
		info := AbstractMethodInfo{
			Accessibility:         NormalizeType(submatch(body, abs, 1)),
			ReturnType:            NormalizeType(submatch(body, abs, 2)),
			Name:                  submatch(body, abs, 3),
			FullTypeParameterText: strings.TrimSpace(submatch(body, abs, 4)),
			Parameters:            strings.TrimSpace(submatch(body, abs, 5)),
			Constraints:           NormalizeType(submatch(body, abs, 6)),
		}
		if info.FullTypeParameterText != "" {
			inner := info.FullTypeParameterText
			info.TypeParameters = ParseTypeParameters(inner[1 : len(inner)-1])
		}
		methods = append(methods, info)
	}
	return methods
}

var abstractPropertyRe = regexp.MustCompile(
	`(?m)(?:^|[;{}])\s*(` + accessibilityPattern + `)\s+(?:(?:override|sealed|new)\s+)*abstract\s+` +
		`([\w\.\?]+(?:<[^{;]*?>)?(?:\[[,\s]*\])*\??)\s+` +
		`([A-Za-z_][A-Za-z0-9_]*)\s*\{([^}]*)\}`)

var (
	getterRe = regexp.MustCompile(`\bget\s*;`)
	setterRe = regexp.MustCompile(`\bset\s*;`)
	initRe   = regexp.MustCompile(`\binit\s*;`)
)

// AbstractProperties extracts every abstract property with at least one
// bare auto-accessor (get;/set;/init;). Expression-bodied or block-bodied
// accessors do not count, and a property with no recognized accessor is
// dropped entirely: there is nothing overridable to generate for it.
func AbstractProperties(body string) []AbstractPropertyInfo {
	var props []AbstractPropertyInfo
	for _, abs := range matchDeclarations(abstractPropertyRe, body) {
		accessors := submatch(body, abs, 4)
		info := AbstractPropertyInfo{
			Accessibility: NormalizeType(submatch(body, abs, 1)),
			Type:          NormalizeType(submatch(body, abs, 2)),
			Name:          submatch(body, abs, 3),
			HasGetter:     getterRe.MatchString(accessors),
			HasSetter:     setterRe.MatchString(accessors),
			HasInit:       initRe.MatchString(accessors),
		}
		if !info.HasGetter && !info.HasSetter && !info.HasInit {
			continue
		}
		props = append(props, info)
	}
	return props
}
