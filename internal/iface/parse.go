package iface

import (
	"regexp"
	"strings"

	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/textscan"
)

var (
	propGetRe  = regexp.MustCompile(`\bget\s*;`)
	propSetRe  = regexp.MustCompile(`\bset\s*;`)
	propInitRe = regexp.MustCompile(`\binit\s*;`)
)

// parseMethodMatch converts one methodHeadRe match into an ExtractedMember.
// The second result is the offset just past the declaration header
// (parameters and constraints included), used for cursor containment checks.
func parseMethodMatch(body string, m []int) (*ExtractedMember, int) {
	typ := body[m[6]:m[7]]
	if typeKeywords[typ] {
		return nil, 0
	}

	open := m[1] - 1 // regex ends on the opening parenthesis
	closeParen, ok := textscan.FindMatchingParen(body, open)
	if !ok {
		return nil, 0
	}

	// The text between the parameter list and the body (or semicolon) is
	// either empty or a where-constraint clause; anything else means this
	// match is not a method declaration.
	declEnd := closeParen
	between := ""
	for i := closeParen + 1; i < len(body); i++ {
		c := body[i]
		if c == '{' || c == ';' || (c == '=' && i+1 < len(body) && body[i+1] == '>') {
			between = body[closeParen+1 : i]
			declEnd = i
			break
		}
	}
	constraints := strings.TrimSpace(between)
	if constraints != "" && !strings.HasPrefix(constraints, "where") {
		return nil, 0
	}

	member := &ExtractedMember{
		Kind:                  MemberMethod,
		Name:                  body[m[8]:m[9]],
		StartOffset:           m[0],
		ReturnType:            extract.NormalizeType(typ),
		Parameters:            strings.TrimSpace(body[open+1 : closeParen]),
		Constraints:           extract.NormalizeType(constraints),
		FullTypeParameterText: "",
	}
	if m[10] >= 0 {
		member.FullTypeParameterText = body[m[10]:m[11]]
		inner := member.FullTypeParameterText
		member.TypeParameters = extract.ParseTypeParameters(inner[1 : len(inner)-1])
	}
	if m[2] >= 0 {
		acc := strings.TrimSpace(body[m[2]:m[3]])
		member.Accessibility = extract.NormalizeType(acc)
		member.AccessibilitySpan = &OffsetSpan{Start: m[2], End: m[2] + len(acc)}
	}
	return member, declEnd
}

// parsePropertyMatch converts one propertyDeclRe match into an
// ExtractedMember. An expression-bodied property counts as getter-only.
func parsePropertyMatch(body string, m []int) *ExtractedMember {
	typ := body[m[6]:m[7]]
	if typeKeywords[typ] {
		return nil
	}

	member := &ExtractedMember{
		Kind:        MemberProperty,
		Name:        body[m[8]:m[9]],
		StartOffset: m[0],
		Type:        extract.NormalizeType(typ),
	}
	tail := body[m[10]:m[11]]
	if strings.HasPrefix(tail, "{") {
		member.HasGetter = propGetRe.MatchString(tail)
		member.HasSetter = propSetRe.MatchString(tail)
		member.HasInit = propInitRe.MatchString(tail)
	} else {
		member.HasGetter = true
	}
	if m[2] >= 0 {
		acc := strings.TrimSpace(body[m[2]:m[3]])
		member.Accessibility = extract.NormalizeType(acc)
		member.AccessibilitySpan = &OffsetSpan{Start: m[2], End: m[2] + len(acc)}
	}
	return member
}

// requiredTypeParameters computes the subset of the enclosing class's type
// parameters that appear as whole-word tokens in the member's type and
// parameter text. Order follows the class declaration.
func requiredTypeParameters(text string, member *ExtractedMember) []string {
	if member.EnclosingClassName == "" {
		return nil
	}
	cls, ok := extract.FindClass(text, member.EnclosingClassName)
	if !ok || len(cls.Info.TypeParameters) == 0 {
		return nil
	}

	searchText := member.Type
	if member.Kind == MemberMethod {
		searchText = member.ReturnType + " " + member.Parameters
	}

	var required []string
	for _, param := range cls.Info.TypeParameters {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(param) + `\b`)
		if re.MatchString(searchText) {
			required = append(required, param)
		}
	}
	return required
}

// declaredInAnyInterface reports whether the member's name already appears
// as a declaration inside any interface body in the document. Such members
// are excluded from extraction candidates.
func declaredInAnyInterface(text string, member *ExtractedMember) bool {
	for _, info := range interfacesInText(text) {
		if interfaceDeclares(info.BodyText, member) {
			return true
		}
	}
	return false
}

// interfaceDeclares is the duplicate-detection guard: for methods the name
// optionally followed by a generic list then '(', for properties the name
// followed by '{'.
func interfaceDeclares(bodyText string, member *ExtractedMember) bool {
	var re *regexp.Regexp
	if member.Kind == MemberMethod {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(member.Name) + `\s*(<[^(>]*>)?\s*\(`)
	} else {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(member.Name) + `\s*\{`)
	}
	return re.MatchString(bodyText)
}
