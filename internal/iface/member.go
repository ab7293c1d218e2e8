// Package iface implements interface extraction: detecting an extractable
// member at a position, adding its declaration to an existing interface or
// synthesizing a new one, and promoting private methods to public so the
// interface contract holds.
package iface

import (
	"context"
	"regexp"
	"strings"

	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/types"
)

// MemberKind tags the two ExtractedMember variants.
type MemberKind string

const (
	MemberProperty MemberKind = "property"
	MemberMethod   MemberKind = "method"
)

// OffsetSpan is a half-open byte-offset span within a document's text.
type OffsetSpan struct {
	Start int
	End   int
}

// ExtractedMember describes a property or method eligible for interface
// extraction. StartOffset is the absolute offset of its declaration;
// AccessibilitySpan, when present, is the span of the accessibility token
// so a later edit can rewrite it.
type ExtractedMember struct {
	Kind               MemberKind
	Name               string
	EnclosingClassName string
	StartOffset        int
	// RequiredTypeParameters is the subset of the enclosing class's type
	// parameters referenced by this member's type/parameter text. Non-empty
	// means a synthesized interface must itself be generic.
	RequiredTypeParameters []string

	// Property fields.
	Type      string
	HasGetter bool
	HasSetter bool
	HasInit   bool

	// Method fields.
	ReturnType            string
	Parameters            string
	FullTypeParameterText string
	TypeParameters        []string
	Constraints           string
	Accessibility         string
	AccessibilitySpan     *OffsetSpan
}

var (
	propertyDeclRe = regexp.MustCompile(
		`(?m)^[ \t]*((?:protected\s+internal|private\s+protected|public|protected|internal|private)\s+)?` +
			`((?:static|virtual|override|sealed|new|required)\s+)*` +
			`([\w\.\?]+(?:<[^{;=]*?>)?(?:\[[,\s]*\])*\??)\s+` +
			`([A-Za-z_][A-Za-z0-9_]*)\s*(\{[^}]*\}|=>)`)

	methodHeadRe = regexp.MustCompile(
		`(?m)^[ \t]*((?:protected\s+internal|private\s+protected|public|protected|internal|private)\s+)?` +
			`((?:static|virtual|override|sealed|new|async|partial)\s+)*` +
			`([\w\.\?]+(?:<[^(;=]*?>)?(?:\[[,\s]*\])*\??)\s+` +
			`([A-Za-z_][A-Za-z0-9_]*)\s*(<[^(>]*>)?\s*\(`)
)

// typeKeywords are tokens that look like a leading type in statement
// context but never are; they keep expression lines (`return Foo(x);`) from
// matching as method declarations.
var typeKeywords = map[string]bool{
	"return": true, "new": true, "await": true, "throw": true, "else": true,
	"case": true, "in": true, "is": true, "as": true, "using": true,
	"lock": true, "while": true, "if": true, "switch": true, "for": true,
	"foreach": true, "catch": true, "do": true, "typeof": true,
	"nameof": true, "get": true, "set": true, "init": true, "yield": true,
}

// DetectMember identifies the extractable property or method at pos.
// Interface members are never extraction sources, methods must be public,
// private or unmarked, properties must be public, and members already
// declared in any interface in the document are excluded. A nil result with
// no error means nothing at the cursor qualifies; that is not an error.
func DetectMember(ctx context.Context, doc *types.Document, pos types.Position, cache *symbols.Cache) *ExtractedMember {
	offset := doc.OffsetAt(pos)

	syms := cache.DocumentSymbols(ctx, doc)
	if syms != nil {
		if symbols.EnclosingSymbol(syms, pos, types.KindInterface) != nil {
			return nil
		}
		if member := detectViaSymbols(doc, pos, syms); member != nil {
			return finishDetection(doc, member)
		}
		return nil
	}

	member := detectViaText(doc, offset)
	if member == nil {
		return nil
	}
	return finishDetection(doc, member)
}

func finishDetection(doc *types.Document, member *ExtractedMember) *ExtractedMember {
	if !eligible(member) {
		return nil
	}
	if declaredInAnyInterface(doc.Text, member) {
		return nil
	}
	member.RequiredTypeParameters = requiredTypeParameters(doc.Text, member)
	return member
}

func eligible(m *ExtractedMember) bool {
	switch m.Kind {
	case MemberProperty:
		return m.Accessibility == "public"
	case MemberMethod:
		return m.Accessibility == "" || m.Accessibility == "public" || m.Accessibility == "private"
	}
	return false
}

func detectViaSymbols(doc *types.Document, pos types.Position, syms []*types.Symbol) *ExtractedMember {
	sym := symbols.EnclosingSymbol(syms, pos, types.KindMethod, types.KindProperty)
	if sym == nil {
		return nil
	}
	start := doc.OffsetAt(sym.Range.Start)
	end := doc.OffsetAt(sym.Range.End)
	member := parseMemberDeclaration(doc.Text, start, end)
	if member == nil {
		return nil
	}
	if cls := symbols.EnclosingSymbol(syms, pos, types.KindClass); cls != nil {
		member.EnclosingClassName = cls.Name
	}
	return member
}

func detectViaText(doc *types.Document, offset int) *ExtractedMember {
	cls, ok := extract.FindClassAt(doc.Text, offset)
	if !ok {
		return nil
	}
	if insideInterface(doc.Text, offset) {
		return nil
	}
	member := memberDeclarationAt(doc.Text, cls.OpenBrace+1, cls.CloseBrace, offset)
	if member == nil {
		return nil
	}
	member.EnclosingClassName = cls.Info.Name
	return member
}

func insideInterface(text string, offset int) bool {
	re := regexp.MustCompile(`\binterface\s+[A-Za-z_][A-Za-z0-9_]*`)
	for _, m := range re.FindAllStringIndex(text, -1) {
		open := strings.IndexByte(text[m[1]:], '{')
		if open < 0 {
			continue
		}
		open += m[1]
		if close, ok := textscan.FindMatchingBrace(text, open); ok && offset > open && offset < close {
			return true
		}
	}
	return false
}

// memberDeclarationAt finds the property or method declaration containing
// offset within the [start, end) slice of text.
func memberDeclarationAt(text string, start, end, offset int) *ExtractedMember {
	body := text[start:end]
	rel := offset - start

	for _, m := range methodHeadRe.FindAllStringSubmatchIndex(body, -1) {
		member, declEnd := parseMethodMatch(body, m)
		if member == nil {
			continue
		}
		if rel >= m[0] && rel <= declEnd {
			shiftMember(member, start)
			return member
		}
	}
	for _, m := range propertyDeclRe.FindAllStringSubmatchIndex(body, -1) {
		member := parsePropertyMatch(body, m)
		if member == nil {
			continue
		}
		if rel >= m[0] && rel <= m[1] {
			shiftMember(member, start)
			return member
		}
	}
	return nil
}

// parseMemberDeclaration parses the single declaration in text[start:end],
// used on a symbol-provided range.
func parseMemberDeclaration(text string, start, end int) *ExtractedMember {
	body := text[start:end]

	if m := methodHeadRe.FindStringSubmatchIndex(body); m != nil {
		member, _ := parseMethodMatch(body, m)
		if member != nil {
			shiftMember(member, start)
			return member
		}
	}
	if m := propertyDeclRe.FindStringSubmatchIndex(body); m != nil {
		if member := parsePropertyMatch(body, m); member != nil {
			shiftMember(member, start)
			return member
		}
	}
	return nil
}

// shiftMember rebases the member's offsets from a body slice onto the
// whole document.
func shiftMember(member *ExtractedMember, delta int) {
	member.StartOffset += delta
	if member.AccessibilitySpan != nil {
		member.AccessibilitySpan.Start += delta
		member.AccessibilitySpan.End += delta
	}
}
