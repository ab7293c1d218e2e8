package iface

import (
	"context"
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/types"
)

// InterfaceDeclarationInfo describes an existing interface declaration: its
// body text, the offset new members are inserted at (immediately before the
// closing brace) and the inferred member indentation.
type InterfaceDeclarationInfo struct {
	Name         string
	BodyText     string
	InsertOffset int
	MemberIndent string
	HeaderIndent string

	headerStart int
	openBrace   int
	closeBrace  int
}

// Engine runs the detect / confirm-target / apply flow for interface
// extraction. It holds no per-invocation state.
type Engine struct {
	cache *symbols.Cache
}

// NewEngine builds an engine over the given symbol cache.
func NewEngine(cache *symbols.Cache) *Engine {
	return &Engine{cache: cache}
}

// Detect identifies the extractable member at pos, or nil when nothing at
// the cursor qualifies.
func (e *Engine) Detect(ctx context.Context, doc *types.Document, pos types.Position) *ExtractedMember {
	return DetectMember(ctx, doc, pos, e.cache)
}

// Interfaces lists the interfaces declared in the document. When a symbol
// tree is available it supplies the set of declarations; body text,
// insertion point and indentation are always derived textually because the
// symbol tree carries no formatting.
func (e *Engine) Interfaces(ctx context.Context, doc *types.Document) []InterfaceDeclarationInfo {
	syms := e.cache.DocumentSymbols(ctx, doc)
	if syms == nil {
		return interfacesInText(doc.Text)
	}
	var out []InterfaceDeclarationInfo
	for _, sym := range symbols.CollectByKind(syms, types.KindInterface) {
		start := doc.OffsetAt(sym.Range.Start)
		if info, ok := buildInterfaceInfo(doc.Text, start, sym.Name); ok {
			out = append(out, info)
		}
	}
	return out
}

// AddToExisting inserts the member's declaration into the named interface.
// The second result reports the success-no-op case: the interface already
// declares the member, so no edit is produced. A private method picks up a
// promotion edit rewriting its accessibility to public in the same batch.
func (e *Engine) AddToExisting(ctx context.Context, doc *types.Document, member *ExtractedMember, interfaceName string) (*types.WorkspaceEdit, bool, error) {
	ifaces := e.Interfaces(ctx, doc)
	var target *InterfaceDeclarationInfo
	names := make([]string, 0, len(ifaces))
	for i := range ifaces {
		names = append(names, ifaces[i].Name)
		if ifaces[i].Name == interfaceName {
			target = &ifaces[i]
		}
	}
	if target == nil {
		err := errors.NewResolutionError("interface", interfaceName)
		if suggestion := closestName(interfaceName, names); suggestion != "" {
			err = err.WithSuggestion(suggestion)
		}
		return nil, false, err
	}

	if interfaceDeclares(target.BodyText, member) {
		return types.NewWorkspaceEdit(), true, nil
	}

	we := types.NewWorkspaceEdit()
	we.Add(doc.URI, insertMemberEdit(doc, target, member))
	addPromotionEdit(we, doc, member)
	return we, false, nil
}

// CreateNew synthesizes a new interface containing the member and inserts
// it into the namespace scope enclosing the member: block-scoped namespaces
// insert before their closing brace, file-scoped or absent namespaces
// append at end of file. The interface carries the member's required type
// parameters as its own generic list.
func (e *Engine) CreateNew(ctx context.Context, doc *types.Document, member *ExtractedMember, interfaceName string) (*types.WorkspaceEdit, error) {
	eol := doc.EOL()

	indent := ""
	if member.EnclosingClassName != "" {
		if cls, ok := extract.FindClass(doc.Text, member.EnclosingClassName); ok {
			indent = textscan.LineIndent(doc.Text, cls.HeaderStart)
		}
	}

	header := "public interface " + interfaceName
	if len(member.RequiredTypeParameters) > 0 {
		header += "<" + strings.Join(member.RequiredTypeParameters, ", ") + ">"
	}

	var b strings.Builder
	b.WriteString(indent + header + eol)
	b.WriteString(indent + "{" + eol)
	b.WriteString(indent + "    " + memberDeclarationLine(member) + eol)
	b.WriteString(indent + "}" + eol)

	we := types.NewWorkspaceEdit()
	scope, ok := textscan.FindNamespaceScope(doc.Text, member.StartOffset)
	if ok && !scope.FileScoped {
		insertAt, needsLeadingEOL := lineAnchoredInsertOffset(doc.Text, scope.BodyClose)
		text := b.String()
		if needsLeadingEOL {
			text = eol + text
		}
		we.Add(doc.URI, types.Insert(doc.PositionAt(insertAt), text))
	} else {
		text := b.String()
		if !strings.HasSuffix(doc.Text, "\n") && len(doc.Text) > 0 {
			text = eol + text
		}
		we.Add(doc.URI, types.Insert(doc.PositionAt(len(doc.Text)), text))
	}

	addPromotionEdit(we, doc, member)
	return we, nil
}

// addPromotionEdit rewrites a private method's accessibility token to
// public. Properties are never rewritten: only public properties qualify as
// extraction candidates in the first place.
func addPromotionEdit(we *types.WorkspaceEdit, doc *types.Document, member *ExtractedMember) {
	if member.Kind != MemberMethod || member.Accessibility != "private" || member.AccessibilitySpan == nil {
		return
	}
	we.Add(doc.URI, types.TextEdit{
		Range:   doc.RangeOf(member.AccessibilitySpan.Start, member.AccessibilitySpan.End),
		NewText: "public",
	})
}

// memberDeclarationLine renders the single interface member declaration.
func memberDeclarationLine(member *ExtractedMember) string {
	if member.Kind == MemberProperty {
		var accessors []string
		if member.HasGetter {
			accessors = append(accessors, "get;")
		}
		if member.HasSetter {
			accessors = append(accessors, "set;")
		}
		if member.HasInit {
			accessors = append(accessors, "init;")
		}
		return member.Type + " " + member.Name + " { " + strings.Join(accessors, " ") + " }"
	}
	decl := member.ReturnType + " " + member.Name + member.FullTypeParameterText + "(" + member.Parameters + ")"
	if member.Constraints != "" {
		decl += " " + member.Constraints
	}
	return decl + ";"
}

// insertMemberEdit builds the insertion of one member declaration line
// immediately before the interface's closing brace, with a leading line
// separator unless the insertion point already sits at a line start.
func insertMemberEdit(doc *types.Document, target *InterfaceDeclarationInfo, member *ExtractedMember) types.TextEdit {
	eol := doc.EOL()
	insertAt, needsLeadingEOL := lineAnchoredInsertOffset(doc.Text, target.closeBrace)
	text := target.MemberIndent + memberDeclarationLine(member) + eol
	if needsLeadingEOL {
		// The brace shares a line with other text; break the line and
		// re-indent the brace under the interface header.
		text = eol + text + target.HeaderIndent
	}
	return types.Insert(doc.PositionAt(insertAt), text)
}

// lineAnchoredInsertOffset returns where to insert a line so it lands just
// above the closing brace at closeOffset. When the brace sits on its own
// line the insertion goes at that line's start; otherwise it goes directly
// before the brace and the caller must emit a leading line separator.
func lineAnchoredInsertOffset(text string, closeOffset int) (int, bool) {
	lineStart := strings.LastIndexByte(text[:closeOffset], '\n') + 1
	for i := lineStart; i < closeOffset; i++ {
		if text[i] != ' ' && text[i] != '\t' {
			return closeOffset, true
		}
	}
	return lineStart, false
}

var interfaceHeaderRe = regexp.MustCompile(
	`(?m)^[ \t]*(?:(?:public|internal|protected|private|partial)\s+)*interface\s+([A-Za-z_][A-Za-z0-9_]*)`)

// interfacesInText is the textual fallback enumeration of interface
// declarations.
func interfacesInText(text string) []InterfaceDeclarationInfo {
	var out []InterfaceDeclarationInfo
	for _, m := range interfaceHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		if info, ok := buildInterfaceInfo(text, m[0], text[m[2]:m[3]]); ok {
			out = append(out, info)
		}
	}
	return out
}

func buildInterfaceInfo(text string, headerStart int, name string) (InterfaceDeclarationInfo, bool) {
	open := strings.IndexByte(text[headerStart:], '{')
	if open < 0 {
		return InterfaceDeclarationInfo{}, false
	}
	open += headerStart
	closeBrace, ok := textscan.FindMatchingBrace(text, open)
	if !ok {
		return InterfaceDeclarationInfo{}, false
	}

	headerIndent := textscan.LineIndent(text, headerStart)
	info := InterfaceDeclarationInfo{
		Name:         name,
		BodyText:     text[open+1 : closeBrace],
		InsertOffset: closeBrace,
		MemberIndent: inferMemberIndent(text[open+1:closeBrace], headerIndent),
		HeaderIndent: headerIndent,
		headerStart:  headerStart,
		openBrace:    open,
		closeBrace:   closeBrace,
	}
	return info, true
}

// inferMemberIndent uses the indentation of the last non-blank body line,
// falling back to one level deeper than the interface header.
func inferMemberIndent(body, headerIndent string) string {
	lines := strings.Split(body, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		return line[:len(line)-len(trimmed)]
	}
	return headerIndent + "    "
}

// closestName returns the most similar candidate to input, or empty when
// nothing is close enough to be a plausible typo.
func closestName(input string, candidates []string) string {
	best := ""
	var bestScore float32
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(input, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < 0.75 {
		return ""
	}
	return best
}
