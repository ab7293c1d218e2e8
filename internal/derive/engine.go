package derive

import (
	"context"
	"regexp"

	"github.com/hbollon/go-edlib"

	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/extract"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/textscan"
	"github.com/classkit/classkit/internal/types"
)

// Engine resolves a base class in a document and produces the derived
// class either as an in-place edit or as new file content.
type Engine struct {
	cache *symbols.Cache
}

// NewEngine builds an engine over the given symbol cache.
func NewEngine(cache *symbols.Cache) *Engine {
	return &Engine{cache: cache}
}

// ExtractInput locates the base class and extracts the constructor and
// abstract member descriptions the synthesizer consumes. A class that
// legitimately has none of these yields empty slices, indistinguishable
// from one whose declarations failed to match.
func (e *Engine) ExtractInput(ctx context.Context, doc *types.Document, baseName, derivedName string) (Input, *extract.ClassBody, error) {
	cls, ok := extract.FindClass(doc.Text, baseName)
	if !ok {
		err := errors.NewResolutionError("class", baseName)
		if s := e.closestClassName(ctx, doc, baseName); s != "" {
			err = err.WithSuggestion(s)
		}
		return Input{}, nil, err
	}

	body := cls.Body(doc.Text)
	return Input{
		Base:         cls.Info,
		Constructors: extract.Constructors(body, baseName),
		Methods:      extract.AbstractMethods(body),
		Properties:   extract.AbstractProperties(body),
		DerivedName:  derivedName,
		Indent:       textscan.LineIndent(doc.Text, cls.HeaderStart),
		EOL:          doc.EOL(),
	}, cls, nil
}

// InsertBelow generates the derived class directly below the base class in
// the same document, separated by a blank line. The returned selections are
// caret positions in the post-edit document.
func (e *Engine) InsertBelow(ctx context.Context, doc *types.Document, baseName, derivedName string) (*types.WorkspaceEdit, []types.Range, error) {
	in, cls, err := e.ExtractInput(ctx, doc, baseName, derivedName)
	if err != nil {
		return nil, nil, err
	}

	gen := Generate(in, ModeInsertBelow)
	eol := doc.EOL()
	insertAt := cls.CloseBrace + 1
	inserted := eol + eol + gen.Text

	we := types.NewWorkspaceEdit()
	we.Add(doc.URI, types.Insert(doc.PositionAt(insertAt), inserted))

	after := types.NewDocument(doc.URI, doc.Version+1,
		doc.Text[:insertAt]+inserted+doc.Text[insertAt:])
	genStart := insertAt + len(eol) + len(eol)
	selections := make([]types.Range, 0, len(gen.SelectionOffsets))
	for _, off := range gen.SelectionOffsets {
		pos := after.PositionAt(genStart + off)
		selections = append(selections, types.Range{Start: pos, End: pos})
	}
	return we, selections, nil
}

// SeparateFile renders the derived class as the full content of a sibling
// file, reproducing the source file's namespace form: a block namespace is
// re-emitted as a wrapper, a file-scoped one as a file-scoped declaration.
// Selections are relative to the returned content.
func (e *Engine) SeparateFile(ctx context.Context, doc *types.Document, baseName, derivedName string) (string, []types.Range, error) {
	in, cls, err := e.ExtractInput(ctx, doc, baseName, derivedName)
	if err != nil {
		return "", nil, err
	}
	eol := doc.EOL()

	scope, hasNS := textscan.FindNamespaceScope(doc.Text, cls.HeaderStart)

	if hasNS && !scope.FileScoped {
		in.Indent = "    "
		gen := Generate(in, ModeSeparateFile)
		head := "namespace " + scope.Name + eol + "{" + eol
		content := head + gen.Text + eol + "}" + eol
		return content, relativeSelections(content, len(head), gen.SelectionOffsets), nil
	}

	in.Indent = ""
	gen := Generate(in, ModeSeparateFile)
	if hasNS {
		head := "namespace " + scope.Name + ";" + eol + eol
		content := head + gen.Text + eol
		return content, relativeSelections(content, len(head), gen.SelectionOffsets), nil
	}
	content := gen.Text + eol
	return content, relativeSelections(content, 0, gen.SelectionOffsets), nil
}

// relativeSelections converts generated-text offsets into caret ranges
// within the full file content.
func relativeSelections(content string, genStart int, offsets []int) []types.Range {
	d := types.NewDocument("", 0, content)
	out := make([]types.Range, 0, len(offsets))
	for _, off := range offsets {
		pos := d.PositionAt(genStart + off)
		out = append(out, types.Range{Start: pos, End: pos})
	}
	return out
}

var classNameRe = regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`)

// closestClassName suggests the nearest declared class name for a typo'd
// base name. The symbol tree supplies candidates when available; otherwise
// a header scan does.
func (e *Engine) closestClassName(ctx context.Context, doc *types.Document, input string) string {
	var names []string
	if syms := e.cache.DocumentSymbols(ctx, doc); syms != nil {
		for _, s := range symbols.CollectByKind(syms, types.KindClass) {
			names = append(names, s.Name)
		}
	} else {
		for _, m := range classNameRe.FindAllStringSubmatch(doc.Text, -1) {
			names = append(names, m[1])
		}
	}

	best := ""
	var bestScore float32
	for _, name := range names {
		if name == input {
			continue
		}
		score, err := edlib.StringsSimilarity(input, name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	if bestScore < 0.75 {
		return ""
	}
	return best
}
