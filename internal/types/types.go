package types

// Position is a zero-based line/column location in a document. Columns are
// byte offsets within the line, matching what tree-sitter reports.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos falls inside the range (inclusive of Start,
// inclusive of End so a cursor sitting on a closing brace still counts).
func (r Range) Contains(pos Position) bool {
	if pos.Before(r.Start) {
		return false
	}
	return !r.End.Before(pos)
}

// Empty reports whether the range spans no text.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// SymbolKind identifies the structural kind of a document symbol.
type SymbolKind uint8

const (
	KindUnknown SymbolKind = iota
	KindNamespace
	KindClass
	KindInterface
	KindStruct
	KindEnum
	KindConstructor
	KindMethod
	KindProperty
	KindField
	KindEvent
)

var kindNames = map[SymbolKind]string{
	KindUnknown:     "unknown",
	KindNamespace:   "namespace",
	KindClass:       "class",
	KindInterface:   "interface",
	KindStruct:      "struct",
	KindEnum:        "enum",
	KindConstructor: "constructor",
	KindMethod:      "method",
	KindProperty:    "property",
	KindField:       "field",
	KindEvent:       "event",
}

func (k SymbolKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Symbol is one node of a document symbol tree. Range covers the whole
// declaration, SelectionRange just the declared name. Detail carries the
// provider's free-text signature line, used to recover generic parameter
// lists without re-parsing.
type Symbol struct {
	Name           string
	Detail         string
	Kind           SymbolKind
	Range          Range
	SelectionRange Range
	Children       []*Symbol
}

// TextEdit replaces Range with NewText. An insertion has an empty range; a
// deletion has empty NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// Insert builds an insertion edit at pos.
func Insert(pos Position, text string) TextEdit {
	return TextEdit{Range: Range{Start: pos, End: pos}, NewText: text}
}

// Delete builds a deletion edit covering r.
func Delete(r Range) TextEdit {
	return TextEdit{Range: r}
}

// WorkspaceEdit is an ordered batch of edits grouped per document URI, plus
// any files to be created outright. The host applies the whole batch
// atomically; the engine never writes document text itself.
type WorkspaceEdit struct {
	// Changes preserves insertion order per document.
	Changes map[string][]TextEdit
	// CreateFiles maps a new file path to its full content.
	CreateFiles map[string]string
}

// NewWorkspaceEdit returns an empty edit batch.
func NewWorkspaceEdit() *WorkspaceEdit {
	return &WorkspaceEdit{Changes: make(map[string][]TextEdit)}
}

// Add appends an edit for the given document URI.
func (we *WorkspaceEdit) Add(uri string, edit TextEdit) {
	we.Changes[uri] = append(we.Changes[uri], edit)
}

// AddCreateFile records a whole new file to be written.
func (we *WorkspaceEdit) AddCreateFile(path, content string) {
	if we.CreateFiles == nil {
		we.CreateFiles = make(map[string]string)
	}
	we.CreateFiles[path] = content
}

// IsEmpty reports whether the batch contains no operations.
func (we *WorkspaceEdit) IsEmpty() bool {
	if we == nil {
		return true
	}
	for _, edits := range we.Changes {
		if len(edits) > 0 {
			return false
		}
	}
	return len(we.CreateFiles) == 0
}

// Location names a position inside a file on disk.
type Location struct {
	Path  string   `json:"path"`
	Range Range    `json:"range"`
	Pos   Position `json:"-"`
}
