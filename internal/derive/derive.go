// Package derive synthesizes a derived class from a base class: forwarding
// constructors, override stubs for abstract methods and properties, and
// generic-parameter-aware selection placement for the caller's editor.
package derive

import (
	"regexp"
	"strings"

	"github.com/classkit/classkit/internal/extract"
)

// Mode selects where the generated class goes; it also decides the
// generated property shape (auto-properties in the current file, throwing
// accessor bodies in a separate file).
type Mode int

const (
	ModeInsertBelow Mode = iota
	ModeSeparateFile
)

// ImplementMarker is emitted into an otherwise empty derived class body and
// doubles as the cursor anchor.
const ImplementMarker = "// implement here"

// Input is everything Generate needs, pre-extracted from the base class.
type Input struct {
	Base         extract.ClassInfo
	Constructors []extract.ConstructorInfo
	Methods      []extract.AbstractMethodInfo
	Properties   []extract.AbstractPropertyInfo
	DerivedName  string
	Indent       string // indentation of the base class declaration line
	EOL          string
}

// Generated carries the synthesized class text and selection anchors as
// offsets relative to the start of Text.
type Generated struct {
	Text             string
	SelectionOffsets []int
}

// Generate builds the derived class text. The derived class declares the
// identical type parameter list as the base (no renaming, no partial
// instantiation), passes it through in the inheritance clause and repeats
// the base's constraint clause.
func Generate(in Input, mode Mode) Generated {
	eol := in.EOL
	if eol == "" {
		eol = "\n"
	}
	indent := in.Indent
	inner := indent + "    "

	suffix := ""
	if len(in.Base.TypeParameters) > 0 {
		suffix = "<" + strings.Join(in.Base.TypeParameters, ", ") + ">"
	}

	decl := indent + "public class " + in.DerivedName + suffix + " : " + in.Base.Name + suffix
	if in.Base.Constraints != "" {
		// Redeclared type parameters must repeat the base's constraints.
		decl += " " + in.Base.Constraints
	}

	var b strings.Builder
	b.WriteString(decl + eol)
	b.WriteString(indent + "{" + eol)

	var sections []string
	for _, ctor := range in.Constructors {
		sections = append(sections, constructorText(ctor, in.DerivedName, inner, eol))
	}
	for _, m := range in.Methods {
		sections = append(sections, methodOverrideText(m, inner, eol))
	}
	for _, p := range in.Properties {
		sections = append(sections, propertyOverrideText(p, inner, eol, mode))
	}

	if len(sections) == 0 {
		b.WriteString(inner + ImplementMarker + eol)
	} else {
		b.WriteString(strings.Join(sections, eol))
	}
	b.WriteString(indent + "}")

	text := b.String()
	return Generated{
		Text:             text,
		SelectionOffsets: selectionOffsets(text, in.Base.TypeParameters, len(sections) == 0),
	}
}

func constructorText(ctor extract.ConstructorInfo, derivedName, indent, eol string) string {
	accessibility := ctor.Accessibility
	if accessibility == "" {
		accessibility = "public"
	}
	var b strings.Builder
	b.WriteString(indent + accessibility + " " + derivedName + "(" + ctor.Parameters + ") : base(" + ctor.ArgumentList + ")" + eol)
	b.WriteString(indent + "{" + eol)
	b.WriteString(indent + "}" + eol)
	return b.String()
}

func methodOverrideText(m extract.AbstractMethodInfo, indent, eol string) string {
	signature := m.Accessibility + " override " + m.ReturnType + " " + m.Name +
		m.FullTypeParameterText + "(" + m.Parameters + ")"
	if m.Constraints != "" {
		signature += " " + m.Constraints
	}
	var b strings.Builder
	b.WriteString(indent + signature + eol)
	b.WriteString(indent + "{" + eol)
	b.WriteString(indent + "    throw new NotImplementedException();" + eol)
	b.WriteString(indent + "}" + eol)
	return b.String()
}

// propertyOverrideText mirrors exactly the accessors the abstract property
// declared. Into-current-file generation uses auto-property syntax; the
// separate-file shape throws from each accessor instead.
func propertyOverrideText(p extract.AbstractPropertyInfo, indent, eol string, mode Mode) string {
	var accessors []string
	if mode == ModeSeparateFile {
		if p.HasGetter {
			accessors = append(accessors, "get => throw new NotImplementedException();")
		}
		if p.HasSetter {
			accessors = append(accessors, "set => throw new NotImplementedException();")
		}
		if p.HasInit {
			accessors = append(accessors, "init => throw new NotImplementedException();")
		}
	} else {
		if p.HasGetter {
			accessors = append(accessors, "get;")
		}
		if p.HasSetter {
			accessors = append(accessors, "set;")
		}
		if p.HasInit {
			accessors = append(accessors, "init;")
		}
	}
	return indent + p.Accessibility + " override " + p.Type + " " + p.Name +
		" { " + strings.Join(accessors, " ") + " }" + eol
}

// selectionOffsets places one anchor immediately after every occurrence of
// each base type parameter within the generated text, enabling multi-point
// editing of the parameter name. Without type parameters, a single anchor
// lands after the implement-here marker when one was emitted.
func selectionOffsets(text string, typeParams []string, hasMarker bool) []int {
	if len(typeParams) > 0 {
		var offsets []int
		for _, param := range typeParams {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(param) + `\b`)
			for _, m := range re.FindAllStringIndex(text, -1) {
				offsets = append(offsets, m[1])
			}
		}
		return offsets
	}
	if hasMarker {
		if i := strings.Index(text, ImplementMarker); i >= 0 {
			return []int{i + len(ImplementMarker)}
		}
	}
	return nil
}
