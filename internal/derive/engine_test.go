package derive

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classkit/classkit/internal/edits"
	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/types"
)

func newTextOnlyEngine() *Engine {
	return NewEngine(symbols.NewCache(nil))
}

const shapeSource = `public abstract class Shape
{
    protected Shape(string name)
    {
    }

    public abstract double Area();
}
`

func TestInsertBelow_ShapeCircle(t *testing.T) {
	doc := types.NewDocument("shapes.cs", 1, shapeSource)
	e := newTextOnlyEngine()

	we, selections, err := e.InsertBelow(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)
	assert.Empty(t, selections)

	out, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)

	assert.Contains(t, out, "}\n\npublic class Circle : Shape\n")
	assert.Contains(t, out, "protected Circle(string name) : base(name)\n")
	assert.Contains(t, out, "public override double Area()\n")
	assert.True(t, strings.Index(out, "class Shape") < strings.Index(out, "class Circle"),
		"derived class lands below the base class")
}

func TestInsertBelow_UnknownBaseSuggests(t *testing.T) {
	doc := types.NewDocument("shapes.cs", 1, shapeSource)
	e := newTextOnlyEngine()

	_, _, err := e.InsertBelow(context.Background(), doc, "Shap", "Circle")
	var resErr *errors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "Shape", resErr.Suggestion)
}

func TestSeparateFile_BlockNamespace(t *testing.T) {
	src := `namespace Geometry
{
    public abstract class Shape
    {
        public abstract double Area();
    }
}
`
	doc := types.NewDocument("shapes.cs", 1, src)
	e := newTextOnlyEngine()

	content, _, err := e.SeparateFile(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(content, "namespace Geometry\n{\n"))
	assert.True(t, strings.HasSuffix(content, "\n}\n"))
	assert.Contains(t, content, "    public class Circle : Shape\n")
	assert.Contains(t, content, "public override double Area()")
}

func TestSeparateFile_FileScopedNamespace(t *testing.T) {
	src := `namespace Geometry;

public abstract class Shape
{
    public abstract double Area();
}
`
	doc := types.NewDocument("shapes.cs", 1, src)
	e := newTextOnlyEngine()

	content, _, err := e.SeparateFile(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(content, "namespace Geometry;\n\n"))
	assert.Contains(t, content, "public class Circle : Shape\n")
	assert.NotContains(t, content, "namespace Geometry\n{")
}

func TestSeparateFile_NoNamespace(t *testing.T) {
	doc := types.NewDocument("shapes.cs", 1, shapeSource)
	e := newTextOnlyEngine()

	content, _, err := e.SeparateFile(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "public class Circle : Shape\n"))
}

func TestSeparateFile_PropertyAccessorsThrow(t *testing.T) {
	src := `public abstract class Shape
{
    public abstract string Name { get; set; }
}
`
	doc := types.NewDocument("shapes.cs", 1, src)
	e := newTextOnlyEngine()

	content, _, err := e.SeparateFile(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)
	assert.Contains(t, content, "get => throw new NotImplementedException();")
	assert.NotContains(t, content, "{ get; set; }")
}

func TestInsertBelow_GenericSelectionsInDocumentCoordinates(t *testing.T) {
	src := `public abstract class Repo<T>
{
}
`
	doc := types.NewDocument("repo.cs", 1, src)
	e := newTextOnlyEngine()

	we, selections, err := e.InsertBelow(context.Background(), doc, "Repo", "MemRepo")
	require.NoError(t, err)
	require.Len(t, selections, 2)

	out, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)
	assert.Contains(t, out, "public class MemRepo<T> : Repo<T>")

	after := types.NewDocument(doc.URI, 2, out)
	for _, sel := range selections {
		off := after.OffsetAt(sel.Start)
		assert.Equal(t, "T", out[off-1:off], "each caret sits right after a T")
	}
}

func TestInsertBelow_BaseClassOnOneLine(t *testing.T) {
	doc := types.NewDocument("shapes.cs", 1,
		"public abstract class Shape { protected Shape(int id) {} public abstract double Area(); }\n")
	e := newTextOnlyEngine()

	we, _, err := e.InsertBelow(context.Background(), doc, "Shape", "Circle")
	require.NoError(t, err)

	out, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)

	assert.Contains(t, out, "protected Circle(int id) : base(id)\n")
	assert.Contains(t, out, "public override double Area()\n")
	assert.NotContains(t, out, ImplementMarker,
		"members extracted from a one-line base leave nothing to mark")
}
