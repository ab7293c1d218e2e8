package movebase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classkit/classkit/internal/edits"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/types"
)

func newTextOnlyEngine() *Engine {
	return NewEngine(symbols.NewCache(nil))
}

func docOf(text string) *types.Document {
	return types.NewDocument("test.cs", 1, text)
}

func posAt(doc *types.Document, substr string) types.Position {
	off := strings.Index(doc.Text, substr)
	if off < 0 {
		panic("substring not found: " + substr)
	}
	return doc.PositionAt(off)
}

const derivedBaseSource = `public class Base
{
}

public class Derived : Base
{
    private int _count;

    public int Count
    {
        get { return _count; }
    }

    public string Name { get; set; }
}
`

func TestPrepare_FindsMemberAndBase(t *testing.T) {
	doc := docOf(derivedBaseSource)
	e := newTextOnlyEngine()

	mctx := e.Prepare(context.Background(), doc, posAt(doc, "_count;"))
	require.NotNil(t, mctx)
	assert.Equal(t, "_count", mctx.Member.Name)
	assert.Equal(t, KindField, mctx.Member.Kind)
	assert.Equal(t, "Base", mctx.BaseClassName)
	assert.Equal(t, "Derived", mctx.ClassBody.Info.Name)
	assert.Len(t, mctx.AllMembers, 3)
}

func TestPrepare_NoBaseClause(t *testing.T) {
	doc := docOf(`public class Alone
{
    private int _x;
}`)
	e := newTextOnlyEngine()
	assert.Nil(t, e.Prepare(context.Background(), doc, posAt(doc, "_x")))
}

func TestPrepare_BaseNotInDocument(t *testing.T) {
	doc := docOf(`public class Derived : External.Base
{
    private int _x;
}`)
	e := newTextOnlyEngine()
	assert.Nil(t, e.Prepare(context.Background(), doc, posAt(doc, "_x")))
}

func TestPrepare_CursorOutsideMembers(t *testing.T) {
	doc := docOf(derivedBaseSource)
	e := newTextOnlyEngine()
	assert.Nil(t, e.Prepare(context.Background(), doc, posAt(doc, "public class Derived")))
}

func TestMoveFieldWithDependentProperty(t *testing.T) {
	doc := docOf(derivedBaseSource)
	e := newTextOnlyEngine()

	mctx := e.Prepare(context.Background(), doc, posAt(doc, "get { return _count; }"))
	require.NotNil(t, mctx)
	require.Equal(t, "Count", mctx.Member.Name)

	moving := DependencyClosure(mctx.Member, mctx.AllMembers)
	require.Len(t, moving, 2, "Count references _count, both move")
	assert.Equal(t, "_count", moving[0].Name)
	assert.Equal(t, "Count", moving[1].Name)

	we := e.BuildEdits(doc, mctx)
	out, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)

	baseEnd := strings.Index(out, "public class Derived")
	basePart := out[:baseEnd]
	derivedPart := out[baseEnd:]

	assert.Contains(t, basePart, "protected int _count;", "private promoted to protected")
	assert.Contains(t, basePart, "public int Count")
	assert.NotContains(t, derivedPart, "_count")
	assert.NotContains(t, derivedPart, "Count\n")
	assert.Contains(t, derivedPart, "public string Name { get; set; }", "unrelated member stays")
}

func TestMoveIndependentMember(t *testing.T) {
	doc := docOf(derivedBaseSource)
	e := newTextOnlyEngine()

	mctx := e.Prepare(context.Background(), doc, posAt(doc, "Name { get; set; }"))
	require.NotNil(t, mctx)
	require.Equal(t, "Name", mctx.Member.Name)

	moving := DependencyClosure(mctx.Member, mctx.AllMembers)
	assert.Len(t, moving, 1, "Name references nothing else")

	we := e.BuildEdits(doc, mctx)
	out, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)

	baseEnd := strings.Index(out, "public class Derived")
	assert.Contains(t, out[:baseEnd], "public string Name { get; set; }")
	assert.Contains(t, out[baseEnd:], "_count", "other members stay put")
}

func TestResolveBaseName(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"class Derived : Base", "Base", true},
		{"class Derived : Base, IDisposable", "Base", true},
		{"class Derived : Name.Space.Base", "Base", true},
		{"class Derived : global::App.Base", "Base", true},
		{"class Repo : Store<T, U> where T : class", "Store", true},
		{"class Alone", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveBaseName(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.want, got, tc.header)
	}
}

func TestPromoteToProtected(t *testing.T) {
	assert.Equal(t, "    protected int _x;", promoteToProtected("    private int _x;"))
	assert.Equal(t, "    public int X;", promoteToProtected("    public int X;"))
	assert.Equal(t, "    int X;", promoteToProtected("    int X;"))
	assert.Equal(t, "    private protected int X;", promoteToProtected("    private protected int X;"))

	withAttr := "    [Obsolete]\n    private int _x;"
	assert.Equal(t, "    [Obsolete]\n    protected int _x;", promoteToProtected(withAttr))
}

func TestDependencyClosure_NameHeuristicOverIncludes(t *testing.T) {
	doc := docOf(`public class Base
{
}

public class Derived : Base
{
    private int total;

    // Mentions total only in a nested scope, still pulled in.
    public int Sum()
    {
        int total2 = 0;
        return total;
    }
}
`)
	e := newTextOnlyEngine()

	mctx := e.Prepare(context.Background(), doc, posAt(doc, "Sum()"))
	require.NotNil(t, mctx)

	moving := DependencyClosure(mctx.Member, mctx.AllMembers)
	names := make([]string, 0, len(moving))
	for _, m := range moving {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"total", "Sum"}, names)
}

func TestMembers_TextFallbackClassification(t *testing.T) {
	doc := docOf(`public class Widget
{
    private int _a;

    public Widget(int a)
    {
        _a = a;
    }

    public int A
    {
        get { return _a; }
    }

    public void Render()
    {
    }

    private class Nested
    {
        public int Inner;
    }
}`)
	e := newTextOnlyEngine()

	members, err := e.Members(context.Background(), doc, "Widget")
	require.NoError(t, err)

	byName := map[string]MemberKind{}
	for _, m := range members {
		byName[m.Name] = m.Kind
	}
	assert.Equal(t, KindField, byName["_a"])
	assert.Equal(t, KindProperty, byName["A"])
	assert.Equal(t, KindMethod, byName["Render"])
	assert.NotContains(t, byName, "Widget", "constructors are not movable")
	assert.NotContains(t, byName, "Nested", "nested types are not movable")
}

func TestMoveToBase_ClassesOnOneLine(t *testing.T) {
	doc := docOf(`public class Base { } public class Derived : Base { private int _count; public int Count => _count; }`)
	e := newTextOnlyEngine()

	mctx := e.Prepare(context.Background(), doc, posAt(doc, "Count =>"))
	require.NotNil(t, mctx)
	assert.Equal(t, "Count", mctx.Member.Name)
	assert.Equal(t, "public int Count => _count;", mctx.Member.Text,
		"the span starts at the declaration, not at the line start")

	we := e.BuildEdits(doc, mctx)
	result, err := edits.Apply(doc, we.Changes[doc.URI])
	require.NoError(t, err)

	derivedAt := strings.Index(result, "class Derived")
	fieldAt := strings.Index(result, "protected int _count;")
	propAt := strings.Index(result, "public int Count => _count;")
	require.GreaterOrEqual(t, fieldAt, 0)
	require.GreaterOrEqual(t, propAt, 0)
	assert.Less(t, fieldAt, derivedAt, "field lands in the base class")
	assert.Less(t, propAt, derivedAt, "property lands in the base class")
	assert.Equal(t, 2, strings.Count(result, "_count"), "no copies remain in the derived class")
}

func TestCollectMembers_MidLineSpansDoNotOverlap(t *testing.T) {
	doc := docOf(`public class C : B { private int _x; private int _y; }`)
	e := newTextOnlyEngine()

	members, err := e.Members(context.Background(), doc, "C")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "private int _x;", members[0].Text)
	assert.Equal(t, "private int _y;", members[1].Text)
	assert.LessOrEqual(t, members[0].End, members[1].Start)
}
