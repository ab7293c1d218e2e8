package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindClass(t *testing.T) {
	text := `
public class Shape
{
    protected Shape(string name) { }
}

public class Circle : Shape
{
}
`
	cls, ok := FindClass(text, "Shape")
	require.True(t, ok)
	assert.Equal(t, "Shape", cls.Info.Name)
	assert.Empty(t, cls.Info.TypeParameters)
	assert.Equal(t, byte('{'), text[cls.OpenBrace])
	assert.Equal(t, byte('}'), text[cls.CloseBrace])
	assert.Contains(t, cls.Body(text), "protected Shape(string name)")

	_, ok = FindClass(text, "Square")
	assert.False(t, ok)
}

func TestFindClass_Generic(t *testing.T) {
	text := `public abstract class Repo<T> where T : class
{
    public abstract T Get(int id);
}`
	cls, ok := FindClass(text, "Repo")
	require.True(t, ok)
	assert.Equal(t, []string{"T"}, cls.Info.TypeParameters)
	assert.Contains(t, cls.Header, "where T : class")
	assert.Equal(t, "where T : class", cls.Info.Constraints)
}

func TestFindClass_MultipleConstraints(t *testing.T) {
	text := `public abstract class Store<TKey, TValue> : Base where TKey : notnull where TValue : class, new()
{
}`
	cls, ok := FindClass(text, "Store")
	require.True(t, ok)
	assert.Equal(t, "where TKey : notnull where TValue : class, new()", cls.Info.Constraints)
}

func TestFindClassAt_Innermost(t *testing.T) {
	text := `class Outer
{
    class Inner
    {
        int x;
    }
}`
	innerFieldOffset := 40
	require.Contains(t, text[innerFieldOffset-5:innerFieldOffset+10], "int x")

	cls, ok := FindClassAt(text, innerFieldOffset)
	require.True(t, ok)
	assert.Equal(t, "Inner", cls.Info.Name)

	cls, ok = FindClassAt(text, len(text)-1)
	require.True(t, ok)
	assert.Equal(t, "Outer", cls.Info.Name)
}

func TestParseTypeParameters(t *testing.T) {
	assert.Equal(t, []string{"T"}, ParseTypeParameters("T"))
	assert.Equal(t, []string{"TKey", "TValue"}, ParseTypeParameters("TKey, TValue"))
	assert.Equal(t, []string{"T", "U"}, ParseTypeParameters("in T, out U"))
}

func TestSplitTopLevel(t *testing.T) {
	parts := SplitTopLevel("int a, Dictionary<string, int> map, Func<int, (int, int)> f", ',')
	require.Len(t, parts, 3)
	assert.Equal(t, "int a", parts[0])
	assert.Equal(t, " Dictionary<string, int> map", parts[1])
	assert.Equal(t, " Func<int, (int, int)> f", parts[2])
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "Dictionary<string, int>", NormalizeType("Dictionary<string,\n    int>"))
}

func TestConstructors(t *testing.T) {
	body := `
    private readonly string _name;

    protected Shape(string name, int sides = 4)
    {
        _name = name;
    }

    public Shape()
    {
    }

    static Shape()
    {
    }
`
	ctors := Constructors(body, "Shape")
	require.Len(t, ctors, 1, "parameterless and static constructors are skipped")
	assert.Equal(t, "protected", ctors[0].Accessibility)
	assert.Equal(t, "string name, int sides = 4", ctors[0].Parameters)
	assert.Equal(t, "name, sides", ctors[0].ArgumentList)
}

func TestConstructors_NoAccessibility(t *testing.T) {
	body := `    Shape(int x) { }
`
	ctors := Constructors(body, "Shape")
	require.Len(t, ctors, 1)
	assert.Equal(t, "", ctors[0].Accessibility)
	assert.Equal(t, "x", ctors[0].ArgumentList)
}

func TestBuildArgumentList_Modifiers(t *testing.T) {
	assert.Equal(t, "ref count, out result, value",
		BuildArgumentList("ref int count, out string result, double value"))
	assert.Equal(t, "items", BuildArgumentList("List<Dictionary<string, int>> items"))
	assert.Equal(t, "x", BuildArgumentList(`string x = "a, b"`))
}

func TestAbstractMethods(t *testing.T) {
	body := `
    public abstract double Area();

    protected abstract TResult Convert<TResult>(string input) where TResult : class;

    public double Perimeter() { return 0; }

    public abstract void Update(ref int state);
`
	methods := AbstractMethods(body)
	require.Len(t, methods, 3)

	assert.Equal(t, "public", methods[0].Accessibility)
	assert.Equal(t, "double", methods[0].ReturnType)
	assert.Equal(t, "Area", methods[0].Name)
	assert.Empty(t, methods[0].Parameters)

	assert.Equal(t, "protected", methods[1].Accessibility)
	assert.Equal(t, "Convert", methods[1].Name)
	assert.Equal(t, "<TResult>", methods[1].FullTypeParameterText)
	assert.Equal(t, []string{"TResult"}, methods[1].TypeParameters)
	assert.Equal(t, "where TResult : class", methods[1].Constraints)

	assert.Equal(t, "Update", methods[2].Name)
	assert.Equal(t, "ref int state", methods[2].Parameters)
}

func TestAbstractProperties(t *testing.T) {
	body := `
    public abstract string Name { get; set; }
    public abstract int Count { get; }
    protected abstract int Hidden { get; init; }
    public string Concrete { get; set; }
`
	props := AbstractProperties(body)
	require.Len(t, props, 3)

	assert.Equal(t, "Name", props[0].Name)
	assert.True(t, props[0].HasGetter)
	assert.True(t, props[0].HasSetter)
	assert.False(t, props[0].HasInit)

	assert.Equal(t, "Count", props[1].Name)
	assert.True(t, props[1].HasGetter)
	assert.False(t, props[1].HasSetter)

	assert.Equal(t, "Hidden", props[2].Name)
	assert.True(t, props[2].HasInit)
}

func TestExtraction_ClassOnOneLine(t *testing.T) {
	text := `public abstract class Shape { protected Shape(int id) {} public abstract double Area(); }`
	cls, ok := FindClass(text, "Shape")
	require.True(t, ok)
	body := cls.Body(text)

	ctors := Constructors(body, "Shape")
	require.Len(t, ctors, 1)
	assert.Equal(t, "int id", ctors[0].Parameters)
	assert.Equal(t, "id", ctors[0].ArgumentList)

	methods := AbstractMethods(body)
	require.Len(t, methods, 1)
	assert.Equal(t, "Area", methods[0].Name)
	assert.Equal(t, "double", methods[0].ReturnType)
}

func TestAbstractMembers_BackToBackOnOneLine(t *testing.T) {
	body := `public abstract int A(); public abstract string B(string s); ` +
		`public abstract int N { get; } protected abstract int M { get; set; }`

	methods := AbstractMethods(body)
	require.Len(t, methods, 2)
	assert.Equal(t, "A", methods[0].Name)
	assert.Equal(t, "B", methods[1].Name)
	assert.Equal(t, "string s", methods[1].Parameters)

	props := AbstractProperties(body)
	require.Len(t, props, 2)
	assert.Equal(t, "N", props[0].Name)
	assert.False(t, props[0].HasSetter)
	assert.Equal(t, "M", props[1].Name)
	assert.True(t, props[1].HasSetter)
}

func TestConstructors_TwoOnOneLine(t *testing.T) {
	body := `public Box(int w) { } public Box(int w, int h) { }`
	ctors := Constructors(body, "Box")
	require.Len(t, ctors, 2)
	assert.Equal(t, "int w", ctors[0].Parameters)
	assert.Equal(t, "w, h", ctors[1].ArgumentList)
}
