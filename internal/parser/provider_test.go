package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/types"
)

func parseSymbols(t *testing.T, text string) []*types.Symbol {
	t.Helper()
	p, err := NewCSharpProvider()
	require.NoError(t, err)
	syms, err := p.DocumentSymbols(context.Background(), types.NewDocument("t.cs", 1, text))
	require.NoError(t, err)
	return syms
}

func TestDocumentSymbols_ClassWithMembers(t *testing.T) {
	syms := parseSymbols(t, `public class Widget
{
    private int _count;

    public int Count { get; set; }

    public Widget(int count)
    {
        _count = count;
    }

    public void Render()
    {
    }
}
`)
	require.Len(t, syms, 1)
	cls := syms[0]
	assert.Equal(t, "Widget", cls.Name)
	assert.Equal(t, types.KindClass, cls.Kind)

	require.Len(t, cls.Children, 4)
	assert.Equal(t, types.KindField, cls.Children[0].Kind)
	assert.Equal(t, "_count", cls.Children[0].Name)
	assert.Equal(t, types.KindProperty, cls.Children[1].Kind)
	assert.Equal(t, "Count", cls.Children[1].Name)
	assert.Equal(t, types.KindConstructor, cls.Children[2].Kind)
	assert.Equal(t, types.KindMethod, cls.Children[3].Kind)
	assert.Equal(t, "Render", cls.Children[3].Name)
}

func TestDocumentSymbols_BlockNamespace(t *testing.T) {
	syms := parseSymbols(t, `namespace App.Models
{
    public class Widget
    {
    }

    public interface IWidget
    {
    }
}
`)
	require.Len(t, syms, 1)
	ns := syms[0]
	assert.Equal(t, types.KindNamespace, ns.Kind)
	assert.Equal(t, "App.Models", ns.Name)
	require.Len(t, ns.Children, 2)
	assert.Equal(t, types.KindClass, ns.Children[0].Kind)
	assert.Equal(t, types.KindInterface, ns.Children[1].Kind)
}

func TestDocumentSymbols_FileScopedNamespace(t *testing.T) {
	syms := parseSymbols(t, `namespace App;

public class Widget
{
}
`)
	require.Len(t, syms, 1)
	ns := syms[0]
	assert.Equal(t, types.KindNamespace, ns.Kind)
	require.Len(t, ns.Children, 1)
	assert.Equal(t, "Widget", ns.Children[0].Name)
}

func TestDocumentSymbols_DetailCarriesGenerics(t *testing.T) {
	syms := parseSymbols(t, `public abstract class Repo<T> where T : class
{
}
`)
	require.Len(t, syms, 1)
	assert.Contains(t, syms[0].Detail, "Repo<T>")
}

func TestDocumentSymbols_RangesCoverDeclarations(t *testing.T) {
	text := `public class A
{
    public void M()
    {
    }
}
`
	doc := types.NewDocument("t.cs", 1, text)
	syms := parseSymbols(t, text)
	require.Len(t, syms, 1)

	m := symbols.FindByKindAndName(syms, types.KindMethod, "M")
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Range.Start.Line)
	assert.Equal(t, 4, m.Range.End.Line)
	assert.Equal(t, "M", doc.Slice(m.SelectionRange))
}

func TestDocumentSymbols_EmptyInput(t *testing.T) {
	p, err := NewCSharpProvider()
	require.NoError(t, err)
	syms, err := p.DocumentSymbols(context.Background(), types.NewDocument("t.cs", 1, ""))
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestDocumentSymbols_CacheEvictsOnEmpty(t *testing.T) {
	p, err := NewCSharpProvider()
	require.NoError(t, err)
	cache := symbols.NewCache(p)

	doc := types.NewDocument("t.cs", 1, "public class A { }")
	require.NotNil(t, cache.DocumentSymbols(context.Background(), doc))

	empty := types.NewDocument("t.cs", 2, "")
	assert.Nil(t, cache.DocumentSymbols(context.Background(), empty),
		"empty tree forces the textual fallback")
}
