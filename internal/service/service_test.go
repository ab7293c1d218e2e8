package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classkit/classkit/internal/config"
	"github.com/classkit/classkit/internal/types"
)

func newTestService(t *testing.T, files map[string]string) *Service {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Symbols.Provider = "none"
	svc, err := New(cfg)
	require.NoError(t, err)
	return svc
}

func TestDeriveClass_SeparateFile(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"src/Shape.cs": `namespace Geometry;

public abstract class Shape
{
    public abstract double Area();
}
`,
	})

	res, err := svc.DeriveClass(context.Background(), "src/Shape.cs", "Shape", "Circle", true)
	require.NoError(t, err)
	assert.Equal(t, "src/Circle.cs", res.NewFilePath)

	content := res.Edit.CreateFiles["src/Circle.cs"]
	assert.True(t, strings.HasPrefix(content, "namespace Geometry;\n"))
	assert.Contains(t, content, "public class Circle : Shape")
	assert.Empty(t, res.Edit.Changes, "separate-file mode edits no existing file")
}

func TestDeriveClass_InsertBelow(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Shape.cs": `public abstract class Shape
{
    public abstract double Area();
}
`,
	})

	res, err := svc.DeriveClass(context.Background(), "Shape.cs", "Shape", "Circle", false)
	require.NoError(t, err)
	assert.Empty(t, res.NewFilePath)
	require.Contains(t, res.Edit.Changes, "Shape.cs")
}

func TestExtractInterface_CreatesWhenMissing(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Foo.cs": `public class Foo
{
    public string Title { get; set; }
}
`,
	})

	doc, err := svc.WS.ReadDocument("Foo.cs")
	require.NoError(t, err)
	pos := doc.PositionAt(strings.Index(doc.Text, "Title"))

	res, err := svc.ExtractInterface(context.Background(), "Foo.cs", pos, "IFoo")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.AlreadyDeclared)
	assert.Equal(t, "Title", res.Member.Name)
}

func TestExtractInterface_NoMemberAtCursor(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Foo.cs": "public class Foo\n{\n}\n",
	})

	_, err := svc.ExtractInterface(context.Background(), "Foo.cs", types.Position{}, "IFoo")
	require.Error(t, err)
}

func TestMoveToBase_NotApplicable(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Foo.cs": "public class Foo\n{\n    private int _x;\n}\n",
	})

	doc, err := svc.WS.ReadDocument("Foo.cs")
	require.NoError(t, err)
	pos := doc.PositionAt(strings.Index(doc.Text, "_x"))

	res, err := svc.MoveToBase(context.Background(), "Foo.cs", pos)
	require.NoError(t, err)
	assert.Nil(t, res, "class without a base clause offers no action")
}

func TestMoveToBase_MovesClosure(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Counter.cs": `public class Base
{
}

public class Derived : Base
{
    private int _count;

    public int Count
    {
        get { return _count; }
    }
}
`,
	})

	doc, err := svc.WS.ReadDocument("Counter.cs")
	require.NoError(t, err)
	pos := doc.PositionAt(strings.Index(doc.Text, "Count\n"))

	res, err := svc.MoveToBase(context.Background(), "Counter.cs", pos)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Count", res.Member)
	assert.Equal(t, "Base", res.Base)
	assert.Equal(t, []string{"_count", "Count"}, res.MovedAll)
}

func TestFindClass_AcrossWorkspace(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"a/Widget.cs":        "public partial class Widget { }\n",
		"b/Widget.Render.cs": "public partial class Widget { }\n",
	})

	locs, err := svc.FindClass(context.Background(), "Widget")
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "a/Widget.cs", locs[0].Path)
	assert.Equal(t, "b/Widget.Render.cs", locs[1].Path)
}

func TestPartialClasses(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Widget.cs":       "public partial class Widget { }\n",
		"Widget.Extra.cs": "public partial class Widget { }\n",
		"Other.cs":        "public class Other { }\n",
	})

	hits, err := svc.PartialClasses(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestListMembers(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Foo.cs": `public class Foo
{
    private int _a;

    public void Go()
    {
    }
}
`,
	})

	members, err := svc.ListMembers(context.Background(), "Foo.cs", "Foo")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "_a", members[0].Name)
	assert.Equal(t, "Go", members[1].Name)
}

func TestNew_WiresScanParallelism(t *testing.T) {
	cfg := config.Default()
	cfg.Project.Root = t.TempDir()
	cfg.Symbols.Provider = "none"
	cfg.Scan.MaxParallel = 3

	svc, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, svc.WS.MaxParallel)
}

func TestPartialClasses_ExpiredBudgetDegrades(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Widget.cs": "public partial class Widget { }\n",
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	hits, err := svc.PartialClasses(ctx, "Widget")
	require.NoError(t, err, "a budget overrun is not an error")
	assert.Empty(t, hits)
}
