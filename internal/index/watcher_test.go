package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/classkit/classkit/internal/workspace"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_PicksUpNewFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	ix := New(workspace.New(root, nil, nil))
	require.NoError(t, ix.Build(context.Background()))

	w, err := NewWatcher(ix, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { require.NoError(t, w.Close()) }()

	writeFile(t, root, "New.cs", "public class Fresh { }\n")

	ok := waitFor(t, 3*time.Second, func() bool {
		return len(ix.Lookup("Fresh")) == 1
	})
	assert.True(t, ok, "new file should be indexed after the debounce window")
}

func TestWatcher_CoalescesAndRemoves(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, root, "A.cs", "public class A { }\n")

	ix := New(workspace.New(root, nil, nil))
	require.NoError(t, ix.Build(context.Background()))
	require.Len(t, ix.Lookup("A"), 1)

	w, err := NewWatcher(ix, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { require.NoError(t, w.Close()) }()

	// A write burst followed by a remove must resolve to the remove.
	writeFile(t, root, "A.cs", "public class A2 { }\n")
	writeFile(t, root, "A.cs", "public class A3 { }\n")
	require.NoError(t, os.Remove(filepath.Join(root, "A.cs")))

	ok := waitFor(t, 3*time.Second, func() bool {
		return len(ix.Lookup("A")) == 0 &&
			len(ix.Lookup("A2")) == 0 &&
			len(ix.Lookup("A3")) == 0
	})
	assert.True(t, ok)
}

func TestWatcher_IgnoresNonSourceFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	ix := New(workspace.New(root, nil, nil))

	w, err := NewWatcher(ix, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { require.NoError(t, w.Close()) }()

	writeFile(t, root, "notes.txt", "public class NotCode { }")
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ix.Lookup("NotCode"))
}

func TestWatcher_CloseWithPendingTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	ix := New(workspace.New(root, nil, nil))

	w, err := NewWatcher(ix, time.Hour)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	writeFile(t, root, "B.cs", "public class B { }\n")
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Close())
}
