package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, excludes []string) *Watcher {
	t.Helper()

	w, err := New(root, excludes, 50*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()
	return w
}

func waitChanged(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change signal")
	}
}

func TestWatcher_SignalsOnWrite(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root, nil)

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	waitChanged(t, w)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte{byte('a' + i)}, 0o644))
	}
	waitChanged(t, w)

	// The burst produced exactly one signal.
	select {
	case <-w.Changed():
		t.Fatal("burst was not coalesced")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root, nil)

	sub := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitChanged(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "guide.md"), []byte("# Guide\n"), 0o644))
	waitChanged(t, w)
}

func TestWatcher_IgnoresExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	w := startWatcher(t, root, []string{"**/vendor/**"})

	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o644))

	select {
	case <-w.Changed():
		t.Fatal("excluded paths must not signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Ignored(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, []string{"**/node_modules/**"}, 0, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.ignored(filepath.Join(root, ".git", "HEAD")))
	assert.True(t, w.ignored(filepath.Join(root, "web", "node_modules")))
	assert.True(t, w.ignored(filepath.Join(root, "web", "node_modules", "react")))
	assert.False(t, w.ignored(filepath.Join(root, "internal", "app.go")))
	assert.False(t, w.ignored(root))
}
