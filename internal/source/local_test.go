package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExcluded(t *testing.T) {
	patterns := []string{"**/node_modules/**", "**/*.min.js", "go.sum"}

	assert.True(t, Excluded("web/node_modules/react/index.js", patterns))
	assert.True(t, Excluded("assets/app.min.js", patterns))
	assert.True(t, Excluded("go.sum", patterns))
	assert.False(t, Excluded("internal/app.go", patterns))
	assert.False(t, Excluded("docs/modules.md", patterns))
}

func TestIsBinaryPath(t *testing.T) {
	assert.True(t, IsBinaryPath("logo.PNG"))
	assert.True(t, IsBinaryPath("lib/native.so"))
	assert.False(t, IsBinaryPath("main.go"))
}

func TestLocalProvider_Files(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "docs/guide.md", "# Guide\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, "image.png", "\x89PNG")
	writeFile(t, root, "blob.txt", "text\x00with null")
	writeFile(t, root, ".hidden", "secret")

	p, err := NewLocal(root, []string{"**/vendor/**"}, nil)
	require.NoError(t, err)

	files, err := p.Files(context.Background())
	require.NoError(t, err)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.ElementsMatch(t, []string{"main.go", "docs/guide.md"}, paths)
}

func TestLocalProvider_CommitFromGitHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, ".git/refs/heads/main", "4a7d1ed414474e4033ac29ccb8653d9b\n")

	p, err := NewLocal(root, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Commit())

	_, err = p.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4a7d1ed414474e4033ac29ccb8653d9b", p.Commit())
}

func TestLocalProvider_CommitDetachedHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, ".git/HEAD", "4a7d1ed414474e4033ac29ccb8653d9b\n")

	p, err := NewLocal(root, nil, nil)
	require.NoError(t, err)

	_, err = p.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4a7d1ed414474e4033ac29ccb8653d9b", p.Commit())
}

func TestLocalProvider_CommitWithoutGit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	p, err := NewLocal(root, nil, nil)
	require.NoError(t, err)

	_, err = p.Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.Commit())
}

func TestLocalProvider_KeyFromGitConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", `[core]
	bare = false
[remote "origin"]
	url = git@github.com:acme/widgets.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`)

	p, err := NewLocal(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", p.Key())
}

func TestLocalProvider_KeyFallsBackToDirName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "myproject")
	require.NoError(t, os.MkdirAll(root, 0o755))

	p, err := NewLocal(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "myproject", p.Key())

	refs, err := p.CrossRefs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, refs)
}

func TestNewLocal_NotADirectory(t *testing.T) {
	_, err := NewLocal(filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, err)
}
