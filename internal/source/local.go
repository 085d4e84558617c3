package source

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

// maxFileBytes caps the size of a single indexable file.
const maxFileBytes = 1 << 20 // 1 MiB

// originURLPattern extracts "owner/name" from a git remote URL.
var originURLPattern = regexp.MustCompile(`[:/]([^:/]+/[^:/]+?)(?:\.git)?\s*$`)

// LocalProvider reads files from a directory tree on disk.
type LocalProvider struct {
	root     string
	key      string
	commit   string
	excludes []string
	logger   *slog.Logger
}

// NewLocal creates a provider over root. The source key is derived from
// the git origin remote when present, otherwise the directory name.
func NewLocal(root string, excludes []string, logger *slog.Logger) (*LocalProvider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeConfigInvalid, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, kberr.New(kberr.ErrCodeConfigInvalid,
			"source root is not a directory: "+root, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LocalProvider{
		root:     abs,
		key:      deriveKey(abs),
		excludes: excludes,
		logger:   logger,
	}, nil
}

// deriveKey reads .git/config for an origin remote; the "owner/name"
// tail of its URL becomes the source key. Without one, the directory
// name is the key.
func deriveKey(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ".git", "config"))
	if err == nil {
		inOrigin := false
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "[") {
				inOrigin = trimmed == `[remote "origin"]`
				continue
			}
			if inOrigin && strings.HasPrefix(trimmed, "url") {
				if _, url, ok := strings.Cut(trimmed, "="); ok {
					if m := originURLPattern.FindStringSubmatch(strings.TrimSpace(url)); m != nil {
						return m[1]
					}
				}
			}
		}
	}
	return filepath.Base(root)
}

// Key identifies the source.
func (p *LocalProvider) Key() string {
	return p.key
}

// Commit is the checkout's HEAD commit at the last Files call, empty
// outside a git checkout.
func (p *LocalProvider) Commit() string {
	return p.commit
}

// readGitHead resolves .git/HEAD to a commit hash, following one level
// of symbolic ref.
func readGitHead(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ".git", "HEAD"))
	if err != nil {
		return ""
	}
	head := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(head, "ref: "); ok {
		data, err = os.ReadFile(filepath.Join(root, ".git", filepath.FromSlash(ref)))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return head
}

// Files walks the tree, returning text files that pass the exclusion
// and binary checks. Unreadable files are logged and skipped.
func (p *LocalProvider) Files(ctx context.Context) ([]File, error) {
	p.commit = readGitHead(p.root)

	var files []File

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(p.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (Excluded(rel+"/x", p.excludes) || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if Excluded(rel, p.excludes) || IsBinaryPath(rel) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > maxFileBytes {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			p.logger.Warn("file_unreadable",
				slog.String("path", rel),
				slog.String("error", readErr.Error()))
			return nil
		}
		if bytes.IndexByte(data, 0) >= 0 {
			// Binary content without a telltale extension.
			return nil
		}

		files = append(files, File{Path: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, kberr.Transient(kberr.ErrCodeSourceFetch, err)
	}

	return files, nil
}

// CrossRefs is nil for local sources; there is no change-tracking
// backend to consult.
func (p *LocalProvider) CrossRefs(context.Context) (map[string]artifact.CrossRef, error) {
	return nil, nil
}
