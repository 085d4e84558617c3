// Package github acquires source files and pull-request cross-references
// from GitHub repositories via the REST API.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/artifact"
	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/source"
)

const (
	// requestTimeout is the per-request HTTP timeout.
	requestTimeout = 30 * time.Second

	// proactiveRate throttles below GitHub's 5000/hour authenticated
	// limit (~1.2 req/sec leaves headroom for other consumers).
	proactiveRate = 1.2

	// maxBlobBytes skips files larger than 1 MiB.
	maxBlobBytes = 1 << 20

	// listPageSize for paginated list calls.
	listPageSize = 100
)

// Provider fetches one repository's files over the GitHub API.
type Provider struct {
	owner     string
	repo      string
	commit    string
	client    *gh.Client
	limiter   *rate.Limiter
	crossRefs bool
	excludes  []string
	logger    *slog.Logger
}

// Options configures a GitHub provider.
type Options struct {
	// Repo is "owner/name".
	Repo string
	// Token authenticates API calls. Anonymous access works for public
	// repositories but hits a far lower rate limit.
	Token string
	// CrossRefs enables open pull-request cross-reference lookup.
	CrossRefs bool
	// Exclude lists glob patterns that are never indexed.
	Exclude []string
}

// NewProvider creates a provider for one repository.
func NewProvider(ctx context.Context, opts Options, logger *slog.Logger) (*Provider, error) {
	owner, repo, ok := strings.Cut(opts.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, kberr.New(kberr.ErrCodeConfigInvalid,
			fmt.Sprintf("repo %q must be owner/name", opts.Repo), nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := oauth2.NewClient(ctx, nil)
	if opts.Token != "" {
		httpClient = oauth2.NewClient(ctx,
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}
	httpClient.Timeout = requestTimeout

	return &Provider{
		owner:     owner,
		repo:      repo,
		client:    gh.NewClient(httpClient),
		limiter:   rate.NewLimiter(rate.Limit(proactiveRate), 1),
		crossRefs: opts.CrossRefs,
		excludes:  opts.Exclude,
		logger:    logger,
	}, nil
}

// Key identifies the source as "owner/name".
func (p *Provider) Key() string {
	return p.owner + "/" + p.repo
}

// Commit is the SHA of the tree the last Files call listed.
func (p *Provider) Commit() string {
	return p.commit
}

// Files lists the default branch's tree in one recursive call and
// fetches each indexable blob. Individual blob failures are logged and
// skipped; only listing failures are errors.
func (p *Provider) Files(ctx context.Context) ([]source.File, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	repository, _, err := p.client.Repositories.Get(ctx, p.owner, p.repo)
	if err != nil {
		return nil, kberr.Transient(kberr.ErrCodeSourceFetch, err)
	}
	branch := repository.GetDefaultBranch()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tree, _, err := p.client.Git.GetTree(ctx, p.owner, p.repo, branch, true)
	if err != nil {
		return nil, kberr.Transient(kberr.ErrCodeSourceFetch, err)
	}
	p.commit = tree.GetSHA()

	var files []source.File
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if source.Excluded(path, p.excludes) || source.IsBinaryPath(path) {
			continue
		}
		if entry.GetSize() > maxBlobBytes {
			continue
		}

		content, fetchErr := p.fetchBlob(ctx, entry.GetSHA())
		if fetchErr != nil {
			p.logger.Warn("blob_fetch_failed",
				slog.String("repo", p.Key()),
				slog.String("path", path),
				slog.String("error", fetchErr.Error()))
			continue
		}
		files = append(files, source.File{Path: path, Content: content})
	}

	return files, nil
}

// fetchBlob retrieves and decodes one blob by SHA.
func (p *Provider) fetchBlob(ctx context.Context, sha string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	blob, _, err := p.client.Git.GetBlob(ctx, p.owner, p.repo, sha)
	if err != nil {
		return "", err
	}

	if blob.GetEncoding() == "base64" {
		decoded, decErr := base64.StdEncoding.DecodeString(
			strings.ReplaceAll(blob.GetContent(), "\n", ""))
		if decErr != nil {
			return "", decErr
		}
		return string(decoded), nil
	}
	return blob.GetContent(), nil
}

// CrossRefs maps each file touched by an open pull request to that
// request's record. When several open requests touch the same file, the
// most recently updated wins. Disabled providers return nil without
// API calls.
func (p *Provider) CrossRefs(ctx context.Context) (map[string]artifact.CrossRef, error) {
	if !p.crossRefs {
		return nil, nil
	}

	refs := make(map[string]artifact.CrossRef)

	prOpts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: listPageSize},
	}
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		prs, resp, err := p.client.PullRequests.List(ctx, p.owner, p.repo, prOpts)
		if err != nil {
			return nil, kberr.Transient(kberr.ErrCodeCrossRefFetch, err)
		}

		for _, pr := range prs {
			ref := artifact.CrossRef{
				Number:           pr.GetNumber(),
				Title:            pr.GetTitle(),
				State:            "open",
				ChangedFileCount: pr.GetChangedFiles(),
				CreatedAt:        pr.GetCreatedAt().Time,
				UpdatedAt:        pr.GetUpdatedAt().Time,
				URL:              pr.GetHTMLURL(),
			}
			if err := p.collectPRFiles(ctx, ref, refs); err != nil {
				p.logger.Warn("crossref_files_failed",
					slog.String("repo", p.Key()),
					slog.Int("pr", ref.Number),
					slog.String("error", err.Error()))
			}
		}

		if resp.NextPage == 0 {
			break
		}
		prOpts.Page = resp.NextPage
	}

	return refs, nil
}

// collectPRFiles records ref against every file of one pull request.
func (p *Provider) collectPRFiles(ctx context.Context, ref artifact.CrossRef, refs map[string]artifact.CrossRef) error {
	opts := &gh.ListOptions{PerPage: listPageSize}
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		files, resp, err := p.client.PullRequests.ListFiles(ctx, p.owner, p.repo, ref.Number, opts)
		if err != nil {
			return err
		}

		for _, f := range files {
			name := f.GetFilename()
			if prev, ok := refs[name]; ok && prev.UpdatedAt.After(ref.UpdatedAt) {
				continue
			}
			refs[name] = ref
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}
