package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/dshills/prdoctor/internal/review"
	"github.com/dshills/prdoctor/internal/scan"
)

// ErrNoToken is returned by NewClient when GITHUB_TOKEN is unset.
var ErrNoToken = errors.New("GITHUB_TOKEN environment variable is not set")

// FallbackBranch is listed when the default branch cannot be resolved.
const FallbackBranch = "main"

const perPage = 100

// Client provides access to the GitHub REST API for one repository.
type Client struct {
	gh     *gh.Client
	owner  string
	repo   string
	logger *slog.Logger
	retry  retryPolicy
}

// NewClient creates a client for repoFullName ("owner/name") authenticated
// with GITHUB_TOKEN. GITHUB_API_URL overrides the API endpoint.
func NewClient(ctx context.Context, repoFullName string, logger *slog.Logger) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, ErrNoToken
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 60 * time.Second
	return New(tc, os.Getenv("GITHUB_API_URL"), repoFullName, logger)
}

// New creates a client over an existing HTTP client. An empty apiURL keeps
// the public GitHub endpoint.
func New(httpClient *http.Client, apiURL, repoFullName string, logger *slog.Logger) (*Client, error) {
	owner, repo, err := SplitRepo(repoFullName)
	if err != nil {
		return nil, err
	}
	client := gh.NewClient(httpClient)
	if apiURL != "" {
		u, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		gh:     client,
		owner:  owner,
		repo:   repo,
		logger: logger,
		retry:  defaultRetry,
	}, nil
}

// SplitRepo splits "owner/name".
func SplitRepo(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(full), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: want owner/name", full)
	}
	return owner, repo, nil
}

// Repo returns the "owner/name" the client is bound to.
func (c *Client) Repo() string { return c.owner + "/" + c.repo }

// DefaultBranch returns the repository's default branch.
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	var branch string
	err := c.do(ctx, "get repository", func() error {
		r, _, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
		if err != nil {
			return err
		}
		branch = r.GetDefaultBranch()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetching repository %s: %w", c.Repo(), err)
	}
	if branch == "" {
		return "", fmt.Errorf("repository %s reports no default branch", c.Repo())
	}
	return branch, nil
}

// ListRepositoryTree lists the full recursive tree at ref. An empty ref
// resolves the default branch, or FallbackBranch if that lookup fails.
func (c *Client) ListRepositoryTree(ctx context.Context, ref string) ([]scan.TreeEntry, error) {
	if ref == "" {
		branch, err := c.DefaultBranch(ctx)
		if err != nil {
			c.logger.Warn("Could not resolve default branch", "repo", c.Repo(), "fallback", FallbackBranch, "error", err)
			branch = FallbackBranch
		}
		ref = branch
	}

	var tree *gh.Tree
	err := c.do(ctx, "get tree", func() error {
		t, _, err := c.gh.Git.GetTree(ctx, c.owner, c.repo, ref, true)
		if err != nil {
			return err
		}
		tree = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tree %s@%s: %w", c.Repo(), ref, err)
	}
	if tree.GetTruncated() {
		c.logger.Warn("Repository tree listing was truncated by the API", "repo", c.Repo(), "ref", ref)
	}

	entries := make([]scan.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, scan.TreeEntry{Path: e.GetPath(), Type: e.GetType()})
	}
	return entries, nil
}

// PullRequest is the PR metadata the scorer needs.
type PullRequest struct {
	Number       int
	Title        string
	URL          string
	HTMLURL      string
	ChangedFiles int
	Additions    int
	Deletions    int
}

// GetPullRequest fetches PR metadata.
func (c *Client) GetPullRequest(ctx context.Context, number int) (PullRequest, error) {
	var pr *gh.PullRequest
	err := c.do(ctx, "get pull request", func() error {
		p, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return err
		}
		pr = p
		return nil
	})
	if err != nil {
		return PullRequest{}, fmt.Errorf("fetching PR #%d in %s: %w", number, c.Repo(), err)
	}
	return PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		URL:          pr.GetURL(),
		HTMLURL:      pr.GetHTMLURL(),
		ChangedFiles: pr.GetChangedFiles(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
	}, nil
}

// GetPullRequestDiffs fetches every changed file of a PR with its patch.
// Binary and very large files come back without a patch.
func (c *Client) GetPullRequestDiffs(ctx context.Context, number int) ([]review.Diff, error) {
	var diffs []review.Diff
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		var (
			files []*gh.CommitFile
			resp  *gh.Response
		)
		err := c.do(ctx, "list pull request files", func() error {
			var err error
			files, resp, err = c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing files of PR #%d in %s: %w", number, c.Repo(), err)
		}
		for _, f := range files {
			diffs = append(diffs, review.Diff{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return diffs, nil
}

// PostIssueComment posts body as a PR conversation comment and returns its URL.
func (c *Client) PostIssueComment(ctx context.Context, number int, body string) (string, error) {
	// Not retried: a timed-out POST may still have landed.
	comment, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return "", fmt.Errorf("posting comment on PR #%d in %s: %w", number, c.Repo(), err)
	}
	return comment.GetHTMLURL(), nil
}
