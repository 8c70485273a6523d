package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/dshills/prdoctor/internal/scan"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := New(server.Client(), server.URL, "owner/repo", nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.retry = retryPolicy{attempts: 3, delay: time.Millisecond, maxDelay: 5 * time.Millisecond}
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	if _, err := NewClient(context.Background(), "owner/repo", nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestNewClient_AuthAndBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", r.Header.Get("Authorization"), "Bearer test-token")
		}
		if r.URL.Path != "/api/v3/repos/owner/repo" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"default_branch":"trunk"}`))
	}))
	defer server.Close()

	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", server.URL+"/api/v3")
	c, err := NewClient(context.Background(), "owner/repo", nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	branch, err := c.DefaultBranch(context.Background())
	if err != nil {
		t.Fatalf("DefaultBranch error: %v", err)
	}
	if branch != "trunk" {
		t.Errorf("branch = %q, want trunk", branch)
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		repo    string
		wantErr bool
	}{
		{"acme/app", "acme", "app", false},
		{" acme/app ", "acme", "app", false},
		{"acme", "", "", true},
		{"/app", "", "", true},
		{"acme/", "", "", true},
		{"a/b/c", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := SplitRepo(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitRepo(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("SplitRepo(%q) = %q, %q", tt.in, owner, repo)
		}
	}
}

func TestListRepositoryTree(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo":
			w.Write([]byte(`{"default_branch":"develop"}`))
		case "/repos/owner/repo/git/trees/develop":
			if r.URL.Query().Get("recursive") != "1" {
				t.Errorf("recursive = %q, want 1", r.URL.Query().Get("recursive"))
			}
			w.Write([]byte(`{"sha":"abc","truncated":false,"tree":[
				{"path":"src","type":"tree"},
				{"path":"src/auth.py","type":"blob"},
				{"path":"README.md","type":"blob"}
			]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	entries, err := c.ListRepositoryTree(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRepositoryTree error: %v", err)
	}
	want := []scan.TreeEntry{
		{Path: "src", Type: "tree"},
		{Path: "src/auth.py", Type: "blob"},
		{Path: "README.md", Type: "blob"},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestListRepositoryTree_DefaultBranchFallback(t *testing.T) {
	var treePath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/owner/repo" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		treePath = r.URL.Path
		w.Write([]byte(`{"tree":[]}`))
	})

	if _, err := c.ListRepositoryTree(context.Background(), ""); err != nil {
		t.Fatalf("ListRepositoryTree error: %v", err)
	}
	if treePath != "/repos/owner/repo/git/trees/main" {
		t.Errorf("tree path = %q, want fallback to main", treePath)
	}
}

func TestListRepositoryTree_NotFound(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := c.ListRepositoryTree(context.Background(), "feature")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, 404 must not be retried", calls)
	}
}

func TestGetPullRequest_RetriesServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"bad gateway"}`))
			return
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"number":42,"title":"Add auth","url":"https://api.github.com/repos/owner/repo/pulls/42",
			"html_url":"https://github.com/owner/repo/pull/42","changed_files":3,"additions":50,"deletions":10}`))
	})

	pr, err := c.GetPullRequest(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPullRequest error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := PullRequest{
		Number:       42,
		Title:        "Add auth",
		URL:          "https://api.github.com/repos/owner/repo/pulls/42",
		HTMLURL:      "https://github.com/owner/repo/pull/42",
		ChangedFiles: 3,
		Additions:    50,
		Deletions:    10,
	}
	if pr != want {
		t.Errorf("pr = %+v, want %+v", pr, want)
	}
}

func TestGetPullRequest_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := c.GetPullRequest(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetPullRequestDiffs_Paginates(t *testing.T) {
	var serverURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/7/files" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %q", r.URL.Query().Get("per_page"))
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/owner/repo/pulls/7/files?page=2&per_page=100>; rel="next"`, serverURL))
			w.Write([]byte(`[{"filename":"src/auth.py","status":"modified","additions":40,"deletions":5,"patch":"@@ -1 +1 @@\n-a\n+b"}]`))
		case "2":
			w.Write([]byte(`[{"filename":"logo.png","status":"added","additions":0,"deletions":0}]`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	serverURL = c.gh.BaseURL.String()
	serverURL = serverURL[:len(serverURL)-1]

	diffs, err := c.GetPullRequestDiffs(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPullRequestDiffs error: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("diffs = %+v", diffs)
	}
	if diffs[0].Filename != "src/auth.py" || diffs[0].Additions != 40 || diffs[0].Patch == "" || diffs[0].Status != "modified" {
		t.Errorf("diffs[0] = %+v", diffs[0])
	}
	if diffs[1].Filename != "logo.png" || diffs[1].Patch != "" {
		t.Errorf("diffs[1] = %+v", diffs[1])
	}
}

func TestPostIssueComment(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/issues/42/comments" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if payload.Body != "# Scoreboard" {
			t.Errorf("Body = %q", payload.Body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"html_url":"https://github.com/owner/repo/pull/42#issuecomment-1"}`))
	})

	u, err := c.PostIssueComment(context.Background(), 42, "# Scoreboard")
	if err != nil {
		t.Fatalf("PostIssueComment error: %v", err)
	}
	if u != "https://github.com/owner/repo/pull/42#issuecomment-1" {
		t.Errorf("url = %q", u)
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestPostIssueComment_NotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := c.PostIssueComment(context.Background(), 1, "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLoadEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	payload := `{
		"action": "opened",
		"number": 42,
		"pull_request": {
			"number": 42,
			"title": "Add auth",
			"url": "https://api.github.com/repos/acme/app/pulls/42",
			"changed_files": 3,
			"additions": 50,
			"deletions": 10
		},
		"repository": {"full_name": "acme/app"}
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, err := LoadEvent(path)
	if err != nil {
		t.Fatalf("LoadEvent error: %v", err)
	}
	if ev.Number != 42 || ev.Repository != "acme/app" {
		t.Errorf("event = %+v", ev)
	}
	if ev.PullRequest.ChangedFiles != 3 || ev.PullRequest.Additions != 50 || ev.PullRequest.Deletions != 10 {
		t.Errorf("PullRequest = %+v", ev.PullRequest)
	}
}

func TestLoadEvent_NoEvent(t *testing.T) {
	if _, err := LoadEvent(""); !errors.Is(err, ErrNoEvent) {
		t.Errorf("empty path: err = %v, want ErrNoEvent", err)
	}

	path := filepath.Join(t.TempDir(), "push.json")
	os.WriteFile(path, []byte(`{"ref":"refs/heads/main"}`), 0o644)
	if _, err := LoadEvent(path); !errors.Is(err, ErrNoEvent) {
		t.Errorf("push payload: err = %v, want ErrNoEvent", err)
	}

	if _, err := LoadEvent(filepath.Join(t.TempDir(), "missing.json")); err == nil || errors.Is(err, ErrNoEvent) {
		t.Errorf("missing file: err = %v, want read error", err)
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "HTTPS",
			url:       "https://github.com/acme/widgets.git",
			wantOwner: "acme",
			wantRepo:  "widgets",
		},
		{
			name:      "HTTPS no .git",
			url:       "https://github.com/acme/widgets",
			wantOwner: "acme",
			wantRepo:  "widgets",
		},
		{
			name:      "SSH",
			url:       "git@github.com:acme/widgets.git",
			wantOwner: "acme",
			wantRepo:  "widgets",
		},
		{
			name:      "SSH no .git",
			url:       "git@github.com:acme/widgets",
			wantOwner: "acme",
			wantRepo:  "widgets",
		},
		{
			name:    "invalid",
			url:     "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %q, want %q", repo, tt.wantRepo)
			}
		})
	}
}

func TestDetectRepo(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/widgets.git"},
	}); err != nil {
		t.Fatalf("CreateRemote: %v", err)
	}
	sub := filepath.Join(dir, "internal", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := DetectRepo(sub)
	if err != nil {
		t.Fatalf("DetectRepo error: %v", err)
	}
	if got != "acme/widgets" {
		t.Errorf("DetectRepo = %q, want acme/widgets", got)
	}
}

func TestDetectRepo_NoRemote(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	if _, err := DetectRepo(dir); err == nil {
		t.Error("expected error without origin remote")
	}
}

func TestRetryable(t *testing.T) {
	if retryable(nil) {
		t.Error("nil is not retryable")
	}
	if retryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}
