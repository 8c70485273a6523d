package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoEvent is returned when no pull_request event payload is available.
var ErrNoEvent = errors.New("no pull request event payload")

// Event is the subset of a GitHub Actions pull_request payload the tool reads.
type Event struct {
	Number      int
	Repository  string
	PullRequest PullRequest
}

type eventPayload struct {
	Number      int `json:"number"`
	PullRequest *struct {
		Number       int    `json:"number"`
		Title        string `json:"title"`
		URL          string `json:"url"`
		HTMLURL      string `json:"html_url"`
		ChangedFiles int    `json:"changed_files"`
		Additions    int    `json:"additions"`
		Deletions    int    `json:"deletions"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// LoadEvent reads the payload at path, usually $GITHUB_EVENT_PATH. An empty
// path or a payload without a pull_request yields ErrNoEvent.
func LoadEvent(path string) (Event, error) {
	if path == "" {
		return Event{}, ErrNoEvent
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("reading event payload: %w", err)
	}
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, fmt.Errorf("parsing event payload: %w", err)
	}
	if p.PullRequest == nil {
		return Event{}, fmt.Errorf("%s: %w", path, ErrNoEvent)
	}

	number := p.PullRequest.Number
	if number == 0 {
		number = p.Number
	}
	return Event{
		Number:     number,
		Repository: p.Repository.FullName,
		PullRequest: PullRequest{
			Number:       number,
			Title:        p.PullRequest.Title,
			URL:          p.PullRequest.URL,
			HTMLURL:      p.PullRequest.HTMLURL,
			ChangedFiles: p.PullRequest.ChangedFiles,
			Additions:    p.PullRequest.Additions,
			Deletions:    p.PullRequest.Deletions,
		},
	}, nil
}
