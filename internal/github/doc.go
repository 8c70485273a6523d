// Package github is the hosting collaborator: a thin client over go-github
// bound to one repository.
//
// It lists the recursive repository tree, fetches PR metadata and per-file
// patches (paginated), and posts the rendered report as a PR conversation
// comment. Read calls are retried on rate limits and 5xx responses; the
// comment POST is sent once.
//
// [LoadEvent] reads the GitHub Actions pull_request payload and [DetectRepo]
// resolves owner/name from the local origin remote.
package github
