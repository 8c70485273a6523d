// Package output renders analysis reports for people and machines.
//
// Two formats are supported:
//   - markdown: the scoreboard report, also used as the PR comment body
//   - json: the full structured [review.Report]
//
// Use [GetWriter] to obtain a [Writer] for a format string, or [WriteReport]
// to render straight into the well-known file named by [ReportFilename].
package output
