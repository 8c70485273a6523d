// Package review holds the analysis records and the two LLM-backed
// analyzers built on them.
//
// [Analyzer] sends a repository's file list (and optionally a PR's stats and
// diffs) to the LLM and validates the reply into a [RepositoryAnalysis].
// [Reviewer] scores a PR with the scoring package first and then asks the LLM
// for a qualitative review; the numeric score never depends on that call.
//
// Both analyzers make a single request, parse it with [ParseRepositoryAnalysis]
// or [ParseQualitative], and report failure as an outcome tagged with a
// reason. Callers substitute [DefaultRepositoryAnalysis] or
// [DefaultQualitative].
//
// Patches pass through [PrepareDiffs] before prompting so secrets are
// redacted and the combined size stays within the configured budget.
package review
