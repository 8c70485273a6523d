// Package scoring computes the deterministic pull request score.
//
// [Score] starts from a base value and subtracts weighted penalties for the
// number of changed files, added lines and deleted lines. The result is
// clamped to [0, 100] and flagged when it falls below the configured
// threshold. Size-tier bonuses, the missing-tests penalty and lint/type-check
// penalties are opt-in via [Config.Adjustments].
//
// The score never depends on LLM output.
package scoring
