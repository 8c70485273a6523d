// Prdoctor scores pull requests and analyzes repositories with LLM providers.
//
// A run scans the repository tree, asks the configured LLM to describe the
// project and weight its files, then scores the pull request with a fixed
// size formula plus an LLM review. The report is written as markdown or JSON
// and, in live mode, posted back to the pull request as a comment.
//
// Usage:
//
//	prdoctor analyze                  # repository report for the local checkout
//	prdoctor simulate                 # review the built-in sample PR
//	prdoctor simulate --from-git      # review the local git diff as a PR
//	prdoctor pr 42                    # review GitHub PR #42 and comment on it
//	prdoctor run --mode live          # mode from flag, env or config file
//
// Exit codes: 0 success, 1 PR flagged (with --fail-on-flagged), 2 usage
// error, 3 missing credentials, 4 runtime error.
package main
