// Package doctor runs one end-to-end pass in a chosen mode.
//
//   - standalone: scan the repository, analyze it, write repo_analysis_report
//   - simulated: review a fixture PR against default repository context
//   - live: fetch the PR from GitHub, analyze the repository with PR
//     context, review, write pr_review_report and post it as a comment
//
// Every collaborator failure degrades to a default and is recorded on the
// [RunResult]; only an invalid mode or an unwritable report is fatal.
package doctor
