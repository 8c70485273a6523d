// Package gitctx turns a local git diff into pull request data.
//
// It shells out to git and splits the unified diff into per-file
// [review.Diff] records plus aggregate [scoring.Stats], so a simulated run
// can score the working tree or a revision range without calling GitHub.
package gitctx
