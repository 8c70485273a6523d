// Package scan enumerates the file paths of a repository.
//
// Local scans walk the working tree and drop paths matched by [IgnoreRules]
// (the root .gitignore plus .git and __pycache__). Remote scans ask a
// [TreeLister] for the recursive tree of a ref and keep blob entries; when
// the remote call fails the scanner falls back to a local scan and records
// the failure in [Result].
package scan
