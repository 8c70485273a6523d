// Package cli wires together the Cobra command tree for the prdoctor binary.
//
// It defines the root command and all subcommands (run, analyze, simulate,
// pr, config, models, version), binds flags, reads configuration, builds the
// LLM and GitHub collaborators, runs the orchestrator, and returns
// deterministic exit codes for CI gating.
package cli
