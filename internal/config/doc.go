// Package config loads and merges prdoctor configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRDOCTOR_MODE, PRDOCTOR_PROVIDER, GITHUB_REPOSITORY,
//     the scoring overrides such as PR_SCORE_THRESHOLD, etc.)
//  3. A .env file in the working directory, which never overrides variables
//     already set in the environment
//  4. Config file ($XDG_CONFIG_HOME/prdoctor/config.yaml)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
