// Package redact removes secrets from PR patches before they are embedded in
// an LLM prompt.
//
// A [Policy] combines two mechanisms. Path rules replace the whole patch of
// files such as .env or *.pem (see [DefaultPaths]). Secret rules are named
// regex heuristics for API keys, JWTs, private keys, AWS credentials, bearer
// tokens, database URLs with inline passwords and provider-specific tokens;
// each match becomes [Placeholder] and the rule names are reported back.
package redact
