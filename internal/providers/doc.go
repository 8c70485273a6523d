// Package providers implements the Completer interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (GPT, the default), Anthropic (Claude), Google
// (Gemini), and Ollama / LMStudio for local models.
//
// Every call is a single attempt. Non-200 responses are mapped to typed
// errors so callers can tell authentication failures and rate limits apart,
// but nothing here retries; the analyzers fall back to default records
// instead. A provider whose credential is missing fails construction with
// [ErrMissingCredential], and [Unavailable] can stand in for it.
//
// Use [New] to obtain a Completer by provider name and model string.
package providers
