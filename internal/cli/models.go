package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/prdoctor/internal/config"
	"github.com/dshills/prdoctor/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List LLM providers and check their credentials",
}

// providerEntry describes one supported LLM backend.
type providerEntry struct {
	Name string
	// Env lists the credential variables in lookup order; empty for keyless
	// local servers.
	Env    []string
	Models []string
}

var catalog = []providerEntry{
	{"openai", []string{"OPENAI_API_KEY"}, []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "o3-mini"}},
	{"anthropic", []string{"ANTHROPIC_API_KEY"}, []string{"claude-haiku-4-5", "claude-sonnet-4-5", "claude-opus-4-1"}},
	{"gemini", []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, []string{"gemini-2.5-flash", "gemini-2.5-pro"}},
	{"ollama", nil, []string{"llama3.1", "llama3.2", "qwen2.5-coder"}},
}

// credentialStatus names the variable that supplies the key, or says none
// is needed or set.
func (p providerEntry) credentialStatus() string {
	if len(p.Env) == 0 {
		return "no key required"
	}
	for _, name := range p.Env {
		if os.Getenv(name) != "" {
			return name + " set"
		}
	}
	return strings.Join(p.Env, " or ") + " missing"
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for i, p := range catalog {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s (%s):\n", p.Name, p.credentialStatus())
			for _, m := range p.Models {
				if m == providers.DefaultModel(p.Name) {
					m += " (default)"
				}
				fmt.Fprintf(out, "  - %s\n", m)
			}
		}
	},
}

var flagDoctorProvider string

// modelsDoctorCmd sends one tiny JSON-mode request, the same mode the
// analyzers use, so a pass means reports can be generated.
var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured provider answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil, newLogger(cmd.ErrOrStderr(), flagVerbose))
		if err != nil {
			return err
		}
		name, model := cfg.Provider, cfg.Model
		if flagDoctorProvider != "" && flagDoctorProvider != name {
			name, model = flagDoctorProvider, ""
		}
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		fmt.Fprintf(stdout, "Checking %s...\n", name)

		llm, err := providers.New(name, model)
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		resp, err := llm.Complete(ctx, providers.Request{
			System:    `Reply with the JSON object {"ok": true}.`,
			Prompt:    "ping",
			JSON:      true,
			MaxTokens: 20,
		})
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
		fmt.Fprintf(stdout, "OK: %s answered (%d tokens)\n", llm.Name(), resp.TokensUsed)
		return nil
	},
}

func init() {
	modelsDoctorCmd.Flags().StringVar(&flagDoctorProvider, "provider", "", "Provider to check (default: configured provider)")
	modelsCmd.AddCommand(modelsListCmd, modelsDoctorCmd)
}
