package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show arena status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Arena %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Prompts: %s\n", paths.Prompts)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			registry := llm.NewRegistryFromConfig(cfg.Provider, log)
			providers := registry.List()
			if len(providers) > 0 {
				fmt.Printf("Provider: %s model=%s\n", strings.Join(providers, ", "), cfg.Provider.Model)
			} else {
				fmt.Println("Provider: (none; set provider.apiKey or GEMINI_API_KEY)")
			}

			fmt.Printf("Agent:    iterations=%d argChars=%d\n",
				cfg.Agent.MaxIterations, cfg.Agent.MaxArgChars)
			fmt.Printf("Gateway:  port=%d bind=%s auth=%s\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode)
			fmt.Printf("Session:  store=%s\n", cfg.Session.Store)
			fmt.Printf("Scholar:  rate=%.1f/s ua=%q\n",
				cfg.Scholar.RateLimit, cfg.Scholar.UserAgent)
			if len(cfg.Tools.Disabled) > 0 {
				fmt.Printf("Tools:    disabled=%s\n", strings.Join(cfg.Tools.Disabled, ","))
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
