package cli

import (
	"fmt"
	"slices"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/tools"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			for _, tool := range tools.All(&tools.Deps{Config: cfg.Tools, Log: log}) {
				marker := " "
				if slices.Contains(cfg.Tools.Disabled, tool.Name()) {
					marker = "-"
				}
				fmt.Printf("%s %-22s %s\n", marker, tool.Name(), tool.Description())
			}
			if len(cfg.Tools.Disabled) > 0 {
				fmt.Printf("\n(- disabled via tools.disabled)\n")
			}
			return nil
		},
	}
}
