package commands

import (
	"github.com/erraggy/modeltools/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve validate, compare and resolve as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout. The tools are
validate_model, compare_models and resolve_location. The target version and
mode configured here are the defaults for tool calls that omit them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			return mcpserver.Run(cmd.Context(), mcpserver.Defaults{
				TargetVersion: cfg.TargetVersion,
				TargetMode:    cfg.TargetMode,
			})
		},
	}
}
