package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve isim operations as MCP tools over stdio",
	Long: `Serve every isim operation as an MCP tool over stdin/stdout.

Logs go to stderr or the configured log file; stdout carries only protocol
messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, x := newExecutor()
		defer mgr.Close()

		ctx := cmd.Context()
		logger.FromContext(ctx).Info("starting mcp server", zap.String("display", globalOpts.display))
		return mcp.NewServer(x, globalOpts.display).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpServeCmd)
}
