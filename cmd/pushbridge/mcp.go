package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pushbridge-dev/pushbridge/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP (Model Context Protocol) server on stdio",
	Long: `Start an MCP server that exposes push registration as tools and resources
for LLM integration (Claude Desktop, Claude Code, etc.).

The server communicates via JSON-RPC over stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		s := mcpserver.New(rt.coord, rt.bus, rootCmd.Version, logger)
		return s.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
