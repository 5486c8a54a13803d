package main

import (
	"github.com/spf13/cobra"

	mcpserver "apimonitor/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing bucket, test, result,
time-frame and trigger tools. Every tool call uses the configured token.

The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	return mcpserver.NewServer(svc, token, version).Serve(cmd.Context())
}
