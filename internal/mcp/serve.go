package mcp

import (
	"context"
	"os"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ParentPollInterval is how often WatchParent checks the parent pid.
var ParentPollInterval = 2 * time.Second

// WatchParent cancels the serve context when the parent process goes away,
// so a server started by an editor does not outlive it.
//
// It must not read stdin: the stdio transport owns it.
func (s *Server) WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(ParentPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					s.logger.Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}

// Serve runs the server over stdio until ctx is done or the parent exits.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.WatchParent(ctx, cancel)

	s.logger.Info("serving MCP over stdio")
	if err := s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
