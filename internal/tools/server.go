package tools

import (
	"context"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/server"
)

const instructions = `Task tracker for planning multi-step work.

Tasks have an integer id, a title, a status (open, in_progress, blocked, completed),
a priority (low, medium, high, urgent), notes, tags, an estimated duration and a
list of dependencies on other tasks. Dependencies must name existing tasks and may
not form a cycle. A task cannot be deleted while others depend on it.

Every tool parameter is required. Pass empty strings or empty arrays for values you
do not need. Use save_tasks and load_tasks to move tasks between files, and
validate_file to inspect a file before loading it.`

// NewServer returns an MCP server exposing every tool of sess.
func NewServer(sess *Session, version string) *server.MCPServer {
	s := server.NewMCPServer("tasks", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTools(sess.Tools()...)
	return s
}

// ServeStdio serves s over the given streams until ctx is cancelled or in
// reaches EOF.
func ServeStdio(ctx context.Context, s *server.MCPServer, sess *Session, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(sess.log.StandardLog())
	sess.log.Info("serving tools over stdio", "tools", len(sess.Tools()))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
