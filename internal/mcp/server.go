// Package mcp exposes the running shell to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskbar/internal/ipc"
)

const (
	ServerName    = "deskbar"
	ServerVersion = "0.1.0"
)

// Shell is the control surface of a running shell. *ipc.Client implements
// it.
type Shell interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	FocusWindow(id uint32) error
	Launch(command string, terminal bool) error
	ReloadWallpaper() error
	TogglePanel() error
}

// Server is the MCP server for desktop control.
type Server struct {
	mcpServer *mcpsdk.Server
	shell     Shell
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls to shell.
func NewServer(shell Shell, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{shell: shell, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the desktop shell's state: window count, panel visibility, open overlays, screen size, volume and current wallpaper.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the open application windows in panel order (by name, then id), with the active window flagged.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Activate a window by the id returned from list_windows.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "launch_app",
		Description: "Run a shell command detached from the desktop shell, optionally inside the configured terminal.",
	}, s.handleLaunchApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_wallpaper",
		Description: "Re-read the wallpaper setting and cross-fade to it.",
	}, s.handleReloadWallpaper)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_panel",
		Description: "Slide the top panel off screen, or back if it is hidden.",
	}, s.handleTogglePanel)
}
