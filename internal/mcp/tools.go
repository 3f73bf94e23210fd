package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.shell.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		WindowCount:  st.WindowCount,
		PanelVisible: st.PanelVisible,
		Tabbing:      st.Tabbing,
		RunnerOpen:   st.RunnerOpen,
		MenuOpen:     st.MenuOpen,
		ScreenWidth:  st.ScreenWidth,
		ScreenHeight: st.ScreenHeight,
		Volume:       st.Volume,
		Muted:        st.Muted,
		Wallpaper:    st.Wallpaper,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.shell.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		out.Windows = append(out.Windows, WindowInfo{ID: w.ID, Name: w.Name, Icon: w.Icon, Active: w.Active})
	}
	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.WindowID == 0 {
		return nil, ActionOutput{}, fmt.Errorf("window_id is required")
	}
	if err := s.shell.FocusWindow(args.WindowID); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Debug("mcp focus_window", "wid", args.WindowID)
	return nil, ActionOutput{OK: true, Message: fmt.Sprintf("Focused window %d", args.WindowID)}, nil
}

func (s *Server) handleLaunchApp(_ context.Context, _ *mcpsdk.CallToolRequest, args LaunchAppInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	command := strings.TrimSpace(args.Command)
	if command == "" && !args.Terminal {
		return nil, ActionOutput{}, fmt.Errorf("command is required")
	}
	if err := s.shell.Launch(command, args.Terminal); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Debug("mcp launch_app", "command", command, "terminal", args.Terminal)
	msg := fmt.Sprintf("Launched %q", command)
	if command == "" {
		msg = "Opened a terminal"
	}
	return nil, ActionOutput{OK: true, Message: msg}, nil
}

func (s *Server) handleReloadWallpaper(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.shell.ReloadWallpaper(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "Wallpaper reload started"}, nil
}

func (s *Server) handleTogglePanel(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.shell.TogglePanel(); err != nil {
		return nil, ActionOutput{}, err
	}
	st, err := s.shell.GetStatus()
	if err != nil {
		return nil, ActionOutput{OK: true, Message: "Panel toggled"}, nil
	}
	state := "hidden"
	if st.PanelVisible {
		state = "visible"
	}
	return nil, ActionOutput{OK: true, Message: "Panel is now " + state}, nil
}
