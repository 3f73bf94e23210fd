package mcp

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	WindowCount  int    `json:"window_count"`
	PanelVisible bool   `json:"panel_visible"`
	Tabbing      bool   `json:"tabbing"`
	RunnerOpen   bool   `json:"runner_open"`
	MenuOpen     bool   `json:"menu_open"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	Volume       int    `json:"volume_percent"`
	Muted        bool   `json:"muted"`
	Wallpaper    string `json:"wallpaper,omitempty"`
}

// WindowInfo describes a single window.
type WindowInfo struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"Window id from list_windows"`
}

// LaunchAppInput is the input for the launch_app tool.
type LaunchAppInput struct {
	Command  string `json:"command" jsonschema:"Shell command to run"`
	Terminal bool   `json:"terminal,omitempty" jsonschema:"Run the command inside the configured terminal emulator"`
}

// ActionOutput is the output of tools that only perform an action.
type ActionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
