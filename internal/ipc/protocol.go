package ipc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandListWindows     CommandType = "LIST_WINDOWS"
	CommandFocusWindow     CommandType = "FOCUS_WINDOW"
	CommandLaunch          CommandType = "LAUNCH"
	CommandReloadWallpaper CommandType = "RELOAD_WALLPAPER"
	CommandRestack         CommandType = "RESTACK"
	CommandTogglePanel     CommandType = "TOGGLE_PANEL"
	CommandLogout          CommandType = "LOGOUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WindowCount   int    `json:"window_count"`
	PanelVisible  bool   `json:"panel_visible"`
	Tabbing       bool   `json:"tabbing"`
	RunnerOpen    bool   `json:"runner_open"`
	MenuOpen      bool   `json:"menu_open"`
	ScreenWidth   int    `json:"screen_width"`
	ScreenHeight  int    `json:"screen_height"`
	Volume        int    `json:"volume_percent"`
	Muted         bool   `json:"muted"`
	Wallpaper     string `json:"wallpaper,omitempty"`
}

// WindowInfo describes one application window.
type WindowInfo struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

// WindowsData represents the data returned by LIST_WINDOWS. Windows are in
// panel order.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// FocusWindowPayload represents the payload for FOCUS_WINDOW
type FocusWindowPayload struct {
	WindowID uint32 `json:"window_id"`
}

// LaunchPayload represents the payload for LAUNCH
type LaunchPayload struct {
	Command  string `json:"command"`
	Terminal bool   `json:"terminal,omitempty"`
}

// Argument names carried from payloads into control messages.
const (
	ArgWindowID = "window_id"
	ArgCommand  = "command"
	ArgTerminal = "terminal"
)

// Args flattens a request payload into control message arguments.
func (r *Request) Args() (map[string]string, error) {
	args := map[string]string{}
	switch r.Command {
	case CommandFocusWindow:
		var p FocusWindowPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", r.Command, err)
		}
		args[ArgWindowID] = strconv.FormatUint(uint64(p.WindowID), 10)
	case CommandLaunch:
		var p LaunchPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", r.Command, err)
		}
		args[ArgCommand] = p.Command
		args[ArgTerminal] = strconv.FormatBool(p.Terminal)
	}
	return args, nil
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
