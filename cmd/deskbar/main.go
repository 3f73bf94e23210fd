package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/ipc"
	"github.com/1broseidon/deskbar/internal/pidfile"
	"github.com/1broseidon/deskbar/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runSession(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "launch":
		os.Exit(runLaunch(os.Args[2:]))
	case "reload-wallpaper":
		os.Exit(runSignalled("reload-wallpaper", os.Args[2:], syscall.SIGUSR1, (*ipc.Client).ReloadWallpaper))
	case "restack":
		os.Exit(runSignalled("restack", os.Args[2:], syscall.SIGUSR2, (*ipc.Client).Restack))
	case "toggle-panel":
		os.Exit(runSimple("toggle-panel", "Slide the panel off screen or back.", os.Args[2:], (*ipc.Client).TogglePanel))
	case "logout":
		os.Exit(runSimple("logout", "End the desktop session.", os.Args[2:], (*ipc.Client).Logout))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskbar <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the desktop shell (foreground)")
	fmt.Fprintln(w, "  status              Show shell status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  windows             List open windows")
	fmt.Fprintln(w, "  focus               Activate a window by id")
	fmt.Fprintln(w, "  launch              Run a command detached from the shell")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  reload-wallpaper    Re-read the wallpaper setting and fade to it")
	fmt.Fprintln(w, "  restack             Put the desktop and panel back in place")
	fmt.Fprintln(w, "  toggle-panel        Hide or show the panel")
	fmt.Fprintln(w, "  logout              End the session")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskbar <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set that takes no positional arguments. It
// returns -1 when parsing succeeded.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbar status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show shell status via IPC.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("pid:            %d\n", status.PID)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("screen:         %dx%d\n", status.ScreenWidth, status.ScreenHeight)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("panel_visible:  %v\n", status.PanelVisible)
	fmt.Printf("tabbing:        %v\n", status.Tabbing)
	fmt.Printf("runner_open:    %v\n", status.RunnerOpen)
	fmt.Printf("menu_open:      %v\n", status.MenuOpen)
	fmt.Printf("volume:         %d%%\n", status.Volume)
	fmt.Printf("muted:          %v\n", status.Muted)
	if status.Wallpaper != "" {
		fmt.Printf("wallpaper:      %s\n", status.Wallpaper)
	}
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbar windows")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List open windows in panel order. The active window is marked with '*'.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Windows) == 0 {
		fmt.Println("No windows.")
		return 0
	}

	nameWidth := 60
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 40 {
			nameWidth = width - 30
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tICON")
	for _, w := range data.Windows {
		mark := ""
		if w.Active {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", mark, w.ID, truncate(w.Name, nameWidth), w.Icon)
	}
	tw.Flush()
	return 0
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 2 {
		return s
	}
	return string(r[:max-1]) + "…"
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbar focus <window-id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Activate a window. Ids are listed by 'deskbar windows'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	id, err := strconv.ParseUint(fs.Arg(0), 0, 32)
	if err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "invalid window id %q\n", fs.Arg(0))
		return 2
	}

	if err := ipc.NewClient().FocusWindow(uint32(id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runLaunch(args []string) int {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	terminal := fs.Bool("terminal", false, "Run the command inside the configured terminal")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbar launch [--terminal] <command...>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a shell command detached from the desktop shell.")
		fmt.Fprintln(os.Stderr, "With --terminal and no command, open a plain terminal.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	command := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if command == "" && !*terminal {
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().Launch(command, *terminal); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSimple(name, summary string, args []string, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskbar %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}
	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runSignalled asks the shell over IPC and falls back to signalling the
// process named in the pid file when the socket is unavailable.
func runSignalled(name string, args []string, sig syscall.Signal, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskbar %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Equivalent to sending %s to the running shell.\n", sig)
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	ipcErr := call(ipc.NewClient())
	if ipcErr == nil {
		return 0
	}

	pid, err := shellPID()
	if err != nil {
		fmt.Fprintln(os.Stderr, ipcErr)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := syscall.Kill(pid, sig); err != nil {
		fmt.Fprintf(os.Stderr, "failed to signal pid %d: %v\n", pid, err)
		return 1
	}
	return 0
}

func shellPID() (int, error) {
	path := ""
	if cfg, err := config.Load(); err == nil {
		path = cfg.PIDFile
	}
	if path == "" {
		p, err := runtimepath.PIDPath()
		if err != nil {
			return 0, err
		}
		path = p
	}
	return pidfile.New(config.ExpandHome(path)).Alive()
}
