package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/ipc"
	"github.com/1broseidon/deskbar/internal/launcher"
	"github.com/1broseidon/deskbar/internal/menu"
	"github.com/1broseidon/deskbar/internal/mixer"
	"github.com/1broseidon/deskbar/internal/pidfile"
	"github.com/1broseidon/deskbar/internal/runtimepath"
	"github.com/1broseidon/deskbar/internal/service"
	"github.com/1broseidon/deskbar/internal/shell"
	"github.com/1broseidon/deskbar/internal/x11"
)

const queueSize = 64

func initLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func runSession(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/deskbar/config.yaml)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbar run [--config PATH] [--log-level LEVEL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the desktop shell in the foreground. The shell exits when the")
		fmt.Fprintln(os.Stderr, "session ends (logout widget, 'deskbar logout', SIGTERM or SIGINT).")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	// A .env in the working directory may set DISPLAY or PATH for the session.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger := initLogger(level)

	queue := event.NewQueue(queueSize)

	conn, err := x11.NewConnection(queue.Post, logger)
	if err != nil {
		logger.Error("display unavailable", "err", err)
		return 1
	}

	mix, err := mixer.New(cfg.Mixer, cfg.MixerControl)
	if err != nil {
		logger.Warn("mixer unavailable, volume changes will not be applied", "err", err)
		mix = &mixer.Memory{}
	}

	desktop, desktopFile, err := config.LoadDesktopList(cfg.DesktopFile, cfg.DesktopFallback)
	if err != nil {
		if errors.Is(err, config.ErrMalformedDesktopLine) {
			logger.Error("invalid desktop list", "err", err)
			conn.Close()
			return 1
		}
		logger.Warn("no desktop icons", "err", err)
	} else {
		logger.Debug("desktop list loaded", "file", desktopFile, "icons", len(desktop))
	}

	var panelBG image.Image
	if cfg.Panel.Background != "" {
		if panelBG, err = gfx.LoadImage(cfg.Panel.Background); err != nil {
			logger.Warn("panel background not loaded", "err", err)
		}
	}

	pidPath := config.ExpandHome(cfg.PIDFile)
	if pidPath == "" {
		if pidPath, err = runtimepath.PIDPath(); err != nil {
			logger.Error("no runtime directory", "err", err)
			conn.Close()
			return 1
		}
	}
	pid := pidfile.New(pidPath)
	if other, err := pid.Alive(); err == nil && other != os.Getpid() {
		logger.Error("another shell is running", "pid", other, "pid_file", pidPath)
		conn.Close()
		return 1
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("no runtime directory", "err", err)
		conn.Close()
		return 1
	}

	opts := shell.Options{
		Config:   cfg,
		Display:  conn,
		Launcher: launcher.New(cfg.Shell, cfg.Terminal, logger),
		Mixer:    mix,
		Desktop:  desktop,
		Wallpaper: func() string {
			return config.WallpaperPath(cfg.WallpaperConf, cfg.WallpaperFallback)
		},
		PanelBackground: panelBG,
		PIDFile:         pid,
		Reap:            launcher.Reap,
		Logger:          logger,
	}
	if backend, err := menu.NewBackend(cfg.MenuBackend); err != nil {
		logger.Warn("popup menus disabled", "err", err)
	} else {
		opts.Menus = menu.NewPresenter(backend, queue.Post)
	}

	d, err := shell.New(opts)
	if err != nil {
		logger.Error("failed to create shell", "err", err)
		conn.Close()
		return 1
	}
	if err := d.Start(); err != nil {
		logger.Error("failed to start shell", "err", err)
		conn.Close()
		return 1
	}
	conn.Welcome()

	logger.Info("deskbar started",
		"menu_backend", strings.TrimSpace(cfg.MenuBackend),
		"socket", socketPath,
		"pid_file", pidPath,
	)

	super := service.NewSupervisor("deskbar", logger)
	service.Add(super, service.Dispatcher(d, queue.C()))
	service.Add(super, ipc.NewServer(socketPath, queue.PostContext, logger))
	service.Add(super, service.Signals(queue.PostContext))
	service.Add(super, service.Ticker(cfg.TickInterval, queue))
	service.Add(super, service.Blocking("x11", conn.EventLoop, conn.Close))

	err = super.Serve(context.Background())
	_ = pid.Remove()
	if err != nil && !errors.Is(err, suture.ErrTerminateSupervisorTree) && !errors.Is(err, context.Canceled) {
		logger.Error("shell stopped", "err", err)
		return 1
	}
	logger.Info("session ended")
	return 0
}
