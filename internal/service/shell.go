package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/shell"
)

// PostFunc hands a message to the dispatcher queue.
type PostFunc func(ctx context.Context, m event.Message) error

// Dispatcher runs the shell loop over msgs. The end of the session stops
// the whole tree.
func Dispatcher(d *shell.Dispatcher, msgs <-chan event.Message) ServiceFunc {
	return NewServiceFunc("shell", func(ctx context.Context) error {
		err := d.Run(ctx, msgs)
		if errors.Is(err, shell.ErrSessionEnded) {
			return suture.ErrTerminateSupervisorTree
		}
		return err
	})
}

// Signals maps process signals to shell messages: SIGUSR1 reloads the
// wallpaper, SIGUSR2 restacks, SIGTERM and SIGINT end the session.
func Signals(post PostFunc) ServiceFunc {
	return NewServiceFunc("signals", func(ctx context.Context) error {
		ch := make(chan os.Signal, 4)
		signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(ch)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case sig := <-ch:
				if err := post(ctx, SignalMessage(sig)); err != nil {
					return err
				}
			}
		}
	})
}

// SignalMessage returns the message a signal stands for.
func SignalMessage(sig os.Signal) event.Message {
	switch sig {
	case syscall.SIGUSR1:
		return event.ReloadWallpaper{}
	case syscall.SIGUSR2:
		return event.Restack{}
	default:
		return event.SessionEnd{}
	}
}

// Ticker posts a TimerTick every interval. A tick is skipped rather than
// queued when the dispatcher is busy.
func Ticker(interval time.Duration, queue *event.Queue) ServiceFunc {
	return NewServiceFunc("ticker", func(ctx context.Context) error {
		if interval <= 0 {
			return fmt.Errorf("tick interval must be positive, got %s: %w", interval, suture.ErrDoNotRestart)
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-t.C:
				queue.TryPost(event.TimerTick{Now: now})
			}
		}
	})
}

// Blocking adapts a loop that runs until stop is called. The loop ending
// on its own, such as a lost display connection, stops the whole tree.
func Blocking(name string, run func(), stop func()) ServiceFunc {
	return NewServiceFunc(name, func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			defer close(done)
			run()
		}()
		select {
		case <-ctx.Done():
			stop()
			<-done
			return ctx.Err()
		case <-done:
			return fmt.Errorf("%s loop exited: %w", name, suture.ErrTerminateSupervisorTree)
		}
	})
}
