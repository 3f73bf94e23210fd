package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/deskbar/internal/event"
)

// DefaultTimeout bounds how long a request may wait for the dispatcher.
const DefaultTimeout = 5 * time.Second

// PostFunc hands a message to the dispatcher.
type PostFunc func(ctx context.Context, m event.Message) error

// Server handles IPC requests from clients. Every request becomes an
// event.Control on the dispatcher queue; the dispatcher's reply is written
// back to the client.
type Server struct {
	socketPath string
	post       PostFunc
	timeout    time.Duration
	logger     *slog.Logger

	mu           sync.Mutex
	listener     net.Listener
	shuttingDown bool
}

// NewServer creates a server listening on socketPath once served.
func NewServer(socketPath string, post PostFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		post:       post,
		timeout:    DefaultTimeout,
		logger:     logger,
	}
}

func (s *Server) String() string { return "ipc" }

// SocketPath returns the path of the listening socket.
func (s *Server) SocketPath() string { return s.socketPath }

// Serve listens until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	s.acceptLoop(ctx)
	return ctx.Err()
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.shuttingDown = false
	s.mu.Unlock()

	s.logger.Info("IPC server listening", "socket", s.socketPath)
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		s.mu.Lock()
		listener := s.listener
		s.mu.Unlock()
		if listener == nil {
			return
		}

		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			done := s.shuttingDown
			s.mu.Unlock()
			if done || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "err", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)
	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	s.write(conn, s.handleRequest(ctx, req))
}

// handleRequest forwards req to the dispatcher and waits for its answer.
func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	if !knownCommand(req.Command) {
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
	args, err := req.Args()
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply := make(chan event.ControlReply, 1)
	msg := event.Control{Command: string(req.Command), Args: args, Reply: reply}
	if err := s.post(ctx, msg); err != nil {
		return NewErrorResponse(fmt.Sprintf("shell not responding: %v", err))
	}

	select {
	case r := <-reply:
		if r.Err != nil {
			return NewErrorResponse(r.Err.Error())
		}
		resp, err := NewOKResponse(r.Data)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp
	case <-ctx.Done():
		return NewErrorResponse(fmt.Sprintf("shell not responding: %v", ctx.Err()))
	}
}

func knownCommand(c CommandType) bool {
	switch c {
	case CommandGetStatus, CommandListWindows, CommandFocusWindow, CommandLaunch,
		CommandReloadWallpaper, CommandRestack, CommandTogglePanel, CommandLogout:
		return true
	}
	return false
}

func (s *Server) write(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "err", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.mu.Lock()
	s.shuttingDown = true
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	os.Remove(s.socketPath)
}
