package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
)

// ReloadFunc re-reads configuration and applies it to the running daemon.
type ReloadFunc func(ctx context.Context) error

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	exec       *ops.Executor
	mgr        *engine.Manager
	reload     ReloadFunc
	configPath string
	startTime  time.Time

	ctx          context.Context
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. reload may be nil, in which case
// RELOAD is rejected.
func NewServer(socketPath string, exec *ops.Executor, mgr *engine.Manager, reload ReloadFunc) *Server {
	return &Server{
		socketPath: socketPath,
		exec:       exec,
		mgr:        mgr,
		reload:     reload,
		startTime:  time.Now(),
	}
}

// SetConfigPath records the config file reported by GET_STATUS.
func (s *Server) SetConfigPath(path string) { s.configPath = path }

// SocketPath is where the server listens.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections. Requests run with ctx, which
// also carries the logger.
func (s *Server) Start(ctx context.Context) error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener
	s.ctx = ctx

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	logger.FromContext(ctx).Info("IPC server listening", zap.String("socket", s.socketPath))

	go s.acceptLoop()

	return nil
}

// Serve starts the server and blocks until ctx ends, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	log := logger.FromContext(s.ctx)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("IPC accept error", zap.Error(err))
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	log := logger.FromContext(s.ctx)

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Warn("IPC read error", zap.Error(err))
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(s.ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Error("failed to marshal response", zap.Error(err))
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Warn("failed to send response", zap.Error(err))
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors(ctx, req.Payload)
	case CommandExec:
		return s.handleExec(ctx, req.Payload)
	default:
		return NewErrorResponse(int(engine.StatusFailure), fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	log := logger.FromContext(ctx)
	log.Info("IPC: received RELOAD")

	if s.reload == nil {
		return NewErrorResponse(int(engine.StatusFailure), "reload is not supported")
	}
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(int(engine.StatusFailure), fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Info("IPC: config reloaded")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
		Displays:      s.mgr.Displays(),
		ConfigPath:    s.configPath,
		Ops:           s.exec.Ops(),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors(ctx context.Context, payload json.RawMessage) *Response {
	var req MonitorsPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(int(engine.StatusFailure), fmt.Sprintf("Invalid monitors payload: %v", err))
		}
	}

	res := s.exec.Execute(ctx, ops.Request{Op: ops.QueryMonitors, Display: req.Display})
	if !res.OK() {
		return NewErrorResponse(res.Code, fmt.Sprintf("Failed to get monitors: %s", res.Error))
	}

	monitors := res.Monitors
	if monitors == nil {
		monitors = []ops.MonitorInfo{}
	}
	resp, _ := NewOKResponse(monitors)
	return resp
}

// handleExec runs one operation. The result travels in Data for both
// outcomes so clients can read the status fields.
func (s *Server) handleExec(ctx context.Context, payload json.RawMessage) *Response {
	var req ops.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(int(engine.StatusFailure), fmt.Sprintf("Invalid exec payload: %v", err))
	}

	res := s.exec.Execute(ctx, req)
	data, err := json.Marshal(res)
	if err != nil {
		return NewErrorResponse(int(engine.StatusFailure), fmt.Sprintf("failed to marshal result: %v", err))
	}

	resp := &Response{Status: StatusOK, Code: res.Code, Data: data}
	if !res.OK() {
		resp.Status = StatusError
		resp.Error = res.Error
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(int(engine.StatusFailure), errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop shuts down the listener, waits for in-flight requests and removes
// the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
