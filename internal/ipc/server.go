package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"diskwatch/internal/daemon"
	"diskwatch/internal/journal"
	"diskwatch/internal/logging"
)

// Server exposes monitor control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	monitor   *daemon.Monitor
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, m *daemon.Monitor, logger *slog.Logger) (*Server, error) {
	if m == nil {
		return nil, errors.New("ipc server requires monitor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{monitor: m, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Diskwatch", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		monitor:   m,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

type service struct {
	monitor *daemon.Monitor
	logger  *slog.Logger
	ctx     context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(s.logger, "ipc")
}

func convertEntry(entry journal.Entry) ProbeEntry {
	return ProbeEntry{
		RecordedAt: entry.RecordedAt,
		Outcome:    entry.Outcome.String(),
		Code:       entry.Outcome.Code(),
		Offset:     entry.Offset,
		BytesRead:  entry.BytesRead,
		Error:      entry.Error,
		Duration:   entry.Duration,
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.monitor.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.SessionID = status.SessionID
	resp.Target = status.Target
	resp.Device = status.Device
	resp.Interval = status.Interval
	resp.Supervised = status.Supervised
	resp.WatchdogTimeout = status.WatchdogTimeout
	resp.Iterations = status.Iterations
	resp.Failures = status.Failures
	resp.ConsecutiveFailures = status.ConsecutiveFailures
	resp.LastOutcome = status.LastOutcome
	resp.LastOutcomeCode = status.LastOutcomeCode
	resp.LastError = status.LastError
	resp.LastProbeAt = status.LastProbeAt
	resp.StartedAt = status.StartedAt
	resp.LockPath = status.LockPath
	resp.JournalPath = status.JournalPath
	if status.JournalSummary != nil {
		resp.JournalTotal = status.JournalSummary.Total
		resp.JournalFailed = status.JournalSummary.Failed
	}
	if status.DiskUsage != nil {
		resp.DiskMountpoint = status.DiskUsage.Mountpoint
		resp.DiskUsedPercent = status.DiskUsage.UsedPercent
		resp.DiskFree = status.DiskUsage.Free
	}
	if status.DeviceIO != nil {
		resp.DeviceReads = status.DeviceIO.ReadCount
		resp.DeviceReadBytes = status.DeviceIO.ReadBytes
	}
	return nil
}

func (s *service) ProbeNow(_ ProbeNowRequest, resp *ProbeNowResponse) error {
	s.log().Debug("out-of-band probe requested")
	entry := s.monitor.ProbeNow(s.ctx)
	resp.Entry = convertEntry(entry)
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.monitor.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]ProbeEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, convertEntry(entry))
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.monitor.RequestStop()
	resp.Stopped = true
	s.log().Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}
