package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"cerebro/internal/daemon"
	"cerebro/internal/history"
	"cerebro/internal/logging"
	"cerebro/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
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
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Cerebro", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
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
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
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
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun cerebro stop"),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Mountpoint = status.Mountpoint
	resp.LockPath = status.LockFilePath
	resp.HistoryPath = status.HistoryPath
	resp.TriggerCount = status.TriggerCount
	resp.Modules = make([]ModuleStatus, 0, len(status.Modules))
	for _, module := range status.Modules {
		resp.Modules = append(resp.Modules, ModuleStatus{
			Name:            module.Name,
			Enabled:         module.Enabled,
			Running:         module.Running,
			IntervalSeconds: module.IntervalSeconds,
			EntryCount:      module.EntryCount,
		})
	}
	return nil
}

func (s *service) ModuleList(_ ModuleListRequest, resp *ModuleListResponse) error {
	resp.Names = s.daemon.ModuleNames()
	return nil
}

func (s *service) ModuleEntries(req ModuleEntriesRequest, resp *ModuleEntriesResponse) error {
	entries, err := s.daemon.ModuleEntries(req.Module)
	if err != nil {
		return err
	}
	resp.Entries = make([]ModuleEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, ModuleEntry{
			Path:      entry.Path,
			WriteOnly: entry.WriteOnly,
			Writable:  entry.Writable,
		})
	}
	return nil
}

func (s *service) ModuleRead(req ModuleReadRequest, resp *ModuleReadResponse) error {
	value, err := s.daemon.ModuleRead(req.Module, req.Entry)
	if err != nil {
		return err
	}
	resp.Value = value
	return nil
}

func (s *service) ModuleJSON(req ModuleJSONRequest, resp *ModuleJSONResponse) error {
	rendered, err := s.daemon.ModuleJSON(req.Module)
	if err != nil {
		return err
	}
	resp.JSON = rendered
	return nil
}

func (s *service) ModuleShell(req ModuleShellRequest, resp *ModuleShellResponse) error {
	rendered, err := s.daemon.ModuleShell(req.Module)
	if err != nil {
		return err
	}
	resp.Shell = rendered
	return nil
}

func (s *service) TriggerList(_ TriggerListRequest, resp *TriggerListResponse) error {
	loaded := s.daemon.Triggers()
	resp.Triggers = make([]Trigger, 0, len(loaded))
	for _, trigger := range loaded {
		resp.Triggers = append(resp.Triggers, Trigger{
			Kind:     trigger.Kind.String(),
			Path:     trigger.Path,
			Operator: string(trigger.Operator),
			Value:    trigger.Value,
			Command:  trigger.Command,
			Source:   trigger.Source,
			Line:     trigger.Line,
		})
	}
	return nil
}

func (s *service) TrashEmpty(_ TrashEmptyRequest, resp *TrashEmptyResponse) error {
	s.log().Debug("trash empty requested")
	if err := s.daemon.EmptyTrash(); err != nil {
		return err
	}
	resp.Emptied = true
	s.log().Info("trash emptied via IPC",
		logging.String(logging.FieldEventType, "trash_empty"))
	return nil
}

func (s *service) HistoryQuery(req HistoryQueryRequest, resp *HistoryQueryResponse) error {
	records, err := s.daemon.QueryHistory(s.ctx, history.QueryOptions{
		Module: req.Module,
		Entry:  req.Entry,
		Limit:  req.Limit,
	})
	if err != nil {
		return err
	}
	resp.Records = make([]HistoryRecord, 0, len(records))
	for _, record := range records {
		resp.Records = append(resp.Records, HistoryRecord{
			ID:         record.ID,
			RecordedAt: record.RecordedAt.Format(time.RFC3339),
			Module:     record.Module,
			Entry:      record.Entry,
			Kind:       record.Kind,
			Old:        record.Old,
			New:        record.New,
		})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
