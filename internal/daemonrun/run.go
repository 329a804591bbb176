package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"cerebro/internal/config"
	"cerebro/internal/daemon"
	"cerebro/internal/events"
	"cerebro/internal/history"
	"cerebro/internal/ipc"
	"cerebro/internal/logging"
	"cerebro/internal/logs"
	"cerebro/internal/modules"
	"cerebro/internal/monitorfs"
	"cerebro/internal/notifications"
	"cerebro/internal/triggers"
)

// Options configures daemon process runtime behavior.
type Options struct {
	SocketPath string
	LogLevel   string
}

// Run starts the cerebro daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.Mountpoint, 0o755); err != nil {
		return fmt.Errorf("create mountpoint: %w", err)
	}

	runID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("cerebro-%s.log", time.Now().UTC().Format("20060102T150405.000Z")))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logs.CurrentLogName, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "cerebro-*.log", Exclude: []string{logPath}},
	)

	pidPath := cfg.PIDFilePath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	triggerRules, err := triggers.Load(cfg.Paths.TriggerDir, logger)
	if err != nil {
		logger.Error("load trigger rules", logging.Error(err))
		return err
	}
	engine := triggers.NewEngine(triggerRules, logger)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg)
		if err != nil {
			logger.Error("open history store", logging.Error(err))
			return err
		}
		defer store.Close()
		if cfg.History.RetentionDays > 0 {
			retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			if pruned, pruneErr := store.Prune(signalCtx, retention); pruneErr != nil {
				logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
					logging.Error(pruneErr),
					logging.String(logging.FieldImpact, "history database may grow unbounded"),
				)
			} else if pruned > 0 {
				logger.Info("pruned old history records", logging.Int64("records", pruned))
			}
		}
	}

	notifier := notifications.NewService(cfg)

	bus := events.NewBus()
	defer bus.Close()

	var d *daemon.Daemon
	registry, err := daemon.BuildRegistry(cfg, bus, logger,
		func(change modules.Change) {
			if d != nil {
				d.HandleChange(change)
			}
		},
		func(module string, moduleErr error) {
			if d != nil {
				d.HandleModuleError(module, moduleErr)
			}
		},
	)
	if err != nil {
		logger.Error("build module registry", logging.Error(err))
		return err
	}

	filesystem := monitorfs.New(cfg, registry, logger)

	d, err = daemon.New(daemon.Options{
		Config:     cfg,
		Logger:     logger,
		Registry:   registry,
		Engine:     engine,
		Store:      store,
		Notifier:   notifier,
		Bus:        bus,
		Filesystem: filesystem,
		LogPath:    logPath,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check mountpoint availability and stale lock files"),
			logging.String(logging.FieldImpact, "monitoring filesystem is not mounted"),
		)
	}

	<-signalCtx.Done()
	logger.Info("cerebro daemon shutting down")
	if err := notifier.NotifyDaemonStopped(context.Background(), "shutdown signal received"); err != nil {
		logger.Debug("shutdown notification failed", logging.Error(err))
	}
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logs.CurrentLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
