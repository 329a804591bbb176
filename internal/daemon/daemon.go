package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cerebro/internal/config"
	"cerebro/internal/events"
	"cerebro/internal/history"
	"cerebro/internal/logging"
	"cerebro/internal/modules"
	"cerebro/internal/monitorfs"
	"cerebro/internal/notifications"
	"cerebro/internal/triggers"
)

// Options carries the daemon's collaborators. Store and Filesystem may be
// nil; history recording and mounting are skipped respectively.
type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	Registry   *modules.Registry
	Engine     *triggers.Engine
	Store      *history.Store
	Notifier   notifications.Service
	Bus        *events.Bus
	Filesystem *monitorfs.Service
	LogPath    string
}

// Daemon coordinates the monitoring services and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *modules.Registry
	engine     *triggers.Engine
	store      *history.Store
	notifier   notifications.Service
	bus        *events.Bus
	filesystem *monitorfs.Service
	logPath    string

	lockPath string
	lock     *flock.Flock

	powerMonitor *powerMonitor

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// ModuleStatus describes one module for status reporting.
type ModuleStatus struct {
	Name            string
	Enabled         bool
	Running         bool
	IntervalSeconds int
	EntryCount      int
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Mountpoint   string
	LockFilePath string
	HistoryPath  string
	TriggerCount int
	Modules      []ModuleStatus
}

// New constructs a daemon with initialized dependencies.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Registry == nil || opts.Engine == nil {
		return nil, errors.New("daemon requires config, registry, and trigger engine")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}

	lockPath := opts.Config.LockPath()
	d := &Daemon{
		cfg:        opts.Config,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		registry:   opts.Registry,
		engine:     opts.Engine,
		store:      opts.Store,
		notifier:   notifier,
		bus:        opts.Bus,
		filesystem: opts.Filesystem,
		logPath:    opts.LogPath,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	d.engine.Fired = func(trigger triggers.Trigger, path string) {
		if d.bus != nil {
			d.bus.Publish(events.Event{
				Kind:    events.KindTriggerFired,
				Trigger: trigger.Command,
				Path:    path,
			})
		}
		if err := d.notifier.NotifyTriggerFired(context.Background(), trigger.Command, path); err != nil {
			d.logger.Debug("trigger notification failed", logging.Error(err))
		}
	}
	d.engine.Failed = func(trigger triggers.Trigger, path string, cause error) {
		if err := d.notifier.NotifyTriggerFailed(context.Background(), trigger.Command, path, cause); err != nil {
			d.logger.Debug("trigger failure notification failed", logging.Error(err))
		}
	}

	d.powerMonitor = newPowerMonitor(logger, func() {
		if battery, ok := d.registry.Get("battery"); ok {
			battery.Poke()
		}
	})
	return d, nil
}

// HandleChange routes one observed metric transition into persistence and
// trigger dispatch. Module runners call this from their polling goroutines.
func (d *Daemon) HandleChange(change modules.Change) {
	if d.store != nil && d.cfg.History.Enabled {
		if err := d.store.RecordChange(context.Background(), change); err != nil {
			logging.WarnWithContext(d.logger, "history record failed", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldModule, change.Module),
				logging.String(logging.FieldImpact, "this change is missing from the history store"),
			)
		}
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	path := "/" + change.Module + "/" + change.Path
	d.engine.Dispatch(ctx, triggers.Kind(change.Kind), path, change.Old, change.New)
}

// HandleModuleError surfaces collection failures to the notifier.
func (d *Daemon) HandleModuleError(module string, err error) {
	if notifyErr := d.notifier.NotifyModuleError(context.Background(), module, err); notifyErr != nil {
		d.logger.Debug("module error notification failed", logging.Error(notifyErr))
	}
}

// Start acquires the daemon lock, starts the modules, and mounts the
// filesystem.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cerebro daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	for _, module := range d.registry.All() {
		if err := module.Start(d.ctx); err != nil {
			d.stopModules()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			_ = d.lock.Unlock()
			return fmt.Errorf("start module %s: %w", module.Name(), err)
		}
	}

	if d.filesystem != nil {
		if err := d.filesystem.Start(d.ctx, d.bus); err != nil {
			d.stopModules()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			_ = d.lock.Unlock()
			return fmt.Errorf("mount filesystem: %w", err)
		}
	}

	if err := d.powerMonitor.Start(d.ctx); err != nil {
		d.logger.Debug("power monitor unavailable", logging.Error(err))
	}

	d.running.Store(true)
	d.logger.Info("cerebro daemon started",
		logging.String("lock", d.lockPath),
		logging.String("mountpoint", d.cfg.Paths.Mountpoint),
	)
	return nil
}

// Stop stops the modules, unmounts the filesystem, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.powerMonitor.Stop()
	if d.filesystem != nil {
		if err := d.filesystem.Stop(); err != nil {
			logging.WarnWithContext(d.logger, "filesystem shutdown failed", "fuse_stop_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "mountpoint may need a manual fusermount -u"),
			)
		}
	}
	d.stopModules()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("cerebro daemon stopped")
}

func (d *Daemon) stopModules() {
	for _, module := range d.registry.All() {
		module.Stop()
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon services are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// ModuleNames lists registered modules in registration order.
func (d *Daemon) ModuleNames() []string {
	return d.registry.Names()
}

// ModuleEntries lists the current entries of one module.
func (d *Daemon) ModuleEntries(name string) ([]modules.Entry, error) {
	module, ok := d.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown module %q", name)
	}
	return module.Entries(), nil
}

// ModuleRead renders one entry value.
func (d *Daemon) ModuleRead(name, entry string) (string, error) {
	module, ok := d.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown module %q", name)
	}
	value, ok := module.Value(entry)
	if !ok {
		return "", fmt.Errorf("unknown entry %q in module %q", entry, name)
	}
	return value, nil
}

// ModuleJSON renders a module's JSON aggregate.
func (d *Daemon) ModuleJSON(name string) (string, error) {
	module, ok := d.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown module %q", name)
	}
	return module.JSON(), nil
}

// ModuleShell renders a module's shell aggregate.
func (d *Daemon) ModuleShell(name string) (string, error) {
	module, ok := d.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown module %q", name)
	}
	return module.Shell(), nil
}

// EmptyTrash routes the empty request through the trash module.
func (d *Daemon) EmptyTrash() error {
	module, ok := d.registry.Get("trash")
	if !ok {
		return errors.New("trash module is not enabled")
	}
	return module.SetValue("empty", []byte("1"))
}

// Triggers lists the loaded trigger rules.
func (d *Daemon) Triggers() []triggers.Trigger {
	return d.engine.Triggers()
}

// QueryHistory returns persisted metric transitions.
func (d *Daemon) QueryHistory(ctx context.Context, opts history.QueryOptions) ([]history.Record, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.Query(ctx, opts)
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Mountpoint:   d.cfg.Paths.Mountpoint,
		LockFilePath: d.lockPath,
		TriggerCount: len(d.engine.Triggers()),
	}
	if d.store != nil {
		status.HistoryPath = d.store.Path()
	}

	for _, name := range d.registry.Names() {
		module, _ := d.registry.Get(name)
		settings, _ := d.cfg.ModuleSettings(name)
		status.Modules = append(status.Modules, ModuleStatus{
			Name:            name,
			Enabled:         settings.Enabled,
			Running:         module.Running(),
			IntervalSeconds: settings.IntervalSeconds,
			EntryCount:      len(module.Entries()),
		})
	}
	return status
}
