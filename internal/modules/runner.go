package modules

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cerebro/internal/events"
	"cerebro/internal/logging"
)

// ErrNotWritable is returned when a write reaches an entry that does not
// accept one.
var ErrNotWritable = errors.New("entry is not writable")

// RunnerOptions wires a Runner into the daemon.
type RunnerOptions struct {
	Interval time.Duration
	Bus      *events.Bus
	Logger   *slog.Logger
	// OnChange receives every observed entry transition. Called from the
	// polling goroutine; implementations must not block for long.
	OnChange func(Change)
	// OnError receives collection failures. The poller keeps running.
	OnError func(module string, err error)
}

// Runner drives a Collector on an interval and diffs its snapshots.
type Runner struct {
	collector Collector
	interval  time.Duration
	bus       *events.Bus
	logger    *slog.Logger
	onChange  func(Change)
	onError   func(string, error)

	mu        sync.RWMutex
	snapshot  Snapshot
	collected bool

	running atomic.Bool
	cancel  context.CancelFunc
	wake    chan struct{}
	done    chan struct{}
}

// NewRunner wraps the collector with a polling loop.
func NewRunner(collector Collector, opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		collector: collector,
		interval:  interval,
		bus:       opts.Bus,
		logger:    logging.NewComponentLogger(opts.Logger, collector.Name()),
		onChange:  opts.OnChange,
		onError:   opts.OnError,
		wake:      make(chan struct{}, 1),
	}
}

func (r *Runner) Name() string { return r.collector.Name() }

// Start launches the polling goroutine. The first collection happens
// immediately so the filesystem has data before the first interval elapses.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	if watcher, ok := r.collector.(Watcher); ok {
		if err := watcher.Watch(runCtx, r.wake); err != nil {
			logging.WarnWithContext(r.logger, "watch unavailable; falling back to interval polling", "module_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes surface on the next poll instead of immediately"),
			)
		}
	}

	go r.loop(runCtx)
	r.logger.Info("module started", logging.Duration("interval", r.interval))
	return nil
}

// Stop halts the polling goroutine and waits for it to exit.
func (r *Runner) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.done != nil {
		<-r.done
	}
	r.logger.Info("module stopped")
}

func (r *Runner) Running() bool { return r.running.Load() }

// Poke requests an immediate collection outside the regular interval.
func (r *Runner) Poke() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.collect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.collect(ctx)
		case <-r.wake:
			r.collect(ctx)
		}
	}
}

func (r *Runner) collect(ctx context.Context) {
	snapshot, err := r.collector.Collect(ctx)
	if err != nil {
		logging.ErrorWithContext(r.logger, "collection failed", "module_collect_failed",
			logging.Error(err),
			logging.String(logging.FieldModule, r.collector.Name()),
		)
		if r.onError != nil {
			r.onError(r.collector.Name(), err)
		}
		return
	}
	if snapshot.Values == nil {
		snapshot.Values = map[string]string{}
	}

	r.mu.Lock()
	previous := r.snapshot
	first := !r.collected
	r.snapshot = snapshot
	r.collected = true
	r.mu.Unlock()

	changes, shapeChanged := diffSnapshots(r.collector.Name(), previous.Values, snapshot.Values, first)
	for _, change := range changes {
		if r.onChange != nil {
			r.onChange(change)
		}
	}

	if shapeChanged && r.bus != nil {
		r.bus.Publish(events.Event{Kind: events.KindModuleUpdated, Module: r.collector.Name()})
	}
}

// diffSnapshots computes entry transitions between two collections. Create
// and Delete changes carry empty values, so only any-value trigger
// conditions can react to them; the set of paths changing at all marks the
// snapshot shape as changed.
func diffSnapshots(module string, old, new map[string]string, first bool) ([]Change, bool) {
	var changes []Change
	shapeChanged := false

	for _, path := range sortedPaths(old) {
		if _, ok := new[path]; !ok {
			changes = append(changes, Change{Kind: ChangeDelete, Module: module, Path: path})
			shapeChanged = true
		}
	}

	for _, path := range sortedPaths(new) {
		oldValue, existed := old[path]
		if !existed {
			changes = append(changes, Change{Kind: ChangeCreate, Module: module, Path: path})
			if !first {
				shapeChanged = true
			}
			continue
		}
		if newValue := new[path]; newValue != oldValue {
			changes = append(changes, Change{Kind: ChangeUpdate, Module: module, Path: path, Old: oldValue, New: newValue})
		}
	}

	if first && len(new) > 0 {
		shapeChanged = true
	}
	return changes, shapeChanged
}

// Entries returns the current subtree, readable entries first, sorted by path.
func (r *Runner) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	writable := make(map[string]struct{}, len(r.snapshot.Writable))
	for _, path := range r.snapshot.Writable {
		writable[path] = struct{}{}
	}

	entries := make([]Entry, 0, len(r.snapshot.Values)+len(r.snapshot.WriteOnly))
	for _, path := range sortedPaths(r.snapshot.Values) {
		_, ok := writable[path]
		entries = append(entries, Entry{Path: path, Writable: ok})
	}
	for _, path := range r.snapshot.WriteOnly {
		entries = append(entries, Entry{Path: path, WriteOnly: true})
	}
	return entries
}

// Value renders one entry. The second return reports whether the path exists.
func (r *Runner) Value(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.snapshot.Values[path]
	if !ok {
		return ValueUnknown, false
	}
	return value, true
}

// SetValue routes a write to the collector and schedules a refresh.
func (r *Runner) SetValue(path string, data []byte) error {
	writer, ok := r.collector.(Writer)
	if !ok {
		return ErrNotWritable
	}
	if err := writer.SetValue(path, data); err != nil {
		return err
	}
	r.Poke()
	return nil
}

func (r *Runner) JSON() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.collected || r.snapshot.JSON == "" {
		return ValueUnknown
	}
	return r.snapshot.JSON
}

func (r *Runner) Shell() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.collected || r.snapshot.Shell == "" {
		return ValueUnknown
	}
	return r.snapshot.Shell
}
