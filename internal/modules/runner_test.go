package modules_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cerebro/internal/events"
	"cerebro/internal/logging"
	"cerebro/internal/modules"
)

type fakeCollector struct {
	mu        sync.Mutex
	snapshots []modules.Snapshot
	index     int
	err       error
	writes    map[string][]byte
}

func (f *fakeCollector) Name() string { return "fake" }

func (f *fakeCollector) Collect(context.Context) (modules.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return modules.Snapshot{}, f.err
	}
	snap := f.snapshots[f.index]
	if f.index < len(f.snapshots)-1 {
		f.index++
	}
	return snap, nil
}

func (f *fakeCollector) SetValue(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writes == nil {
		f.writes = map[string][]byte{}
	}
	f.writes[path] = append([]byte(nil), data...)
	return nil
}

func collectChanges(t *testing.T) (*[]modules.Change, func(modules.Change)) {
	t.Helper()
	var mu sync.Mutex
	changes := &[]modules.Change{}
	return changes, func(c modules.Change) {
		mu.Lock()
		defer mu.Unlock()
		*changes = append(*changes, c)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunnerFirstCollectionFiresCreates(t *testing.T) {
	collector := &fakeCollector{snapshots: []modules.Snapshot{
		{Values: map[string]string{"free": "100", "total": "200"}},
	}}
	changes, onChange := collectChanges(t)

	runner := modules.NewRunner(collector, modules.RunnerOptions{
		Interval: time.Hour,
		Logger:   logging.NewNop(),
		OnChange: onChange,
	})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	waitFor(t, func() bool { return len(*changes) == 2 })
	for _, change := range *changes {
		if change.Kind != modules.ChangeCreate {
			t.Fatalf("expected create change, got %+v", change)
		}
		if change.Old != "" || change.New != "" {
			t.Fatalf("create changes must carry empty values: %+v", change)
		}
	}
}

func TestRunnerDiffsUpdatesAndStructure(t *testing.T) {
	collector := &fakeCollector{snapshots: []modules.Snapshot{
		{Values: map[string]string{"0/usage": "10", "count": "1"}},
		{Values: map[string]string{"0/usage": "20", "1/usage": "30", "count": "2"}},
	}}
	changes, onChange := collectChanges(t)

	bus := events.NewBus()
	defer bus.Close()
	updated, cancel := bus.Subscribe()
	defer cancel()

	runner := modules.NewRunner(collector, modules.RunnerOptions{
		Interval: time.Hour,
		Bus:      bus,
		Logger:   logging.NewNop(),
		OnChange: onChange,
	})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	waitFor(t, func() bool { return len(*changes) == 2 })
	drainEvents(updated)

	runner.Poke()
	waitFor(t, func() bool { return len(*changes) >= 5 })

	kinds := map[string]modules.ChangeKind{}
	for _, change := range (*changes)[2:] {
		kinds[change.Path] = change.Kind
	}
	if kinds["0/usage"] != modules.ChangeUpdate {
		t.Fatalf("expected update for 0/usage, got %+v", kinds)
	}
	if kinds["1/usage"] != modules.ChangeCreate {
		t.Fatalf("expected create for 1/usage, got %+v", kinds)
	}
	if kinds["count"] != modules.ChangeUpdate {
		t.Fatalf("expected update for count, got %+v", kinds)
	}

	select {
	case event := <-updated:
		if event.Kind != events.KindModuleUpdated || event.Module != "fake" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected module updated event after structure change")
	}
}

func drainEvents(ch <-chan events.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestRunnerValueAndEntries(t *testing.T) {
	collector := &fakeCollector{snapshots: []modules.Snapshot{
		{
			Values:    map[string]string{"count": "3"},
			WriteOnly: []string{"empty"},
			JSON:      `{"count":"3"}`,
			Shell:     "count=3",
		},
	}}

	runner := modules.NewRunner(collector, modules.RunnerOptions{Interval: time.Hour, Logger: logging.NewNop()})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	waitFor(t, func() bool {
		_, ok := runner.Value("count")
		return ok
	})

	if value, ok := runner.Value("count"); !ok || value != "3" {
		t.Fatalf("unexpected value: %q ok=%v", value, ok)
	}
	if value, ok := runner.Value("missing"); ok || value != modules.ValueUnknown {
		t.Fatalf("missing entry should render %q, got %q ok=%v", modules.ValueUnknown, value, ok)
	}

	entries := runner.Entries()
	if len(entries) != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Path != "count" || entries[0].WriteOnly {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Path != "empty" || !entries[1].WriteOnly {
		t.Fatalf("unexpected write-only entry: %+v", entries[1])
	}

	if runner.JSON() != `{"count":"3"}` {
		t.Fatalf("unexpected json: %q", runner.JSON())
	}
	if runner.Shell() != "count=3" {
		t.Fatalf("unexpected shell: %q", runner.Shell())
	}
}

func TestRunnerEntriesMarkWritablePaths(t *testing.T) {
	collector := &fakeCollector{snapshots: []modules.Snapshot{
		{
			Values:   map[string]string{"intel_backlight": "40"},
			Writable: []string{"intel_backlight"},
		},
	}}

	runner := modules.NewRunner(collector, modules.RunnerOptions{Interval: time.Hour, Logger: logging.NewNop()})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	waitFor(t, func() bool { return len(runner.Entries()) == 1 })

	entry := runner.Entries()[0]
	if entry.Path != "intel_backlight" || !entry.Writable || entry.WriteOnly {
		t.Fatalf("unexpected entry flags: %+v", entry)
	}
	if value, ok := runner.Value("intel_backlight"); !ok || value != "40" {
		t.Fatalf("writable entry must stay readable, got %q ok=%v", value, ok)
	}
}

func TestRunnerSetValueRoutesToWriter(t *testing.T) {
	collector := &fakeCollector{snapshots: []modules.Snapshot{
		{Values: map[string]string{"count": "0"}, WriteOnly: []string{"empty"}},
	}}

	runner := modules.NewRunner(collector, modules.RunnerOptions{Interval: time.Hour, Logger: logging.NewNop()})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	if err := runner.SetValue("empty", []byte("1")); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	waitFor(t, func() bool {
		collector.mu.Lock()
		defer collector.mu.Unlock()
		return len(collector.writes) == 1
	})
}

type readOnlyCollector struct{}

func (readOnlyCollector) Name() string { return "ro" }
func (readOnlyCollector) Collect(context.Context) (modules.Snapshot, error) {
	return modules.Snapshot{}, nil
}

func TestRunnerSetValueWithoutWriter(t *testing.T) {
	runner := modules.NewRunner(readOnlyCollector{}, modules.RunnerOptions{Interval: time.Hour, Logger: logging.NewNop()})
	if err := runner.SetValue("x", []byte("1")); !errors.Is(err, modules.ErrNotWritable) {
		t.Fatalf("expected ErrNotWritable, got %v", err)
	}
}

func TestRunnerReportsErrors(t *testing.T) {
	collector := &fakeCollector{err: errors.New("boom")}
	var mu sync.Mutex
	var reported []string

	runner := modules.NewRunner(collector, modules.RunnerOptions{
		Interval: time.Hour,
		Logger:   logging.NewNop(),
		OnError: func(module string, err error) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, module+": "+err.Error())
		},
	})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer runner.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) > 0
	})
}

func TestRegistryOrderAndLookup(t *testing.T) {
	registry := modules.NewRegistry()
	first := modules.NewRunner(readOnlyCollector{}, modules.RunnerOptions{Logger: logging.NewNop()})
	registry.Register(first)

	if _, ok := registry.Get("ro"); !ok {
		t.Fatal("expected lookup hit")
	}
	if names := registry.Names(); len(names) != 1 || names[0] != "ro" {
		t.Fatalf("unexpected names: %v", names)
	}
	if _, ok := registry.Get("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}
