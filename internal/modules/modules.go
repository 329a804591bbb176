package modules

import (
	"context"
	"sort"
)

// ValueUnknown is rendered for entries whose value cannot be determined.
const ValueUnknown = "?"

// ChangeKind classifies a diff between two snapshots.
type ChangeKind byte

const (
	ChangeCreate ChangeKind = 'C'
	ChangeDelete ChangeKind = 'D'
	ChangeUpdate ChangeKind = 'U'
)

// String returns the single-letter form used in trigger files.
func (k ChangeKind) String() string {
	return string(rune(k))
}

// Change describes one observed entry transition. Create and Delete carry
// empty old and new values; Update carries both.
type Change struct {
	Kind   ChangeKind
	Module string
	Path   string
	Old    string
	New    string
}

// Entry is one node of a module's filesystem subtree. WriteOnly entries
// accept writes and render nothing; Writable entries accept writes and
// still render a value.
type Entry struct {
	Path      string
	WriteOnly bool
	Writable  bool
}

// Snapshot is the result of one collection pass.
type Snapshot struct {
	// Values maps entry paths (relative to the module directory, e.g.
	// "logical/0/usage_percent") to rendered values.
	Values map[string]string
	// WriteOnly lists entry paths that accept writes and render nothing.
	WriteOnly []string
	// Writable lists entry paths from Values that also accept writes.
	Writable []string
	// JSON and Shell are the module's aggregate views.
	JSON  string
	Shell string
}

// Collector samples one subsystem.
type Collector interface {
	Name() string
	Collect(ctx context.Context) (Snapshot, error)
}

// Writer is implemented by collectors with writable entries.
type Writer interface {
	SetValue(path string, data []byte) error
}

// Watcher is implemented by collectors that can wake the poller between
// intervals, e.g. on inotify or uevent activity. Watch must return promptly
// and deliver wake signals until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, wake chan<- struct{}) error
}

// Module is the runtime surface the daemon, filesystem, and IPC layer use.
type Module interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
	Running() bool
	Entries() []Entry
	Value(path string) (string, bool)
	SetValue(path string, data []byte) error
	JSON() string
	Shell() string
	Poke()
}

func sortedPaths(values map[string]string) []string {
	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
