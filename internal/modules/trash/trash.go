// Package trash reports the number of files in the XDG trash and exposes a
// write-only empty entry that clears it.
package trash

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"

	"cerebro/internal/modules"
)

const moduleName = "trash"

// Options selects the trash location.
type Options struct {
	// Dir is the trash root holding files/ and info/. When empty it is
	// resolved from XDG_DATA_HOME, falling back to ~/.local/share/Trash.
	Dir string
}

// Collector samples the trash directory.
type Collector struct {
	dir string
}

// New builds a Collector.
func New(opts Options) (*Collector, error) {
	dir := opts.Dir
	if dir == "" {
		resolved, err := defaultTrashDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	return &Collector{dir: dir}, nil
}

func defaultTrashDir() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

func (c *Collector) Name() string { return moduleName }

type aggregate struct {
	Count string `json:"count"`
}

// Collect counts entries under the trash files directory. A missing trash
// directory counts as empty.
func (c *Collector) Collect(ctx context.Context) (modules.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return modules.Snapshot{}, err
	}

	count := 0
	filesDir := filepath.Join(c.dir, "files")
	err := filepath.WalkDir(filesDir, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path != filesDir {
			count++
		}
		return nil
	})
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("count trash entries: %w", err)
	}

	data := aggregate{Count: strconv.Itoa(count)}
	encoded, err := json.Marshal(data)
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("encode trash aggregate: %w", err)
	}

	return modules.Snapshot{
		Values:    map[string]string{"count": data.Count},
		WriteOnly: []string{"empty"},
		JSON:      string(encoded),
		Shell:     fmt.Sprintf("count=%s", data.Count),
	}, nil
}

// SetValue handles the write-only empty entry. Writing "1" or "true"
// removes the contents of files/ and info/.
func (c *Collector) SetValue(path string, data []byte) error {
	if path != "empty" {
		return modules.ErrNotWritable
	}
	switch strings.TrimSpace(string(data)) {
	case "1", "true":
	default:
		return nil
	}
	return c.Empty()
}

// Empty clears the trash.
func (c *Collector) Empty() error {
	for _, sub := range []string{"files", "info"} {
		dir := filepath.Join(c.dir, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read trash %s: %w", sub, err)
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				return fmt.Errorf("empty trash %s: %w", sub, err)
			}
		}
	}
	return nil
}

// Watch wakes the poller on inotify activity under the trash files
// directory so the count reacts immediately to deletions.
func (c *Collector) Watch(ctx context.Context, wake chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create trash watcher: %w", err)
	}

	filesDir := filepath.Join(c.dir, "files")
	if err := watcher.Add(filesDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filesDir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
