package monitorfs

import (
	"sort"
	"strings"
	"sync"

	"cerebro/internal/config"
	"cerebro/internal/modules"
)

const rootInode = 1

const (
	entryJSON  = "json"
	entryShell = "shell"
)

type fileKind int

const (
	fileValue fileKind = iota
	fileJSON
	fileShell
)

// node is one entry of the served tree. Directory nodes carry children;
// file nodes carry the owning module and the module-relative entry path.
type node struct {
	inode     uint64
	name      string
	dir       bool
	writeOnly bool
	writable  bool
	kind      fileKind
	module    string
	entry     string
	children  []*node
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Tree is the mutable filesystem model. Module subtrees are rebuilt in
// place when a module's entry set changes; readers hold the lock only for
// the duration of one request.
type Tree struct {
	cfg      *config.Config
	registry *modules.Registry

	mu        sync.RWMutex
	root      *node
	lastInode uint64
}

// NewTree builds an empty tree over the registry.
func NewTree(cfg *config.Config, registry *modules.Registry) *Tree {
	return &Tree{
		cfg:       cfg,
		registry:  registry,
		root:      &node{inode: rootInode, name: "/", dir: true},
		lastInode: rootInode,
	}
}

func (t *Tree) nextInode() uint64 {
	t.lastInode++
	return t.lastInode
}

// RebuildAll replaces every module subtree.
func (t *Tree) RebuildAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.root.children = nil
	for _, name := range t.registry.Names() {
		t.rebuildModuleLocked(name)
	}
}

// RebuildModule replaces one module's subtree, keeping the others intact.
func (t *Tree) RebuildModule(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rebuildModuleLocked(name)
}

func (t *Tree) rebuildModuleLocked(name string) {
	for i, c := range t.root.children {
		if c.name == name {
			t.root.children = append(t.root.children[:i], t.root.children[i+1:]...)
			break
		}
	}

	module, ok := t.registry.Get(name)
	if !ok {
		return
	}
	settings, ok := t.cfg.ModuleSettings(name)
	if !ok || !settings.Enabled {
		return
	}

	dir := &node{inode: t.nextInode(), name: name, dir: true, module: name}
	for _, entry := range module.Entries() {
		t.insertEntryLocked(dir, name, entry)
	}
	if settings.JSON {
		dir.children = append(dir.children, &node{
			inode:  t.nextInode(),
			name:   entryJSON,
			kind:   fileJSON,
			module: name,
		})
	}
	if settings.Shell {
		dir.children = append(dir.children, &node{
			inode:  t.nextInode(),
			name:   entryShell,
			kind:   fileShell,
			module: name,
		})
	}

	t.root.children = append(t.root.children, dir)
	sort.Slice(t.root.children, func(i, j int) bool {
		return t.root.children[i].name < t.root.children[j].name
	})
}

func (t *Tree) insertEntryLocked(dir *node, module string, entry modules.Entry) {
	segments := strings.Split(entry.Path, "/")
	current := dir
	for _, segment := range segments[:len(segments)-1] {
		next := current.child(segment)
		if next == nil {
			next = &node{inode: t.nextInode(), name: segment, dir: true, module: module}
			current.children = append(current.children, next)
		}
		current = next
	}

	leaf := segments[len(segments)-1]
	if current.child(leaf) != nil {
		return
	}
	current.children = append(current.children, &node{
		inode:     t.nextInode(),
		name:      leaf,
		writeOnly: entry.WriteOnly,
		writable:  entry.Writable,
		module:    module,
		entry:     entry.Path,
	})
}

// render returns the current content of a file node.
func (t *Tree) render(n *node) string {
	module, ok := t.registry.Get(n.module)
	if !ok {
		return modules.ValueUnknown
	}
	switch n.kind {
	case fileJSON:
		return module.JSON()
	case fileShell:
		return module.Shell()
	default:
		value, _ := module.Value(n.entry)
		return value
	}
}

// write routes a write to the owning module.
func (t *Tree) write(n *node, data []byte) error {
	module, ok := t.registry.Get(n.module)
	if !ok {
		return modules.ErrNotWritable
	}
	return module.SetValue(n.entry, data)
}

// lookupPath resolves a slash-separated path from the root. An empty path
// returns the root.
func (t *Tree) lookupPath(path string) (*node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	current := t.root
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		current = current.child(segment)
		if current == nil {
			return nil, false
		}
	}
	return current, true
}

// nodeCount reports the number of served nodes including the root.
func (t *Tree) nodeCount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return countNodes(t.root)
}

func countNodes(n *node) uint64 {
	total := uint64(1)
	for _, c := range n.children {
		total += countNodes(c)
	}
	return total
}
