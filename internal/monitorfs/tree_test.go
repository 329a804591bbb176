package monitorfs

import (
	"context"
	"testing"

	"cerebro/internal/config"
	"cerebro/internal/modules"
)

type fakeModule struct {
	name    string
	entries []modules.Entry
	values  map[string]string
	json    string
	shell   string
	written map[string]string
}

func (m *fakeModule) Name() string                { return m.name }
func (m *fakeModule) Start(context.Context) error { return nil }
func (m *fakeModule) Stop()                       {}
func (m *fakeModule) Running() bool               { return true }
func (m *fakeModule) Entries() []modules.Entry    { return m.entries }
func (m *fakeModule) JSON() string                { return m.json }
func (m *fakeModule) Shell() string               { return m.shell }
func (m *fakeModule) Poke()                       {}

func (m *fakeModule) Value(path string) (string, bool) {
	value, ok := m.values[path]
	if !ok {
		return modules.ValueUnknown, false
	}
	return value, true
}

func (m *fakeModule) SetValue(path string, data []byte) error {
	if m.written == nil {
		m.written = make(map[string]string)
	}
	m.written[path] = string(data)
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Modules.Memory = config.Module{Enabled: true, JSON: true, Shell: true}
	cfg.Modules.Trash = config.Module{Enabled: true}
	cfg.Modules.Battery = config.Module{Enabled: false}
	return cfg
}

func testTree(t *testing.T) (*Tree, *fakeModule, *fakeModule) {
	t.Helper()

	memory := &fakeModule{
		name: "memory",
		entries: []modules.Entry{
			{Path: "free"},
			{Path: "total"},
			{Path: "used"},
		},
		values: map[string]string{"free": "1024", "total": "2048", "used": "1024"},
		json:   `{"free":"1024","total":"2048","used":"1024"}`,
		shell:  "free=1024 total=2048 used=1024",
	}
	trash := &fakeModule{
		name: "trash",
		entries: []modules.Entry{
			{Path: "count"},
			{Path: "empty", WriteOnly: true},
		},
		values: map[string]string{"count": "3"},
	}
	battery := &fakeModule{name: "battery"}

	registry := modules.NewRegistry()
	registry.Register(memory)
	registry.Register(trash)
	registry.Register(battery)

	tree := NewTree(testConfig(), registry)
	tree.RebuildAll()
	return tree, memory, trash
}

func TestRebuildAllBuildsEnabledModules(t *testing.T) {
	tree, _, _ := testTree(t)

	if len(tree.root.children) != 2 {
		t.Fatalf("expected 2 module directories, got %d", len(tree.root.children))
	}
	if tree.root.children[0].name != "memory" || tree.root.children[1].name != "trash" {
		t.Fatalf("unexpected module order: %s, %s",
			tree.root.children[0].name, tree.root.children[1].name)
	}

	if _, ok := tree.lookupPath("/battery"); ok {
		t.Fatal("disabled module must not be served")
	}
}

func TestLookupPathResolvesEntries(t *testing.T) {
	tree, _, _ := testTree(t)

	free, ok := tree.lookupPath("/memory/free")
	if !ok {
		t.Fatal("expected /memory/free to resolve")
	}
	if free.dir || free.writeOnly {
		t.Fatalf("unexpected node flags: dir=%v writeOnly=%v", free.dir, free.writeOnly)
	}
	if got := tree.render(free); got != "1024" {
		t.Fatalf("unexpected value: %q", got)
	}

	empty, ok := tree.lookupPath("/trash/empty")
	if !ok {
		t.Fatal("expected /trash/empty to resolve")
	}
	if !empty.writeOnly {
		t.Fatal("expected trash empty entry to be write-only")
	}

	if _, ok := tree.lookupPath("/memory/missing"); ok {
		t.Fatal("unexpected resolution of a missing entry")
	}
}

func TestAggregateFilesFollowSettings(t *testing.T) {
	tree, memory, _ := testTree(t)

	jsonNode, ok := tree.lookupPath("/memory/json")
	if !ok {
		t.Fatal("expected /memory/json to exist")
	}
	if got := tree.render(jsonNode); got != memory.json {
		t.Fatalf("unexpected json content: %q", got)
	}

	shellNode, ok := tree.lookupPath("/memory/shell")
	if !ok {
		t.Fatal("expected /memory/shell to exist")
	}
	if got := tree.render(shellNode); got != memory.shell {
		t.Fatalf("unexpected shell content: %q", got)
	}

	if _, ok := tree.lookupPath("/trash/json"); ok {
		t.Fatal("json file must follow the module settings")
	}
}

func TestNestedEntriesBuildDirectories(t *testing.T) {
	cpu := &fakeModule{
		name: "cpu",
		entries: []modules.Entry{
			{Path: "logical/count"},
			{Path: "logical/0/usage_percent"},
			{Path: "logical/average/usage_percent"},
		},
		values: map[string]string{
			"logical/count":                 "1",
			"logical/0/usage_percent":       "12.50",
			"logical/average/usage_percent": "12.50",
		},
	}

	cfg := config.Default()
	cfg.Modules.CPU.Enabled = true
	registry := modules.NewRegistry()
	registry.Register(cpu)

	tree := NewTree(cfg, registry)
	tree.RebuildAll()

	logical, ok := tree.lookupPath("/cpu/logical")
	if !ok || !logical.dir {
		t.Fatal("expected /cpu/logical directory")
	}
	usage, ok := tree.lookupPath("/cpu/logical/0/usage_percent")
	if !ok {
		t.Fatal("expected nested usage entry")
	}
	if got := tree.render(usage); got != "12.50" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestRebuildModuleReplacesSubtree(t *testing.T) {
	tree, memory, _ := testTree(t)

	before, _ := tree.lookupPath("/memory")
	beforeInode := before.inode

	memory.entries = append(memory.entries, modules.Entry{Path: "cached"})
	memory.values["cached"] = "512"
	tree.RebuildModule("memory")

	after, ok := tree.lookupPath("/memory")
	if !ok {
		t.Fatal("expected /memory after rebuild")
	}
	if after.inode == beforeInode {
		t.Fatal("rebuild must issue fresh inodes")
	}
	if _, ok := tree.lookupPath("/memory/cached"); !ok {
		t.Fatal("expected new entry after rebuild")
	}

	if _, ok := tree.lookupPath("/trash/count"); !ok {
		t.Fatal("other module subtrees must survive a rebuild")
	}
}

func TestWriteRoutesToModule(t *testing.T) {
	tree, _, trash := testTree(t)

	empty, ok := tree.lookupPath("/trash/empty")
	if !ok {
		t.Fatal("expected /trash/empty")
	}
	if err := tree.write(empty, []byte("1")); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if trash.written["empty"] != "1" {
		t.Fatalf("unexpected write payload: %q", trash.written["empty"])
	}
}

func TestInodesAreUnique(t *testing.T) {
	tree, _, _ := testTree(t)

	seen := make(map[uint64]string)
	var walk func(n *node)
	walk = func(n *node) {
		if other, dup := seen[n.inode]; dup {
			t.Fatalf("inode %d reused by %q and %q", n.inode, other, n.name)
		}
		seen[n.inode] = n.name
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(tree.root)

	if tree.root.inode != rootInode {
		t.Fatalf("unexpected root inode: %d", tree.root.inode)
	}
}
