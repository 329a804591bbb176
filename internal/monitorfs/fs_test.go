package monitorfs

import (
	"context"
	"testing"

	"bazil.org/fuse"

	"cerebro/internal/config"
	"cerebro/internal/modules"
)

func backlightTree(t *testing.T) (*Tree, *fakeModule) {
	t.Helper()

	backlight := &fakeModule{
		name:    "brightness",
		entries: []modules.Entry{{Path: "intel_backlight", Writable: true}},
		values:  map[string]string{"intel_backlight": "40"},
	}

	cfg := config.Default()
	cfg.Modules.Brightness = config.Module{Enabled: true}

	registry := modules.NewRegistry()
	registry.Register(backlight)

	tree := NewTree(cfg, registry)
	tree.RebuildAll()
	return tree, backlight
}

func TestFileModesFollowEntryFlags(t *testing.T) {
	tree, _, _ := testTree(t)

	free, _ := tree.lookupPath("/memory/free")
	file := &fileNode{tree: tree, node: free}
	var attr fuse.Attr
	if err := file.Attr(context.Background(), &attr); err != nil {
		t.Fatalf("Attr returned error: %v", err)
	}
	if attr.Mode != 0o444 {
		t.Fatalf("read-only entry must be 0444, got %v", attr.Mode)
	}
	if attr.Size != uint64(len("1024")) {
		t.Fatalf("unexpected size: %d", attr.Size)
	}

	empty, _ := tree.lookupPath("/trash/empty")
	file = &fileNode{tree: tree, node: empty}
	if err := file.Attr(context.Background(), &attr); err != nil {
		t.Fatalf("Attr returned error: %v", err)
	}
	if attr.Mode != 0o222 {
		t.Fatalf("write-only entry must be 0222, got %v", attr.Mode)
	}
}

func TestWritableEntryWritesThrough(t *testing.T) {
	tree, backlight := backlightTree(t)

	device, ok := tree.lookupPath("/brightness/intel_backlight")
	if !ok {
		t.Fatal("expected /brightness/intel_backlight")
	}
	if device.writeOnly || !device.writable {
		t.Fatalf("unexpected node flags: writeOnly=%v writable=%v", device.writeOnly, device.writable)
	}

	file := &fileNode{tree: tree, node: device}
	var attr fuse.Attr
	if err := file.Attr(context.Background(), &attr); err != nil {
		t.Fatalf("Attr returned error: %v", err)
	}
	if attr.Mode != 0o644 {
		t.Fatalf("writable entry must be 0644, got %v", attr.Mode)
	}

	var resp fuse.WriteResponse
	if err := file.Write(context.Background(), &fuse.WriteRequest{Data: []byte("55")}, &resp); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if resp.Size != 2 {
		t.Fatalf("unexpected write size: %d", resp.Size)
	}
	if backlight.written["intel_backlight"] != "55" {
		t.Fatalf("unexpected write payload: %q", backlight.written["intel_backlight"])
	}

	var read fuse.ReadResponse
	if err := file.Read(context.Background(), &fuse.ReadRequest{Size: 16}, &read); err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(read.Data) != "40" {
		t.Fatalf("writable entry must stay readable, got %q", read.Data)
	}
}

func TestReadOnlyEntryRejectsWrites(t *testing.T) {
	tree, _, _ := testTree(t)

	free, _ := tree.lookupPath("/memory/free")
	file := &fileNode{tree: tree, node: free}
	var resp fuse.WriteResponse
	if err := file.Write(context.Background(), &fuse.WriteRequest{Data: []byte("1")}, &resp); err != fuse.EPERM {
		t.Fatalf("expected EPERM, got %v", err)
	}
}
