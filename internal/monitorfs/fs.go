package monitorfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"golang.org/x/sys/unix"

	"cerebro/internal/config"
	"cerebro/internal/events"
	"cerebro/internal/logging"
	"cerebro/internal/modules"
)

const attrValidity = time.Second

// Service mounts the metric tree and keeps it current while the daemon
// runs.
type Service struct {
	mountpoint string
	tree       *Tree
	logger     *slog.Logger

	mu   sync.Mutex
	conn *fuse.Conn
	done chan struct{}
	err  error
}

// New builds an unmounted Service.
func New(cfg *config.Config, registry *modules.Registry, logger *slog.Logger) *Service {
	return &Service{
		mountpoint: cfg.Paths.Mountpoint,
		tree:       NewTree(cfg, registry),
		logger:     logging.NewComponentLogger(logger, "monitorfs"),
	}
}

// Tree exposes the served tree for rebuild notifications.
func (s *Service) Tree() *Tree { return s.tree }

// Start mounts the filesystem and serves it until Stop is called. Module
// shape changes arriving on the bus rebuild the affected subtree.
func (s *Service) Start(ctx context.Context, bus *events.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	s.tree.RebuildAll()

	conn, err := fuse.Mount(s.mountpoint,
		fuse.FSName("cerebro"),
		fuse.Subtype("cerebro"),
	)
	if err != nil {
		return fmt.Errorf("mount %s: %w", s.mountpoint, err)
	}
	s.conn = conn
	s.done = make(chan struct{})

	go s.serve(conn)
	if bus != nil {
		go s.watchBus(ctx, bus)
	}

	s.logger.Info("filesystem mounted", logging.String("mountpoint", s.mountpoint))
	return nil
}

func (s *Service) serve(conn *fuse.Conn) {
	defer close(s.done)
	if err := fusefs.Serve(conn, &filesystem{tree: s.tree}); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

func (s *Service) watchBus(ctx context.Context, bus *events.Bus) {
	eventCh, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if event.Kind != events.KindModuleUpdated {
				continue
			}
			s.tree.RebuildModule(event.Module)
			s.logger.Debug("module subtree rebuilt", logging.String(logging.FieldModule, event.Module))
		}
	}
}

// Stop unmounts and waits for the serve loop to exit.
func (s *Service) Stop() error {
	s.mu.Lock()
	conn := s.conn
	done := s.done
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	if err := fuse.Unmount(s.mountpoint); err != nil {
		logging.WarnWithContext(s.logger, "unmount failed", "fuse_unmount_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "mountpoint may need a manual fusermount -u"),
		)
	}
	closeErr := conn.Close()
	<-done

	s.mu.Lock()
	serveErr := s.err
	s.mu.Unlock()

	s.logger.Info("filesystem unmounted", logging.String("mountpoint", s.mountpoint))
	if serveErr != nil {
		return serveErr
	}
	return closeErr
}

// filesystem adapts the tree to the kernel protocol.
type filesystem struct {
	tree *Tree
}

func (f *filesystem) Root() (fusefs.Node, error) {
	return &dirNode{tree: f.tree, node: f.tree.root}, nil
}

func (f *filesystem) Statfs(_ context.Context, _ *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(f.tree.cfg.Paths.DataDir, &stat); err == nil {
		resp.Blocks = stat.Blocks
		resp.Bfree = stat.Bfree
		resp.Bavail = stat.Bavail
		resp.Ffree = stat.Ffree
		resp.Bsize = uint32(stat.Bsize)
		resp.Frsize = uint32(stat.Frsize)
	} else {
		resp.Bsize = 4096
	}
	resp.Files = f.tree.nodeCount()
	resp.Namelen = 255
	return nil
}

type dirNode struct {
	tree *Tree
	node *node
}

func (d *dirNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Valid = attrValidity
	a.Inode = d.node.inode
	a.Mode = os.ModeDir | 0o555
	a.Nlink = 2
	return nil
}

func (d *dirNode) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	d.tree.mu.RLock()
	child := d.node.child(name)
	d.tree.mu.RUnlock()

	if child == nil {
		return nil, fuse.ENOENT
	}
	if child.dir {
		return &dirNode{tree: d.tree, node: child}, nil
	}
	return &fileNode{tree: d.tree, node: child}, nil
}

func (d *dirNode) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	d.tree.mu.RLock()
	defer d.tree.mu.RUnlock()

	entries := make([]fuse.Dirent, 0, len(d.node.children))
	for _, child := range d.node.children {
		direntType := fuse.DT_File
		if child.dir {
			direntType = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{
			Inode: child.inode,
			Type:  direntType,
			Name:  child.name,
		})
	}
	return entries, nil
}

type fileNode struct {
	tree *Tree
	node *node
}

func (f *fileNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Valid = attrValidity
	a.Inode = f.node.inode
	a.Nlink = 1
	a.Blocks = 1
	if f.node.writeOnly {
		a.Mode = 0o222
		return nil
	}
	a.Mode = 0o444
	if f.node.writable {
		a.Mode = 0o644
	}
	a.Size = uint64(len(f.tree.render(f.node)))
	return nil
}

// Open forces direct IO so the kernel re-reads values instead of caching
// them at their mount-time size.
func (f *fileNode) Open(_ context.Context, _ *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	resp.Flags |= fuse.OpenDirectIO
	return f, nil
}

func (f *fileNode) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if f.node.writeOnly {
		return fuse.ENOENT
	}

	value := []byte(f.tree.render(f.node))
	if req.Offset >= int64(len(value)) {
		resp.Data = nil
		return nil
	}
	end := req.Offset + int64(req.Size)
	if end > int64(len(value)) {
		end = int64(len(value))
	}
	resp.Data = value[req.Offset:end]
	return nil
}

func (f *fileNode) Write(_ context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	if !f.node.writeOnly && !f.node.writable {
		return fuse.EPERM
	}
	if err := f.tree.write(f.node, req.Data); err != nil {
		return err
	}
	resp.Size = len(req.Data)
	return nil
}

// Setattr accepts truncates from shells redirecting into write-only files.
func (f *fileNode) Setattr(ctx context.Context, _ *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return f.Attr(ctx, &resp.Attr)
}

// Fsync is a no-op; values are never buffered.
func (f *fileNode) Fsync(_ context.Context, _ *fuse.FsyncRequest) error {
	return nil
}
