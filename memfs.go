// Package memfs is an in-memory hierarchical filesystem exposing a
// POSIX-style call surface — Open, Close, Unlink, Read, Write, Lseek,
// Mkdir, Rmdir, Chdir — backed entirely by process memory and safe for
// concurrent access by many goroutines.
package memfs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/glacya/memfs/descriptor"
	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/flags"
	"github.com/glacya/memfs/inode"
	"github.com/glacya/memfs/internal/logger"
	"github.com/glacya/memfs/metrics"
	"github.com/glacya/memfs/pool"
	"github.com/glacya/memfs/resolver"
)

// lastRawSegment returns the final '/'-delimited segment of path without
// PathResolver's usual "." dropping, so Mkdir/Rmdir can detect a literal
// trailing "." or ".." before generic tokenization would erase it.
func lastRawSegment(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// Filesystem is the top-level façade: root, the current-working-directory
// reference, the descriptor table, and the memory pool.
//
// Every method is safe to call concurrently from any goroutine except
// Chdir, which mutates cwd and therefore requires the caller to provide
// exclusive access — the one carve-out the concurrency model makes.
type Filesystem struct {
	root *inode.DirNode

	// cwd is the only non-concurrency-safe field. GUARDED_BY: caller
	// discipline, not an internal lock — see Chdir.
	cwd *inode.DirNode

	descriptors *descriptor.Table
	pool        *pool.FileMemoryPool

	log     *slog.Logger
	metrics metrics.MetricHandle
}

// Option configures optional ambient dependencies at construction time.
type Option func(*Filesystem)

// WithLogger overrides the default no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(fs *Filesystem) { fs.log = l }
}

// WithMetrics overrides the default no-op MetricHandle.
func WithMetrics(m metrics.MetricHandle) Option {
	return func(fs *Filesystem) { fs.metrics = m }
}

// New constructs a Filesystem with an empty root directory and a
// FileMemoryPool of maxFiles buffers, each fileMaxSize bytes.
func New(maxFiles int, fileMaxSize int64, opts ...Option) *Filesystem {
	root := inode.NewRoot()
	fs := &Filesystem{
		root:        root,
		cwd:         root,
		descriptors: descriptor.NewTable(),
		pool:        pool.New(maxFiles, fileMaxSize),
		log:         logger.Noop(),
		metrics:     metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Open implements §4.5's open(path, flags).
func (fs *Filesystem) Open(ctx context.Context, path string, f flags.OpenFlags) (fd uint64, err error) {
	err = metrics.Observe(ctx, fs.metrics, "open", func() error {
		if cmErr := flags.CheckModeExclusive(f); cmErr != nil {
			return cmErr
		}

		parent, name, rerr := resolver.GetParent(fs.root, fs.cwd, path)
		if rerr != nil {
			return rerr
		}

		var target *inode.FileNode

		// The pool is drawn on only when the name looks vacant, so an
		// O_CREAT open of an existing file never fails ENOMEM.
		entry, exists := parent.Lookup(name)
		if f&flags.O_CREAT != 0 && !exists {
			buf, aerr := fs.pool.Acquire()
			if aerr != nil {
				fs.metrics.PoolExhaustedCount(ctx, 1)
				logger.Warning(ctx, fs.log, "pool exhausted", "path", path)
				return aerr
			}
			fs.metrics.PoolInUse(ctx, int64(fs.pool.InUse()))

			fn, created, cerr := parent.CreateFile(name, f&flags.O_EXCL != 0, buf, func() { fs.pool.Release(buf) })
			if cerr != nil {
				fs.pool.Release(buf)
				fs.metrics.PoolInUse(ctx, int64(fs.pool.InUse()))
				return cerr
			}
			if !created {
				fs.pool.Release(buf)
				fs.metrics.PoolInUse(ctx, int64(fs.pool.InUse()))
			}
			target = fn
		} else {
			if !exists {
				return errno.ENOENT
			}
			if f&flags.O_CREAT != 0 && f&flags.O_EXCL != 0 {
				return errno.EEXIST
			}
			fn, ok := entry.(*inode.FileNode)
			if !ok {
				return errno.EISDIR
			}
			target = fn
		}

		id := fs.descriptors.Open(f, target)
		fs.metrics.DescriptorsOpen(ctx, 1)
		fs.log.Debug("open", "path", path, "fd", id)
		fd = id
		return nil
	})
	return
}

// Close implements §4.5's close(fd).
func (fs *Filesystem) Close(ctx context.Context, fd uint64) error {
	return metrics.Observe(ctx, fs.metrics, "close", func() error {
		if err := fs.descriptors.Close(fd); err != nil {
			return err
		}
		fs.metrics.DescriptorsOpen(ctx, -1)
		fs.metrics.PoolInUse(ctx, int64(fs.pool.InUse()))
		fs.log.Debug("close", "fd", fd)
		return nil
	})
}

// Unlink implements §4.5's unlink(path).
func (fs *Filesystem) Unlink(ctx context.Context, path string) error {
	return metrics.Observe(ctx, fs.metrics, "unlink", func() error {
		parent, name, err := resolver.GetParent(fs.root, fs.cwd, path)
		if err != nil {
			return err
		}
		if err := parent.RemoveFile(name); err != nil {
			return err
		}
		fs.log.Debug("unlink", "path", path)
		return nil
	})
}

// Mkdir implements §4.5's mkdir(path).
func (fs *Filesystem) Mkdir(ctx context.Context, path string) error {
	return metrics.Observe(ctx, fs.metrics, "mkdir", func() error {
		if path == "/" {
			return errno.EEXIST
		}
		if last := lastRawSegment(path); last == "." || last == ".." {
			return errno.EEXIST
		}

		parent, name, viaRootSentinel, err := resolver.GetParentDetectRoot(fs.root, fs.cwd, path)
		if err != nil {
			return err
		}
		if viaRootSentinel {
			return errno.EEXIST
		}

		if _, err := parent.CreateDirectory(name); err != nil {
			return err
		}
		fs.log.Debug("mkdir", "path", path)
		return nil
	})
}

// Rmdir implements §4.5's rmdir(path).
func (fs *Filesystem) Rmdir(ctx context.Context, path string) error {
	return metrics.Observe(ctx, fs.metrics, "rmdir", func() error {
		if path == "/" {
			return errno.EBUSY
		}
		switch lastRawSegment(path) {
		case ".":
			return errno.EINVAL
		case "..":
			return errno.ENOTEMPTY
		}

		parent, name, err := resolver.GetParent(fs.root, fs.cwd, path)
		if err != nil {
			return err
		}

		if err := parent.RemoveDirectory(name); err != nil {
			return err
		}
		fs.log.Debug("rmdir", "path", path)
		return nil
	})
}

// Chdir implements §4.5's chdir(path). The caller must ensure no other
// goroutine is concurrently calling Chdir or reading cwd through another
// in-flight relative-path operation on this Filesystem.
func (fs *Filesystem) Chdir(ctx context.Context, path string) error {
	return metrics.Observe(ctx, fs.metrics, "chdir", func() error {
		if path == "" {
			return errno.ENOENT
		}
		if path == "/" {
			fs.cwd = fs.root
			return nil
		}

		entry, err := resolver.GetNode(fs.root, fs.cwd, path)
		if err != nil {
			return err
		}
		if inode.IsRootSentinel(entry) {
			fs.cwd = fs.root
			return nil
		}
		dir, ok := entry.(*inode.DirNode)
		if !ok {
			return errno.ENOTDIR
		}

		fs.cwd = dir
		fs.log.Debug("chdir", "path", path)
		return nil
	})
}

// Read implements §4.5/§4.7's read(fd, buffer, size).
func (fs *Filesystem) Read(ctx context.Context, fd uint64, buffer []byte, size int) (n int, err error) {
	err = metrics.Observe(ctx, fs.metrics, "read", func() error {
		d, derr := fs.descriptors.Get(fd)
		if derr != nil {
			return derr
		}
		got, rerr := d.Read(buffer, size)
		n = got
		return rerr
	})
	return
}

// Write implements §4.5/§4.7's write(fd, buffer, size).
func (fs *Filesystem) Write(ctx context.Context, fd uint64, buffer []byte, size int) (n int, err error) {
	err = metrics.Observe(ctx, fs.metrics, "write", func() error {
		d, derr := fs.descriptors.Get(fd)
		if derr != nil {
			return derr
		}
		got, werr := d.Write(buffer, size)
		n = got
		return werr
	})
	return
}

// Lseek implements §4.5/§4.8's lseek(fd, offset, whence).
func (fs *Filesystem) Lseek(ctx context.Context, fd uint64, offset int64, whence flags.SeekMode) (newOffset int64, err error) {
	err = metrics.Observe(ctx, fs.metrics, "lseek", func() error {
		d, derr := fs.descriptors.Get(fd)
		if derr != nil {
			return derr
		}
		off, serr := d.Lseek(offset, whence)
		newOffset = off
		return serr
	})
	return
}

// PoolStats reports the FileMemoryPool's current occupancy, for callers
// wiring their own dashboards on top of MetricHandle.
func (fs *Filesystem) PoolStats() (inUse, capacity int) {
	return fs.pool.InUse(), fs.pool.Capacity()
}
