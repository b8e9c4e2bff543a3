// Package descriptor implements open file handles: per-descriptor flags,
// a shared reference to the target FileNode, an atomic offset, and the
// append-latch that serializes appends on that one descriptor.
package descriptor

import (
	"sync"
	"sync/atomic"

	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/flags"
	"github.com/glacya/memfs/inode"
)

// Descriptor is one open handle onto a FileNode.
type Descriptor struct {
	id     uint64
	flags  flags.OpenFlags
	target *inode.FileNode

	offset atomic.Int64

	// appendMu is the append-latch: held across the whole load-size,
	// copy, store-size-and-offset sequence so two appends on this
	// descriptor never interleave. It does not serialize against other
	// descriptors on the same file — see the open question this left
	// unspecified.
	appendMu sync.Mutex
}

func newDescriptor(id uint64, f flags.OpenFlags, target *inode.FileNode) *Descriptor {
	return &Descriptor{id: id, flags: f & ^flags.O_CREAT, target: target}
}

// ID returns this descriptor's never-reused identifier.
func (d *Descriptor) ID() uint64 { return d.id }

// Offset returns the current offset, for tests and diagnostics.
func (d *Descriptor) Offset() int64 { return d.offset.Load() }

// Target returns the FileNode this descriptor refers to.
func (d *Descriptor) Target() *inode.FileNode { return d.target }

// Read implements §4.7's read(buffer, size).
func (d *Descriptor) Read(buffer []byte, size int) (int, error) {
	if !d.flags.Readable() {
		return 0, errno.EBADF
	}

	fileSize := d.target.Size()
	offset := d.offset.Load()

	effective := min64(offset+int64(size), fileSize) - offset
	if effective < 0 {
		effective = 0
	}

	if int64(len(buffer)) < effective {
		return 0, errno.EFAULT
	}

	n := d.target.ReadAt(buffer[:effective], offset)
	d.offset.Add(int64(n))
	return n, nil
}

// Write implements §4.7's write(buffer, size), dispatching to the append
// or non-append path per the descriptor's O_APPEND flag.
func (d *Descriptor) Write(buffer []byte, size int) (int, error) {
	if !d.flags.Writable() {
		return 0, errno.EBADF
	}

	w := size
	if len(buffer) < w {
		w = len(buffer)
	}
	src := buffer[:w]

	if d.flags.Append() {
		return d.appendWrite(src)
	}
	return d.nonAppendWrite(src)
}

func (d *Descriptor) appendWrite(src []byte) (int, error) {
	d.appendMu.Lock()
	defer d.appendMu.Unlock()

	currentSize := d.target.Size()
	newSize, err := d.target.AppendAt(src, currentSize)
	if err != nil {
		return 0, err
	}
	d.offset.Store(newSize)
	return len(src), nil
}

func (d *Descriptor) nonAppendWrite(src []byte) (int, error) {
	offset := d.offset.Load()
	n, err := d.target.WriteAt(src, offset)
	if err != nil {
		return 0, err
	}
	d.offset.Store(offset + int64(n))
	return n, nil
}

// Lseek implements §4.8.
func (d *Descriptor) Lseek(offset int64, whence flags.SeekMode) (int64, error) {
	size := d.target.Size()

	var base int64
	switch whence {
	case flags.SEEK_SET:
		base = 0
	case flags.SEEK_CUR:
		base = d.offset.Load()
	case flags.SEEK_END:
		base = size
	default:
		return 0, errno.EINVAL
	}

	newOffset := min64(size, base+offset)
	if newOffset < 0 {
		newOffset = 0
	}
	d.offset.Store(newOffset)
	return newOffset, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
