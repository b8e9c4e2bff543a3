package inode

import (
	"sync/atomic"

	"github.com/glacya/memfs/errno"
)

// FileNode is a leaf tree node: a buffer on loan from a FileMemoryPool
// plus an atomically published logical size. Its data buffer may be
// written concurrently by independent descriptors at non-overlapping
// offsets; overlap between writers is the caller's responsibility, not
// something this type arbitrates.
type FileNode struct {
	data []byte // len(data) == FILE_MAX_SIZE; bytes beyond size are stale/zero

	// size is the logical length of the file. Published with a fetch-max
	// store on non-append writes and a plain store on append writes, read
	// with a plain load everywhere else.
	size atomic.Int64

	refs *refCount
}

func newFileNode(buf []byte, release func()) *FileNode {
	fn := &FileNode{data: buf}
	fn.refs = newRefCount(release)
	return fn
}

// IncRef records a new descriptor referring to this file.
func (fn *FileNode) IncRef() {
	fn.refs.Inc()
}

// DecRef records a descriptor (or the owning DirNode's children-map slot)
// letting go of this file. When the count reaches zero the pool buffer is
// released.
func (fn *FileNode) DecRef() {
	fn.refs.Dec(1)
}

// Size returns the current logical size.
func (fn *FileNode) Size() int64 {
	return fn.size.Load()
}

// Capacity returns FILE_MAX_SIZE, the fixed length of the backing buffer.
func (fn *FileNode) Capacity() int64 {
	return int64(len(fn.data))
}

// ReadAt copies into dst starting at offset, returning the number of
// bytes actually copied (bounded by the current size, never an error —
// EFAULT is the caller's concern, since it depends on dst's intended
// logical capacity versus what was requested, not on the file itself).
func (fn *FileNode) ReadAt(dst []byte, offset int64) int {
	size := fn.size.Load()
	if offset >= size {
		return 0
	}
	n := copy(dst, fn.data[offset:size])
	return n
}

// WriteAt implements the non-append write path: bounds-check against
// FILE_MAX_SIZE, copy at offset, then publish size as max(current, end)
// via a CAS loop (the fetch-max semantics §4.7 calls for).
func (fn *FileNode) WriteAt(src []byte, offset int64) (int, error) {
	end := offset + int64(len(src))
	if end > int64(len(fn.data)) {
		return 0, errno.EFBIG
	}

	copy(fn.data[offset:end], src)

	for {
		cur := fn.size.Load()
		if end <= cur {
			break
		}
		if fn.size.CompareAndSwap(cur, end) {
			break
		}
	}

	return len(src), nil
}

// AppendAt implements the append write path's data movement. The caller
// (Descriptor) is responsible for holding its append-latch across the
// whole load-size/AppendAt/store-offset sequence so concurrent appenders
// on the same descriptor serialize; AppendAt itself just does the bounds
// check, copy, and size store given the size the caller already loaded.
func (fn *FileNode) AppendAt(src []byte, currentSize int64) (newSize int64, err error) {
	end := currentSize + int64(len(src))
	if end > int64(len(fn.data)) {
		return 0, errno.EFBIG
	}

	copy(fn.data[currentSize:end], src)
	fn.size.Store(end)
	return end, nil
}
