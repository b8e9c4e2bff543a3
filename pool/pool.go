// Package pool implements the bounded supply of pre-allocated file data
// buffers shared by every FileNode.
package pool

import "github.com/glacya/memfs/errno"

// FileMemoryPool is a bounded multi-producer/multi-consumer queue holding
// at most MaxFiles byte buffers, each pre-sized to FileMaxSize and zeroed.
// The zero value is not usable; construct with New.
type FileMemoryPool struct {
	slots       chan []byte
	fileMaxSize int64
	maxFiles    int
}

// New builds a pool with capacity maxFiles, each buffer fileMaxSize bytes
// long and zero-filled, ready for immediate Acquire calls.
func New(maxFiles int, fileMaxSize int64) *FileMemoryPool {
	p := &FileMemoryPool{
		slots:       make(chan []byte, maxFiles),
		fileMaxSize: fileMaxSize,
		maxFiles:    maxFiles,
	}
	for i := 0; i < maxFiles; i++ {
		p.slots <- make([]byte, fileMaxSize)
	}
	return p
}

// FileMaxSize returns the fixed capacity of every buffer this pool hands
// out.
func (p *FileMemoryPool) FileMaxSize() int64 {
	return p.fileMaxSize
}

// Capacity returns NUMBER_OF_MAXIMUM_FILES, the pool's total slot count.
func (p *FileMemoryPool) Capacity() int {
	return p.maxFiles
}

// InUse returns the number of buffers currently checked out.
func (p *FileMemoryPool) InUse() int {
	return p.maxFiles - len(p.slots)
}

// Acquire pops one buffer, or fails with ENOMEM if the pool is exhausted.
func (p *FileMemoryPool) Acquire() ([]byte, error) {
	select {
	case buf := <-p.slots:
		return buf, nil
	default:
		return nil, errno.ENOMEM
	}
}

// Release returns a buffer to the pool, zeroing it first so the next
// acquirer never observes a previous tenant's bytes. Called when a
// FileNode's last reference (children-map slot and all open descriptors)
// goes away; see inode.FileNode's reference counting.
func (p *FileMemoryPool) Release(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	select {
	case p.slots <- buf:
	default:
		// A buffer not originally drawn from this pool, or a double
		// release; drop it rather than block or panic.
	}
}
