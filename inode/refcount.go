package inode

import "sync"

// refCount is a shared reference counter with an on-zero destroy hook,
// used by FileNode to know when its pool buffer can be released: once
// neither a parent directory's children map nor any open descriptor
// refers to the file, its buffer goes back to the FileMemoryPool instead
// of leaking a slot for the lifetime of the process.
type refCount struct {
	mu      sync.Mutex
	count   uint64
	destroy func()
}

func newRefCount(destroy func()) *refCount {
	return &refCount{count: 1, destroy: destroy}
}

// Inc records a new holder (a descriptor opening the file).
func (r *refCount) Inc() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

// Dec records n holders going away. Returns true the one time the count
// reaches zero, at which point destroy has already run.
func (r *refCount) Dec(n uint64) (destroyed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.count {
		panic("refCount: Dec below zero")
	}
	r.count -= n

	if r.count == 0 {
		r.destroy()
		destroyed = true
	}
	return
}
