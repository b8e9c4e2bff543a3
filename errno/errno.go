// Package errno defines the closed set of error kinds that every memfs
// operation can return.
package errno

import (
	"fmt"
	"syscall"
)

// Errno is a classical POSIX error code, scoped to the kinds this
// filesystem actually raises. It implements error and is comparable with
// ==, so callers can switch on it directly.
type Errno uint32

const (
	// ENOENT: path empty, an intermediate component missing, the final
	// component missing without O_CREAT, unlink/rmdir target absent, or a
	// descriptor whose target is no longer a File.
	ENOENT Errno = iota + 1
	// EEXIST: O_CREAT|O_EXCL on an existing name; mkdir of an existing
	// name; mkdir of "/", ".", or "..".
	EEXIST
	// EBADF: close/read/write/lseek with an unknown descriptor; read on a
	// write-only descriptor; write on a read-only descriptor.
	EBADF
	// EISDIR: open of a directory; unlink of a directory; lseek whose
	// target is not a file (one of the two allowed variants).
	EISDIR
	// ENOTDIR: path traversal through a file-typed intermediate; rmdir of
	// a file; chdir to a non-directory.
	ENOTDIR
	// EFAULT: read called with a caller buffer smaller than the bytes to
	// be copied.
	EFAULT
	// EINVAL: invalid open-flag combination; rmdir of "/.".
	EINVAL
	// ENOTEMPTY: rmdir of a non-empty directory; rmdir when the last
	// component is "..".
	ENOTEMPTY
	// EBUSY: rmdir of "/".
	EBUSY
	// EFBIG: a write would exceed FILE_MAX_SIZE.
	EFBIG
	// ENOMEM: the file memory pool is exhausted at file creation.
	ENOMEM
	// PoisonedLock: an internal lock was observed in a poisoned state.
	// Go mutexes cannot actually poison, but the kind is kept so that a
	// panic recovered at an operation boundary has somewhere to go,
	// mirroring the source this system was distilled from.
	PoisonedLock
)

var names = map[Errno]string{
	ENOENT:       "ENOENT",
	EEXIST:       "EEXIST",
	EBADF:        "EBADF",
	EISDIR:       "EISDIR",
	ENOTDIR:      "ENOTDIR",
	EFAULT:       "EFAULT",
	EINVAL:       "EINVAL",
	ENOTEMPTY:    "ENOTEMPTY",
	EBUSY:        "EBUSY",
	EFBIG:        "EFBIG",
	ENOMEM:       "ENOMEM",
	PoisonedLock: "PoisonedLock",
}

var syscallEquivalents = map[Errno]syscall.Errno{
	ENOENT:    syscall.ENOENT,
	EEXIST:    syscall.EEXIST,
	EBADF:     syscall.EBADF,
	EISDIR:    syscall.EISDIR,
	ENOTDIR:   syscall.ENOTDIR,
	EFAULT:    syscall.EFAULT,
	EINVAL:    syscall.EINVAL,
	ENOTEMPTY: syscall.ENOTEMPTY,
	EBUSY:     syscall.EBUSY,
	EFBIG:     syscall.EFBIG,
	ENOMEM:    syscall.ENOMEM,
}

// Error implements the error interface.
func (e Errno) Error() string {
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("errno(%d)", uint32(e))
}

// Is reports whether target is the equivalent syscall.Errno, so that
// errors.Is(err, syscall.ENOENT) keeps working for callers that only
// know the standard library's vocabulary.
func (e Errno) Is(target error) bool {
	want, ok := syscallEquivalents[e]
	if !ok {
		return false
	}
	got, ok := target.(syscall.Errno)
	return ok && got == want
}
