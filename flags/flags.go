// Package flags defines the OpenFlags bitfield and SeekMode enumeration
// shared by every memfs operation.
package flags

import "github.com/glacya/memfs/errno"

// OpenFlags is a bitfield passed to Open.
type OpenFlags uint32

const (
	O_RDONLY OpenFlags = 1 << iota
	O_WRONLY
	O_RDWR
	O_CREAT
	O_EXCL
	O_APPEND
)

const accessModeMask = O_RDONLY | O_WRONLY | O_RDWR

// CheckModeExclusive implements check_mode_exclusiveness: exactly one of
// the three access-mode bits must be set. This check runs unconditionally,
// even for flag combinations that only ever specify O_CREAT|O_EXCL.
func CheckModeExclusive(f OpenFlags) error {
	mode := f & accessModeMask
	switch mode {
	case O_RDONLY, O_WRONLY, O_RDWR:
		return nil
	default:
		return errno.EINVAL
	}
}

// Readable reports whether f permits read().
func (f OpenFlags) Readable() bool {
	return f&O_WRONLY == 0
}

// Writable reports whether f permits write().
func (f OpenFlags) Writable() bool {
	return f&O_RDONLY == 0
}

// Append reports whether writes should go through the append path.
func (f OpenFlags) Append() bool {
	return f&O_APPEND != 0
}

// SeekMode selects the origin for Lseek.
type SeekMode int

const (
	SEEK_SET SeekMode = iota
	SEEK_CUR
	SEEK_END
)
