package fsck

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
)

// ImageError is an image that could not be opened, stat'ed, mapped, or whose
// superblock cannot describe it.
type ImageError = image.Error

// Kind is a category of structural inconsistency.
type Kind int

const (
	BadInodeType Kind = iota + 1
	BadDirectAddress
	BadIndirectAddress
	AddressMarkedFreeButUsed
	AddressMarkedUsedButFree
	DuplicateDirectAddress
	DuplicateIndirectAddress
	MalformedDirectory
	UnreferencedAllocatedInode
	DanglingDirectoryReference
	LinkCountMismatch
	DuplicateDirectoryLink
	MissingRootDirectory
	CyclicDirectoryReference
	BadDirectoryEntry
)

var kindMsg = map[Kind]string{
	BadInodeType:               "bad inode",
	BadDirectAddress:           "bad direct address in inode",
	BadIndirectAddress:         "bad indirect address in inode",
	AddressMarkedFreeButUsed:   "address used by inode but marked free in bitmap",
	AddressMarkedUsedButFree:   "bitmap marks block in use but it is not in use",
	DuplicateDirectAddress:     "direct address used more than once",
	DuplicateIndirectAddress:   "indirect address used more than once",
	MalformedDirectory:         "directory not properly formatted",
	UnreferencedAllocatedInode: "inode marked use but not found in a directory",
	DanglingDirectoryReference: "inode referred to in directory but marked free",
	LinkCountMismatch:          "bad reference count for file",
	DuplicateDirectoryLink:     "directory appears more than once in file system",
	MissingRootDirectory:       "root directory does not exist",
	CyclicDirectoryReference:   "directory tree contains a cycle",
	BadDirectoryEntry:          "directory entry names an inode out of range",
}

func (k Kind) String() string {
	if m, ok := kindMsg[k]; ok {
		return m
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// CorruptionError is the first inconsistency found in an image. Inum and
// Bnum locate it when they apply; NoInum and NoBnum mark them unset.
type CorruptionError struct {
	Kind   Kind
	Inum   common.Inum
	Bnum   common.Bnum
	Detail string
}

const (
	NoInum = ^common.Inum(0)
	NoBnum = ^common.Bnum(0)
)

func (e *CorruptionError) Error() string {
	s := "ERROR: " + e.Kind.String() + "."
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

func corrupt(k Kind, inum common.Inum, bn common.Bnum, format string, a ...interface{}) *CorruptionError {
	return &CorruptionError{Kind: k, Inum: inum, Bnum: bn, Detail: fmt.Sprintf(format, a...)}
}

// KindOf returns the Kind of the CorruptionError in err's chain.
func KindOf(err error) (Kind, bool) {
	var ce *CorruptionError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
