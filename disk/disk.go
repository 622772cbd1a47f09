// Package disk maps an image file read-only and presents it as a goose
// disk.Disk.
package disk

import (
	"fmt"

	goosedisk "github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fsck/util"
)

// Bytes is implemented by disks that can expose their contents without
// copying.
type Bytes interface {
	Bytes() []byte
}

var _ goosedisk.Disk = (*MapDisk)(nil)
var _ Bytes = (*MapDisk)(nil)

// MapDisk is a file mapped PROT_READ. A trailing partial block is visible
// through Bytes but not through Read.
type MapDisk struct {
	fd        int
	data      []byte
	numBlocks uint64
}

// OpenError reports which step of mapping a file failed.
type OpenError struct {
	Op   string // "open", "fstat" or "mmap"
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// MapFile opens path read-only and maps it. The file is never opened for
// writing.
func MapFile(path string) (*MapDisk, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &OpenError{Op: "open", Path: path, Err: err}
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, &OpenError{Op: "fstat", Path: path, Err: err}
	}
	sz := uint64(stat.Size)
	d := &MapDisk{fd: fd, numBlocks: sz / goosedisk.BlockSize}
	if sz == 0 {
		// mmap rejects empty mappings
		util.DPrintf(1, "MapFile: %s is empty\n", path)
		return d, nil
	}
	data, err := unix.Mmap(fd, 0, int(sz), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		unix.Close(fd)
		return nil, &OpenError{Op: "mmap", Path: path, Err: err}
	}
	d.data = data
	util.DPrintf(1, "MapFile: %s %d bytes %d blocks\n", path, sz, d.numBlocks)
	return d, nil
}

func (d *MapDisk) Bytes() []byte {
	return d.data
}

func (d *MapDisk) ReadTo(a uint64, buf goosedisk.Block) {
	if uint64(len(buf)) != goosedisk.BlockSize {
		panic("buffer is not block-sized")
	}
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	off := a * goosedisk.BlockSize
	copy(buf, d.data[off:off+goosedisk.BlockSize])
}

func (d *MapDisk) Read(a uint64) goosedisk.Block {
	buf := make([]byte, goosedisk.BlockSize)
	d.ReadTo(a, buf)
	return buf
}

func (d *MapDisk) Write(a uint64, v goosedisk.Block) {
	panic(fmt.Errorf("write at %v to read-only disk", a))
}

func (d *MapDisk) Size() uint64 {
	return d.numBlocks
}

func (d *MapDisk) Barrier() {}

// Close unmaps the file and closes its descriptor. It is safe to call more
// than once.
func (d *MapDisk) Close() {
	if d.data != nil {
		if err := unix.Munmap(d.data); err != nil {
			util.DPrintf(0, "munmap: %v\n", err)
		}
		d.data = nil
	}
	if d.fd >= 0 {
		unix.Close(d.fd)
		d.fd = -1
	}
}
