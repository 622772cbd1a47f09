// Package image is the read-only view of a filesystem image that the checks
// run against: the superblock, the derived geometry, and accessors for
// inodes, blocks and bitmap bits.
package image

import (
	"fmt"

	gdisk "github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fsck/bitmap"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/super"
	"github.com/mit-pdos/go-fsck/util"
)

type ErrKind int

const (
	OpenFailed ErrKind = iota
	StatFailed
	MapFailed
	BadSuperblock
)

func (k ErrKind) String() string {
	switch k {
	case OpenFailed:
		return "image not found"
	case StatFailed:
		return "failed to stat image"
	case MapFailed:
		return "failed to map image"
	case BadSuperblock:
		return "bad superblock"
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error is an image that could not be loaded at all.
type Error struct {
	Kind ErrKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Image struct {
	data   []byte // whole image, read-only
	sb     super.Superblock
	geom   super.Geometry
	bm     *bitmap.Bitmap
	closer func()
}

// Open maps the image at path read-only. The caller must Close it.
func Open(path string) (*Image, error) {
	d, err := disk.MapFile(path)
	if err != nil {
		kind := MapFailed
		if oe, ok := err.(*disk.OpenError); ok {
			switch oe.Op {
			case "open":
				kind = OpenFailed
			case "fstat":
				kind = StatFailed
			}
		}
		return nil, &Error{Kind: kind, Path: path, Err: err}
	}
	img, err := mkImage(d.Bytes(), d.Close)
	if err != nil {
		d.Close()
		if e, ok := err.(*Error); ok {
			e.Path = path
		}
		return nil, err
	}
	return img, nil
}

// FromDisk copies every block of d into a buffer owned by the image.
func FromDisk(d gdisk.Disk) (*Image, error) {
	if b, ok := d.(disk.Bytes); ok {
		return FromBytes(b.Bytes())
	}
	n := d.Size()
	data := make([]byte, n*common.BSIZE)
	for bn := uint64(0); bn < n; bn++ {
		copy(data[bn*common.BSIZE:], d.Read(bn))
	}
	return FromBytes(data)
}

// FromBytes views data as an image. data must not change while the image
// is in use.
func FromBytes(data []byte) (*Image, error) {
	return mkImage(data, func() {})
}

func mkImage(data []byte, closer func()) (*Image, error) {
	nblk := uint64(len(data)) / common.BSIZE
	if nblk <= common.SUPERBLK {
		return nil, &Error{Kind: BadSuperblock,
			Err: fmt.Errorf("image of %d bytes has no superblock", len(data))}
	}
	sb := super.Decode(data[common.SUPERBLK*common.BSIZE:])
	util.DPrintf(1, "superblock: %v\n", sb)
	if err := sb.Validate(nblk); err != nil {
		return nil, &Error{Kind: BadSuperblock, Err: err}
	}
	geom := sb.Geometry()
	bstart := geom.BitmapStart() * common.BSIZE
	bend := geom.DataStart() * common.BSIZE
	img := &Image{
		data:   data,
		sb:     sb,
		geom:   geom,
		bm:     bitmap.MkBitmap(data[bstart:bend], sb.Size),
		closer: closer,
	}
	util.DPrintf(1, "inode blocks %d bitmap blocks %d first data block %d\n",
		geom.NInodeBlocks, geom.NBitmapBlocks, geom.DataStart())
	return img, nil
}

// Close releases the mapping, if any. The image must not be used afterwards.
func (img *Image) Close() {
	if img.closer != nil {
		img.closer()
		img.closer = nil
	}
	img.data = nil
}

func (img *Image) Super() super.Superblock {
	return img.sb
}

func (img *Image) Geometry() super.Geometry {
	return img.geom
}

func (img *Image) NInodes() uint64 {
	return img.sb.Ninodes
}

func (img *Image) DataStart() common.Bnum {
	return img.geom.DataStart()
}

// InData reports whether bn lies in the data region.
func (img *Image) InData(bn common.Bnum) bool {
	return bn >= img.DataStart() && bn < img.sb.Size
}

// Block returns block bn. Expects bn < Super().Size.
func (img *Image) Block(bn common.Bnum) []byte {
	if bn >= img.sb.Size {
		panic(fmt.Errorf("block %d out of range", bn))
	}
	off := bn * common.BSIZE
	return img.data[off : off+common.BSIZE]
}

// Inode decodes inode inum. Expects inum < NInodes().
func (img *Image) Inode(inum common.Inum) inode.Dinode {
	if uint64(inum) >= img.sb.Ninodes {
		panic(fmt.Errorf("inode %d out of range", inum))
	}
	a := img.geom.Inum2Addr(inum)
	blk := img.Block(a.Blkno)
	return inode.Decode(blk[a.ByteOff():])
}

// Indirect decodes indirect block bn.
func (img *Image) Indirect(bn common.Bnum) []common.Bnum {
	return inode.DecodeIndirect(img.Block(bn))
}

func (img *Image) Dirents(bn common.Bnum) []dir.Dirent {
	return dir.DecodeBlock(img.Block(bn))
}

// Allocated reports the bitmap bit of block bn.
func (img *Image) Allocated(bn common.Bnum) bool {
	return img.bm.IsSet(bn)
}

// NumAllocated counts the bitmap bits set in [start, end).
func (img *Image) NumAllocated(start common.Bnum, end common.Bnum) uint64 {
	return img.bm.CountRange(start, end)
}
