package addr

import (
	"github.com/mit-pdos/go-fsck/common"
)

// Addr identifies the start of an on-disk object.
//
// Blkno is the block number containing the object, and Off is the location of
// the object within the block (expressed as a bit offset). The size of the
// object is determined by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bits
}

// ByteOff is the offset of the object within its block in bytes.
func (a Addr) ByteOff() uint64 {
	return a.Off / 8
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkBitAddr locates bit n of a bitmap whose first block is start.
func MkBitAddr(start common.Bnum, n uint64) Addr {
	bit := n % common.NBITBLOCK
	i := n / common.NBITBLOCK
	addr := MkAddr(start+common.Bnum(i), bit)
	return addr
}

// MkInodeAddr locates the on-disk record of inode inum in an inode table
// whose first block is start.
func MkInodeAddr(start common.Bnum, inum common.Inum) Addr {
	blk := start + common.Bnum(uint64(inum)/common.IPB)
	off := (uint64(inum) % common.IPB) * common.INODESZ * 8
	return MkAddr(blk, off)
}

// MkDirentAddr locates directory entry slot i of directory block blkno.
func MkDirentAddr(blkno common.Bnum, i uint64) Addr {
	return MkAddr(blkno, i*common.DIRENTSZ*8)
}
