// Package super decodes the superblock and derives the image geometry from it.
package super

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/util"
)

// SBSIZE is the encoded size of a Superblock in bytes.
const SBSIZE uint64 = 3 * 4

type Superblock struct {
	Size    uint64 // total blocks in the image
	Nblocks uint64 // data blocks
	Ninodes uint64
}

func Decode(blk []byte) Superblock {
	dec := marshal.NewDec(blk[:SBSIZE])
	sb := Superblock{}
	sb.Size = uint64(dec.GetInt32())
	sb.Nblocks = uint64(dec.GetInt32())
	sb.Ninodes = uint64(dec.GetInt32())
	return sb
}

func (sb Superblock) Encode() []byte {
	enc := marshal.NewEnc(SBSIZE)
	enc.PutInt32(uint32(sb.Size))
	enc.PutInt32(uint32(sb.Nblocks))
	enc.PutInt32(uint32(sb.Ninodes))
	return enc.Finish()
}

func (sb Superblock) String() string {
	return fmt.Sprintf("size %d nblocks %d ninodes %d", sb.Size, sb.Nblocks, sb.Ninodes)
}

// Geometry locates the regions of an image:
//
//	[ boot | super | inodes | bitmap | data ]
//	  0      1       2        ...      DataStart
type Geometry struct {
	NInodeBlocks  uint64
	NBitmapBlocks uint64
}

func (sb Superblock) Geometry() Geometry {
	return Geometry{
		NInodeBlocks:  util.RoundUp(sb.Ninodes, common.IPB),
		NBitmapBlocks: util.RoundUp(sb.Size, common.NBITBLOCK),
	}
}

func (g Geometry) InodeStart() common.Bnum {
	return common.INODESTART
}

func (g Geometry) BitmapStart() common.Bnum {
	return g.InodeStart() + common.Bnum(g.NInodeBlocks)
}

func (g Geometry) DataStart() common.Bnum {
	return g.BitmapStart() + common.Bnum(g.NBitmapBlocks)
}

func (g Geometry) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkInodeAddr(g.InodeStart(), inum)
}

func (g Geometry) BitAddr(bn common.Bnum) addr.Addr {
	return addr.MkBitAddr(g.BitmapStart(), bn)
}

// MkSuperblock lays out an image of size blocks holding ninodes inodes,
// giving every block after the metadata to the data region.
func MkSuperblock(size uint64, ninodes uint64) Superblock {
	sb := Superblock{Size: size, Ninodes: ninodes}
	start := sb.Geometry().DataStart()
	if start > size {
		panic("MkSuperblock: image too small for its metadata")
	}
	sb.Nblocks = size - start
	return sb
}

// Validate checks that the superblock describes an image that fits in
// imageBlocks blocks and whose regions are consistent with each other. The
// checker sizes its tables from these fields, so they must hold before
// anything else is read.
func (sb Superblock) Validate(imageBlocks uint64) error {
	if sb.Ninodes <= uint64(common.ROOTINUM) {
		return fmt.Errorf("%d inodes leaves no root inode", sb.Ninodes)
	}
	if sb.Size > imageBlocks {
		return fmt.Errorf("size %d blocks exceeds image of %d blocks", sb.Size, imageBlocks)
	}
	g := sb.Geometry()
	if util.SumOverflows(common.INODESTART+g.NInodeBlocks, g.NBitmapBlocks) {
		return fmt.Errorf("metadata region overflows")
	}
	start := g.DataStart()
	if start > sb.Size {
		return fmt.Errorf("first data block %d past end of image (%d blocks)", start, sb.Size)
	}
	if sb.Nblocks != sb.Size-start {
		return fmt.Errorf("nblocks %d does not match data region [%d, %d)",
			sb.Nblocks, start, sb.Size)
	}
	return nil
}
