// Package buf writes sub-block objects (an inode record, a bitmap bit, a
// directory entry) into the disk blocks that hold them. The builder uses it
// for every write it makes to an image.
package buf

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/util"
)

// A Buf holds the new contents of the object at Addr. Sz is in bits and is
// either 1 (a bitmap bit) or a whole number of bytes at a byte offset.
type Buf struct {
	Addr addr.Addr
	Sz   uint64
	Data []byte
}

func MkBuf(a addr.Addr, sz uint64, data []byte) *Buf {
	return &Buf{Addr: a, Sz: sz, Data: data}
}

// MkBufLoad returns a buf aliasing the bits of blk that a names.
func MkBufLoad(a addr.Addr, sz uint64, blk disk.Block) *Buf {
	b := &Buf{Addr: a}
	b.Load(sz, blk)
	return b
}

// installOneBit returns dst with bit taken from src.
func installOneBit(src byte, dst byte, bit uint64) byte {
	mask := byte(1) << bit
	return dst&^mask | src&mask
}

// Install copies buf into the block it belongs to.
func (buf *Buf) Install(blk disk.Block) {
	util.DPrintf(20, "%v: install %d bits\n", buf.Addr, buf.Sz)
	off := buf.Addr.Off
	switch {
	case buf.Sz == 1:
		i := off / 8
		blk[i] = installOneBit(buf.Data[0], blk[i], off%8)
	case buf.Sz%8 == 0 && off%8 == 0:
		copy(blk[off/8:], buf.Data[:buf.Sz/8])
	default:
		panic(fmt.Errorf("install: %d bits at bit %d", buf.Sz, off))
	}
}

// Load points buf at its sz bits of blk. Writes through buf.Data change blk.
func (buf *Buf) Load(sz uint64, blk disk.Block) {
	first := buf.Addr.Off / 8
	last := (buf.Addr.Off + sz - 1) / 8
	buf.Sz = sz
	buf.Data = blk[first : last+1]
}

// WriteDirect writes buf to d, reading and merging the enclosing block when
// buf covers only part of it.
func (buf *Buf) WriteDirect(d disk.Disk) {
	bn := uint64(buf.Addr.Blkno)
	if buf.Sz == common.NBITBLOCK {
		d.Write(bn, buf.Data)
		return
	}
	blk := d.Read(bn)
	buf.Install(blk)
	d.Write(bn, blk)
}

// BnumGet decodes the block number at byte offset off, as stored in an
// indirect block.
func (buf *Buf) BnumGet(off uint64) common.Bnum {
	dec := marshal.NewDec(buf.Data[off : off+common.BNUMSZ])
	return common.Bnum(dec.GetInt32())
}

func (buf *Buf) BnumPut(off uint64, v common.Bnum) {
	enc := marshal.NewEnc(common.BNUMSZ)
	enc.PutInt32(uint32(v))
	copy(buf.Data[off:off+common.BNUMSZ], enc.Finish())
}
