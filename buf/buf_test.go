package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
)

func TestInstallOneBit(t *testing.T) {
	assert.Equal(t, byte(0x10), installOneBit(byte(0x10), byte(0x0), 4))
	assert.Equal(t, byte(0x0F), installOneBit(byte(0x0), byte(0x1F), 4))
	assert.Equal(t, byte(0x1F), installOneBit(byte(0xFF), byte(0x1F), 4),
		"already equal")
}

func TestInstallBit(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	b := MkBuf(addr.MkBitAddr(0, 10), 1, []byte{1 << 2})
	b.Install(blk)
	assert.Equal(byte(1<<2), blk[1], "bit 10 is bit 2 of byte 1")

	b = MkBuf(addr.MkBitAddr(0, 10), 1, []byte{0})
	b.Install(blk)
	assert.Equal(byte(0), blk[1])

	blk[1] = 0xff
	MkBuf(addr.MkBitAddr(0, 9), 1, []byte{0}).Install(blk)
	assert.Equal(byte(0xfd), blk[1], "neighboring bits kept")
}

func TestInstallRecord(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	rec := []byte{1, 2, 3, 4}
	b := MkBuf(addr.MkAddr(0, 16*8), 32, rec)
	b.Install(blk)
	assert.Equal(rec, blk[16:20])

	assert.Panics(func() { MkBuf(addr.MkAddr(0, 3), 16, rec).Install(blk) })
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	blk[common.INODESZ] = 9
	b := MkBufLoad(addr.MkInodeAddr(0, 1), common.INODESZ*8, blk)
	assert.Equal(int(common.INODESZ), len(b.Data))
	assert.Equal(byte(9), b.Data[0])
}

func TestWriteDirect(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(4)
	blk := make(disk.Block, disk.BlockSize)
	blk[0] = 0xaa
	d.Write(2, blk)

	b := MkBuf(addr.MkAddr(2, 8*8), 16, []byte{5, 6})
	b.WriteDirect(d)
	got := d.Read(2)
	assert.Equal(byte(0xaa), got[0], "rest of block preserved")
	assert.Equal([]byte{5, 6}, got[8:10])

	full := MkBuf(addr.MkAddr(3, 0), common.NBITBLOCK, make([]byte, disk.BlockSize))
	full.Data[100] = 1
	full.WriteDirect(d)
	assert.Equal(byte(1), d.Read(3)[100])
}

func TestBnum(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	b := MkBuf(addr.MkAddr(0, 0), common.NBITBLOCK, blk)
	b.BnumPut(8, 300)
	assert.Equal(common.Bnum(300), b.BnumGet(8))
	assert.Equal([]byte{0x2c, 0x01, 0, 0}, blk[8:12])
}
