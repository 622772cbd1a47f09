package super

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/common"
)

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	sb := Superblock{Size: 1000, Nblocks: 995, Ninodes: 200}
	b := sb.Encode()
	assert.Equal(int(SBSIZE), len(b))
	assert.Equal([]byte{0xe8, 0x03, 0, 0}, b[:4], "little-endian size")

	blk := make([]byte, common.BSIZE)
	copy(blk, b)
	assert.Equal(sb, Decode(blk))
}

func TestGeometry(t *testing.T) {
	assert := assert.New(t)
	sb := Superblock{Size: 1000, Ninodes: 200}
	g := sb.Geometry()
	assert.Equal(uint64(4), g.NInodeBlocks, "ceil(200/64)")
	assert.Equal(uint64(1), g.NBitmapBlocks)
	assert.Equal(common.Bnum(2), g.InodeStart())
	assert.Equal(common.Bnum(6), g.BitmapStart())
	assert.Equal(common.Bnum(7), g.DataStart())

	sb = Superblock{Size: common.NBITBLOCK + 1, Ninodes: common.IPB}
	g = sb.Geometry()
	assert.Equal(uint64(1), g.NInodeBlocks, "exact multiple of IPB")
	assert.Equal(uint64(2), g.NBitmapBlocks, "one bit past a full bitmap block")
}

func TestMkSuperblock(t *testing.T) {
	assert := assert.New(t)
	sb := MkSuperblock(1000, 200)
	assert.Equal(uint64(993), sb.Nblocks)
	assert.Nil(sb.Validate(1000))
	assert.Panics(func() { MkSuperblock(5, 200) })
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)
	good := MkSuperblock(100, 64)

	assert.Nil(good.Validate(120), "image may be longer than size")
	assert.Error(good.Validate(99), "image shorter than size")

	bad := good
	bad.Ninodes = 1
	assert.Error(bad.Validate(100), "no root inode")

	bad = good
	bad.Nblocks++
	assert.Error(bad.Validate(100), "nblocks disagrees with layout")

	bad = Superblock{Size: 3, Nblocks: 0, Ninodes: 64}
	assert.Error(bad.Validate(3), "metadata does not fit")

	bad = Superblock{Size: 100, Nblocks: 0, Ninodes: 1 << 32}
	assert.Error(bad.Validate(100))
}
