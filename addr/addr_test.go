package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/common"
)

func TestBitAddr(t *testing.T) {
	assert := assert.New(t)
	a := MkBitAddr(10, 3)
	assert.Equal(common.Bnum(10), a.Blkno)
	assert.Equal(uint64(3), a.Off)

	a = MkBitAddr(10, common.NBITBLOCK+9)
	assert.Equal(common.Bnum(11), a.Blkno, "second bitmap block")
	assert.Equal(uint64(9), a.Off)
	assert.Equal(uint64(1), a.ByteOff())
}

func TestInodeAddr(t *testing.T) {
	assert := assert.New(t)
	a := MkInodeAddr(common.INODESTART, common.ROOTINUM)
	assert.Equal(common.INODESTART, a.Blkno)
	assert.Equal(common.INODESZ, a.ByteOff())

	a = MkInodeAddr(common.INODESTART, common.Inum(common.IPB+2))
	assert.Equal(common.INODESTART+1, a.Blkno)
	assert.Equal(2*common.INODESZ, a.ByteOff())
}

func TestDirentAddr(t *testing.T) {
	assert.Equal(t, 3*common.DIRENTSZ, MkDirentAddr(7, 3).ByteOff())
}
