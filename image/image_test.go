package image_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/mkfs"
)

func build(t *testing.T) *mkfs.Builder {
	b := mkfs.NewBuilder(100, 64)
	if _, err := b.MkFile(common.ROOTINUM, "f", []byte("data")); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestFromDisk(t *testing.T) {
	assert := assert.New(t)
	b := build(t)
	img, err := image.FromDisk(b.Disk())
	assert.Nil(err)
	defer img.Close()

	assert.Equal(b.Super(), img.Super())
	assert.Equal(common.Bnum(4), img.DataStart())
	assert.False(img.InData(3))
	assert.True(img.InData(4))
	assert.False(img.InData(100))

	root := img.Inode(common.ROOTINUM)
	assert.True(root.IsDir())
	des := img.Dirents(root.Direct(0))
	assert.Equal("f", des[2].NameString())

	f := img.Inode(des[2].Inum)
	assert.True(f.IsFile())
	assert.Equal([]byte("data"), img.Block(f.Direct(0))[:4])
	assert.True(img.Allocated(f.Direct(0)))
	assert.True(img.Allocated(0), "boot block is allocated")
	assert.False(img.Allocated(99))
	assert.Equal(uint64(2), img.NumAllocated(img.DataStart(), 100), "root directory and f")
	assert.Equal(uint64(6), img.NumAllocated(0, 100))

	assert.Panics(func() { img.Block(100) })
	assert.Panics(func() { img.Inode(64) })
}

func TestOpen(t *testing.T) {
	assert := assert.New(t)
	tmp, err := ioutil.TempDir("", "image")
	assert.Nil(err)
	defer os.RemoveAll(tmp)
	p := filepath.Join(tmp, "fs.img")
	b := build(t)
	assert.Nil(b.WriteFile(p))

	img, err := image.Open(p)
	if !assert.Nil(err) {
		return
	}
	assert.Equal(b.Super(), img.Super())
	img.Close()
	img.Close()

	// a short or empty file is not an image
	assert.Nil(ioutil.WriteFile(p, nil, 0644))
	_, err = image.Open(p)
	ie, ok := err.(*image.Error)
	if assert.True(ok) {
		assert.Equal(image.BadSuperblock, ie.Kind)
		assert.Equal(p, ie.Path)
	}

	_, err = image.Open(filepath.Join(tmp, "nope"))
	ie, ok = err.(*image.Error)
	if assert.True(ok) {
		assert.Equal(image.OpenFailed, ie.Kind)
		assert.True(errors.Is(err, os.ErrNotExist))
	}
}

func TestIndirect(t *testing.T) {
	assert := assert.New(t)
	b := mkfs.NewBuilder(100, 64)
	big, err := b.MkFile(common.ROOTINUM, "big", make([]byte, (common.NDIRECT+1)*common.BSIZE))
	assert.Nil(err)
	img, err := image.FromBytes(b.Bytes())
	assert.Nil(err)
	ip := img.Inode(big)
	bns := img.Indirect(ip.Indirect())
	assert.Equal(int(common.NINDIRECT), len(bns))
	assert.Equal(ip.Indirect()+1, bns[0])
}
