package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/mkfs"
)

func TestRun(t *testing.T) {
	assert := assert.New(t)
	tmp, err := ioutil.TempDir("", "fsck")
	assert.Nil(err)
	defer os.RemoveAll(tmp)

	b := mkfs.NewBuilder(100, 64)
	_, err = b.MkDir(common.ROOTINUM, "d")
	assert.Nil(err)
	good := filepath.Join(tmp, "good.img")
	assert.Nil(b.WriteFile(good))

	var stderr bytes.Buffer
	assert.Nil(run([]string{good}, &stderr))
	assert.Equal("", stderr.String(), "a consistent image prints nothing")

	b.PutInode(common.ROOTINUM, inode.Dinode{Type: common.T_FILE})
	bad := filepath.Join(tmp, "bad.img")
	assert.Nil(b.WriteFile(bad))
	assert.Error(run([]string{bad}, &stderr))
	assert.Contains(stderr.String(), "ERROR: ")

	stderr.Reset()
	err = run(nil, &stderr)
	_, ok := err.(*UsageError)
	assert.True(ok)
	assert.Contains(stderr.String(), "Usage")

	stderr.Reset()
	assert.Error(run([]string{filepath.Join(tmp, "missing.img")}, &stderr))
	assert.Contains(stderr.String(), "image not found")
}
