package disk

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	goosedisk "github.com/tchajed/goose/machine/disk"
)

func writeTemp(t *testing.T, data []byte) (string, func()) {
	d, err := ioutil.TempDir("", "disk")
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(d, "img")
	if err := ioutil.WriteFile(p, data, 0444); err != nil {
		t.Fatal(err)
	}
	return p, func() { os.RemoveAll(d) }
}

func TestMapFile(t *testing.T) {
	assert := assert.New(t)
	data := make([]byte, 2*goosedisk.BlockSize+10)
	data[goosedisk.BlockSize] = 7
	p, cleanup := writeTemp(t, data)
	defer cleanup()

	d, err := MapFile(p)
	assert.Nil(err)
	defer d.Close()
	assert.Equal(uint64(2), d.Size(), "partial block is not a block")
	assert.Equal(len(data), len(d.Bytes()))
	assert.Equal(byte(7), d.Read(1)[0])
	assert.Panics(func() { d.Read(2) })
	assert.Panics(func() { d.Write(0, make([]byte, goosedisk.BlockSize)) })
}

func TestMapEmpty(t *testing.T) {
	assert := assert.New(t)
	p, cleanup := writeTemp(t, nil)
	defer cleanup()
	d, err := MapFile(p)
	assert.Nil(err)
	assert.Equal(uint64(0), d.Size())
	assert.Equal(0, len(d.Bytes()))
	d.Close()
	d.Close()
}

func TestMapMissing(t *testing.T) {
	assert := assert.New(t)
	_, err := MapFile(filepath.Join(os.TempDir(), "no-such-image-file"))
	assert.Error(err)
	oe, ok := err.(*OpenError)
	if assert.True(ok) {
		assert.Equal("open", oe.Op)
		assert.True(os.IsNotExist(oe.Err))
	}
}
