package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestBitOrder(t *testing.T) {
	assert := assert.New(t)
	data := []byte{0x01, 0x80}
	bm := MkBitmap(data, 16)
	assert.True(bm.IsSet(0), "LSB of byte 0 is block 0")
	assert.False(bm.IsSet(7))
	assert.True(bm.IsSet(15), "MSB of byte 1 is block 15")
	assert.False(bm.IsSet(8))

	bm.Set(9)
	assert.Equal(byte(0x82), data[1])
	bm.Clear(15)
	assert.Equal(byte(0x02), data[1])
}

func TestOutOfRange(t *testing.T) {
	assert := assert.New(t)
	bm := MkBitmap([]byte{0xff}, 5)
	assert.True(bm.IsSet(4))
	assert.False(bm.IsSet(5), "bits past Len read as clear")
	assert.Panics(func() { bm.Set(5) })
	assert.Panics(func() { MkBitmap([]byte{0}, 9) })
}

func TestCount(t *testing.T) {
	assert := assert.New(t)
	bm := MkBitmap([]byte{0xff, 0xff}, 12)
	assert.Equal(uint64(12), bm.Count(), "tail bits past Len are ignored")
	bm.Clear(3)
	assert.Equal(uint64(11), bm.Count())
}

func TestCountRange(t *testing.T) {
	assert := assert.New(t)
	bm := MkBitmap([]byte{0x0f, 0xff, 0x81}, 20)
	assert.Equal(uint64(4), bm.CountRange(0, 8))
	assert.Equal(uint64(2), bm.CountRange(2, 4))
	assert.Equal(uint64(10), bm.CountRange(3, 17), "unaligned ends")
	assert.Equal(uint64(9), bm.CountRange(8, 100), "clipped to Len")
	assert.Equal(uint64(0), bm.CountRange(5, 5))
	assert.Equal(bm.Count(), bm.CountRange(0, bm.Len()))
}
