// Package bitmap is the block allocation bitmap as the filesystem writes it.
//
// Bit n lives in byte n/8 at bit position n%8, least-significant bit first:
// block 0 is data[0]&0x01, block 7 is data[0]&0x80, block 8 is data[1]&0x01.
// A set bit means allocated.
package bitmap

type Bitmap struct {
	data  []byte
	nbits uint64
}

// MkBitmap views data as a bitmap of nbits bits. data is not copied, so a
// bitmap over a read-only mapping must not be written.
func MkBitmap(data []byte, nbits uint64) *Bitmap {
	if nbits > uint64(len(data))*8 {
		panic("MkBitmap")
	}
	return &Bitmap{data: data, nbits: nbits}
}

func (bm *Bitmap) Len() uint64 {
	return bm.nbits
}

// IsSet reports whether bit n is set. Bits past Len are clear.
func (bm *Bitmap) IsSet(n uint64) bool {
	if n >= bm.nbits {
		return false
	}
	return bm.data[n/8]&(1<<(n%8)) != 0
}

func (bm *Bitmap) Set(n uint64) {
	if n >= bm.nbits {
		panic("Set")
	}
	bm.data[n/8] = bm.data[n/8] | (1 << (n % 8))
}

func (bm *Bitmap) Clear(n uint64) {
	if n >= bm.nbits {
		panic("Clear")
	}
	bm.data[n/8] = bm.data[n/8] & ^(1 << (n % 8))
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// Count returns the number of set bits in [0, Len).
func (bm *Bitmap) Count() uint64 {
	return bm.CountRange(0, bm.nbits)
}

// CountRange returns the number of set bits in [start, end), clipped to Len.
func (bm *Bitmap) CountRange(start uint64, end uint64) uint64 {
	if end > bm.nbits {
		end = bm.nbits
	}
	var n uint64
	i := start
	for ; i < end && i%8 != 0; i++ {
		if bm.IsSet(i) {
			n++
		}
	}
	for ; i+8 <= end; i += 8 {
		n += popCnt(bm.data[i/8])
	}
	for ; i < end; i++ {
		if bm.IsSet(i) {
			n++
		}
	}
	return n
}
