package alloc

import (
	"github.com/mit-pdos/go-fsck/bitmap"
	"github.com/mit-pdos/go-fsck/util"
)

// Alloc hands out numbers in [start, start+len) using a bitmap. The builder
// uses one for data blocks and one for inodes; numbers are absolute bit
// positions in the bitmap.
type Alloc struct {
	bm    *bitmap.Bitmap
	start uint64
	len   uint64
	next  uint64 // first number to try, relative to start
}

func MkAlloc(bm *bitmap.Bitmap, start uint64, len uint64) *Alloc {
	if start+len > bm.Len() {
		panic("MkAlloc")
	}
	a := &Alloc{
		bm:    bm,
		start: start,
		len:   len,
		next:  0,
	}
	return a
}

func (a *Alloc) incNext() uint64 {
	a.next = a.next + 1
	if a.next >= a.len {
		a.next = 0
	}
	return a.next
}

// Returns a free number, already marked used
func (a *Alloc) findFreeBit() (uint64, bool) {
	num := a.next
	start := num
	for {
		n := a.start + num
		util.DPrintf(10, "findFreeBit: s %d num %d\n", start, n)
		if !a.bm.IsSet(n) {
			a.bm.Set(n)
			a.incNext()
			return n, true
		}
		num = a.incNext()
		if num == start {
			return 0, false
		}
	}
}

// AllocNum returns a free number and marks it used. It reports false when
// the range is exhausted.
func (a *Alloc) AllocNum() (uint64, bool) {
	if a.len == 0 {
		return 0, false
	}
	return a.findFreeBit()
}

func (a *Alloc) checkRange(n uint64) {
	if n < a.start || n >= a.start+a.len {
		panic("alloc: out of range")
	}
}

func (a *Alloc) MarkUsed(n uint64) {
	a.checkRange(n)
	a.bm.Set(n)
}

// NumFree returns how many numbers in the range are not marked used.
func (a *Alloc) NumFree() uint64 {
	return a.len - a.bm.CountRange(a.start, a.start+a.len)
}
