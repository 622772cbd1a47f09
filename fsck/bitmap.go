package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/util"
)

// usedBlocks marks, per data block, whether a live inode owns it. It also
// checks that every owned block, data or not, is marked in the bitmap.
func usedBlocks(img *image.Image) ([]bool, error) {
	start := img.DataStart()
	used := make([]bool, img.Super().Nblocks)
	err := forEachLive(img, func(inum common.Inum, ip *inode.Dinode) error {
		return forEachBlock(img, inum, ip, func(bn common.Bnum, ref refKind) error {
			if !img.Allocated(bn) {
				return corrupt(AddressMarkedFreeButUsed, inum, bn,
					"inode %d owns block %d", inum, bn)
			}
			if img.InData(bn) {
				used[bn-start] = true
			}
			return nil
		})
	})
	return used, err
}

// CheckBitmap checks that the bitmap agrees with the blocks live inodes
// own, in both directions over the data region. Expects CheckInodes to have
// passed.
func CheckBitmap(img *image.Image) error {
	used, err := usedBlocks(img)
	if err != nil {
		return err
	}
	start := img.DataStart()
	var n uint64
	for i, u := range used {
		bn := start + common.Bnum(i)
		if u {
			n++
			continue
		}
		if img.Allocated(bn) {
			return corrupt(AddressMarkedUsedButFree, NoInum, bn,
				"block %d is marked allocated", bn)
		}
	}
	util.DPrintf(1, "data blocks in use %d of %d\n", n, len(used))
	return nil
}
