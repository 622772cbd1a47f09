package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/inode"
)

// CheckAddresses checks that no data block is claimed twice from inode
// slots, and separately that no data block is claimed twice from indirect
// blocks. The two tallies are independent: a block named once by one
// inode's slot and once by another inode's indirect block passes.
//
// An indirect block number is held in an inode slot, so it is tallied with
// the direct slots.
//
// Expects CheckInodes to have passed.
func CheckAddresses(img *image.Image) error {
	start := img.DataStart()
	direct := make([]uint32, img.Super().Nblocks)
	indirect := make([]uint32, img.Super().Nblocks)
	err := forEachLive(img, func(inum common.Inum, ip *inode.Dinode) error {
		return forEachBlock(img, inum, ip, func(bn common.Bnum, ref refKind) error {
			if !img.InData(bn) {
				return nil
			}
			if ref == refIndirectEntry {
				indirect[bn-start]++
			} else {
				direct[bn-start]++
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	for i, n := range direct {
		if n > 1 {
			bn := start + common.Bnum(i)
			return corrupt(DuplicateDirectAddress, NoInum, bn,
				"block %d named by %d inode slots", bn, n)
		}
	}
	for i, n := range indirect {
		if n > 1 {
			bn := start + common.Bnum(i)
			return corrupt(DuplicateIndirectAddress, NoInum, bn,
				"block %d named by %d indirect entries", bn, n)
		}
	}
	return nil
}
