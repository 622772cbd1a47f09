package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/util"
)

// CheckInodes validates every allocated inode's type tag and the range of
// every block address it holds, including the entries of its indirect
// block. It does not look at the bitmap.
func CheckInodes(img *image.Image) error {
	var free uint64
	for i := uint64(0); i < img.NInodes(); i++ {
		inum := common.Inum(i)
		ip := img.Inode(inum)
		if ip.IsFree() {
			free++
			continue
		}
		if !inode.ValidType(ip.Type) {
			return corrupt(BadInodeType, inum, NoBnum, "inode %d type %d", inum, ip.Type)
		}
		err := forEachBlock(img, inum, &ip, func(common.Bnum, refKind) error {
			return nil
		})
		if err != nil {
			return err
		}
	}
	util.DPrintf(1, "allocated inodes %d, free inodes %d\n", img.NInodes()-free, free)
	return nil
}
