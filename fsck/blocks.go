package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/inode"
)

type refKind int

const (
	refDirect        refKind = iota // an inode's direct slot
	refIndirectBlock                // an inode's indirect slot
	refIndirectEntry                // an entry inside an indirect block
)

// forEachBlock calls f on every non-zero block number inode inum owns: its
// direct slots in order, then its indirect block, then the entries of the
// indirect block in order. An address past the end of the image stops the
// walk with BadDirectAddress or BadIndirectAddress, so f only ever sees
// addresses that can be read.
func forEachBlock(img *image.Image, inum common.Inum, ip *inode.Dinode,
	f func(bn common.Bnum, ref refKind) error) error {
	size := img.Super().Size
	for i := uint64(0); i < common.NDIRECT; i++ {
		bn := ip.Direct(i)
		if bn == common.NULLBNUM {
			continue
		}
		if bn >= size {
			return corrupt(BadDirectAddress, inum, bn,
				"inode %d slot %d: block %d >= size %d", inum, i, bn, size)
		}
		if err := f(bn, refDirect); err != nil {
			return err
		}
	}
	ind := ip.Indirect()
	if ind == common.NULLBNUM {
		return nil
	}
	if ind >= size {
		return corrupt(BadIndirectAddress, inum, ind,
			"inode %d indirect block %d >= size %d", inum, ind, size)
	}
	if err := f(ind, refIndirectBlock); err != nil {
		return err
	}
	for i, bn := range img.Indirect(ind) {
		if bn == common.NULLBNUM {
			continue
		}
		if bn >= size {
			return corrupt(BadIndirectAddress, inum, bn,
				"inode %d indirect entry %d: block %d >= size %d", inum, i, bn, size)
		}
		if err := f(bn, refIndirectEntry); err != nil {
			return err
		}
	}
	return nil
}

// forEachLive calls f on every allocated inode, in inode order.
func forEachLive(img *image.Image, f func(inum common.Inum, ip *inode.Dinode) error) error {
	for i := uint64(0); i < img.NInodes(); i++ {
		inum := common.Inum(i)
		ip := img.Inode(inum)
		if ip.IsFree() {
			continue
		}
		if err := f(inum, &ip); err != nil {
			return err
		}
	}
	return nil
}
