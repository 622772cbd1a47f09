// Package fsck checks the structural consistency of a filesystem image.
//
// The checks run in a fixed order, each relying on the ones before it:
//
//	CheckInodes      inode types and address ranges
//	CheckBitmap      bitmap agrees with the blocks inodes own
//	CheckAddresses   no block is claimed twice
//	CheckDirectories the directory tree and link counts
//
// The first inconsistency stops the check and is returned as a
// *CorruptionError. The image is never written.
package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/util"
)

// Report summarizes an image. It is informational; the checks do not use it.
type Report struct {
	Super      string
	Inodes     uint64
	Free       uint64
	Dirs       uint64
	Files      uint64
	Devs       uint64
	DataBlocks uint64
	UsedBlocks uint64 // data blocks marked in the bitmap
}

func Summarize(img *image.Image) Report {
	r := Report{
		Super:      img.Super().String(),
		Inodes:     img.NInodes(),
		DataBlocks: img.Super().Nblocks,
	}
	for i := uint64(0); i < img.NInodes(); i++ {
		ip := img.Inode(common.Inum(i))
		switch ip.Type {
		case common.T_FREE:
			r.Free++
		case common.T_DIR:
			r.Dirs++
		case common.T_FILE:
			r.Files++
		case common.T_DEV:
			r.Devs++
		}
	}
	r.UsedBlocks = img.NumAllocated(img.DataStart(), img.Super().Size)
	return r
}

var checks = []struct {
	name string
	f    func(*image.Image) error
}{
	{"inodes", CheckInodes},
	{"bitmap", CheckBitmap},
	{"addresses", CheckAddresses},
	{"directories", CheckDirectories},
}

// Check runs every check against img and returns the first failure.
func Check(img *image.Image) (Report, error) {
	r := Summarize(img)
	for _, c := range checks {
		util.DPrintf(2, "check %s\n", c.name)
		if err := c.f(img); err != nil {
			util.DPrintf(1, "check %s: %v\n", c.name, err)
			return r, err
		}
	}
	return r, nil
}

// CheckFile opens, checks and closes the image at path. Load failures are
// *ImageError.
func CheckFile(path string) (Report, error) {
	img, err := image.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer img.Close()
	return Check(img)
}
