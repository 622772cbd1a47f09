package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	BSIZE     uint64 = disk.BlockSize
	NBITBLOCK uint64 = BSIZE * 8

	NDIRECT   uint64 = 12
	NINDIRECT uint64 = BSIZE / BNUMSZ
	BNUMSZ    uint64 = 4 // on-disk block number

	INODESZ uint64 = 64 // on-disk size
	IPB     uint64 = BSIZE / INODESZ

	DIRSIZ   uint64 = 28
	DIRENTSZ uint64 = 4 + DIRSIZ
	DPB      uint64 = BSIZE / DIRENTSZ

	SUPERBLK   Bnum = 1
	INODESTART Bnum = 2
)

// Inode types
const (
	T_FREE uint16 = 0
	T_DIR  uint16 = 1
	T_FILE uint16 = 2
	T_DEV  uint16 = 3
)

type Inum uint64
type Bnum = uint64

const (
	NULLINUM Inum = 0
	ROOTINUM Inum = 1
	NULLBNUM Bnum = 0
)

// Largest file in blocks
const MAXFILE = NDIRECT + NINDIRECT
