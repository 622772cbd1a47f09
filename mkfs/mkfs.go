// Package mkfs builds well-formed filesystem images in memory.
//
// Layout matches what package image loads: boot block, superblock, inode
// table, bitmap, data. Every metadata block is marked allocated in the bitmap,
// as is every block an inode owns.
package mkfs

import (
	"errors"
	"fmt"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/alloc"
	"github.com/mit-pdos/go-fsck/bitmap"
	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/super"
	"github.com/mit-pdos/go-fsck/util"
)

var (
	ErrNoInodes = errors.New("mkfs: out of inodes")
	ErrNoSpace  = errors.New("mkfs: out of data blocks")
	ErrExists   = errors.New("mkfs: name exists")
	ErrNotDir   = errors.New("mkfs: not a directory")
	ErrTooBig   = errors.New("mkfs: file too large")
)

type Builder struct {
	d      disk.Disk
	sb     super.Superblock
	geom   super.Geometry
	bm     *bitmap.Bitmap // in-memory copy of the on-disk bitmap
	blocks *alloc.Alloc
	inodes *alloc.Alloc
}

// NewBuilder lays out an image of size blocks with ninodes inodes on a
// memory disk, with an empty root directory.
func NewBuilder(size uint64, ninodes uint64) *Builder {
	sb := super.MkSuperblock(size, ninodes)
	geom := sb.Geometry()
	bm := bitmap.MkBitmap(make([]byte, geom.NBitmapBlocks*common.BSIZE), size)
	ibm := bitmap.MkBitmap(make([]byte, util.RoundUp(ninodes, 8)), ninodes)
	b := &Builder{
		d:      disk.NewMemDisk(size),
		sb:     sb,
		geom:   geom,
		bm:     bm,
		blocks: alloc.MkAlloc(bm, geom.DataStart(), sb.Nblocks),
		inodes: alloc.MkAlloc(ibm, 0, ninodes),
	}
	util.DPrintf(1, "mkfs: %v first data block %d\n", sb, geom.DataStart())

	buf.MkBuf(addr.MkAddr(common.SUPERBLK, 0), super.SBSIZE*8, sb.Encode()).WriteDirect(b.d)
	for bn := common.Bnum(0); bn < geom.DataStart(); bn++ {
		b.bm.Set(bn)
		b.writeBit(bn)
	}

	b.inodes.MarkUsed(uint64(common.NULLINUM))
	b.inodes.MarkUsed(uint64(common.ROOTINUM))
	root := inode.Dinode{Type: common.T_DIR, Nlink: 1}
	b.PutInode(common.ROOTINUM, root)
	if err := b.addEntry(common.ROOTINUM, ".", common.ROOTINUM); err != nil {
		panic(err)
	}
	if err := b.addEntry(common.ROOTINUM, "..", common.ROOTINUM); err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) Super() super.Superblock {
	return b.sb
}

func (b *Builder) Geometry() super.Geometry {
	return b.geom
}

func (b *Builder) Disk() disk.Disk {
	return b.d
}

// Bytes returns a copy of the whole image.
func (b *Builder) Bytes() []byte {
	data := make([]byte, b.sb.Size*common.BSIZE)
	for bn := uint64(0); bn < b.sb.Size; bn++ {
		copy(data[bn*common.BSIZE:], b.d.Read(bn))
	}
	return data
}

// WriteFile writes the image to path, creating or truncating it.
func (b *Builder) WriteFile(path string) error {
	fd, err := disk.NewFileDisk(path, b.sb.Size)
	if err != nil {
		return fmt.Errorf("mkfs: %s: %w", path, err)
	}
	for bn := uint64(0); bn < b.sb.Size; bn++ {
		fd.Write(bn, b.d.Read(bn))
	}
	fd.Barrier()
	fd.Close()
	return nil
}

func (b *Builder) writeBit(bn common.Bnum) {
	var v byte
	if b.bm.IsSet(bn) {
		v = 1 << (bn % 8)
	}
	buf.MkBuf(b.geom.BitAddr(bn), 1, []byte{v}).WriteDirect(b.d)
}

// SetBit sets or clears the bitmap bit of bn, and nothing else.
func (b *Builder) SetBit(bn common.Bnum, used bool) {
	if used {
		b.bm.Set(bn)
	} else {
		b.bm.Clear(bn)
	}
	b.writeBit(bn)
}

func (b *Builder) allocBlock() (common.Bnum, error) {
	bn, ok := b.blocks.AllocNum()
	if !ok {
		return 0, ErrNoSpace
	}
	b.writeBit(bn)
	b.d.Write(bn, make(disk.Block, disk.BlockSize))
	return bn, nil
}

// Inode reads inode inum as it is on disk.
func (b *Builder) Inode(inum common.Inum) inode.Dinode {
	a := b.geom.Inum2Addr(inum)
	blk := b.d.Read(a.Blkno)
	return inode.Decode(blk[a.ByteOff():])
}

// PutInode writes inode inum as given, and nothing else.
func (b *Builder) PutInode(inum common.Inum, ip inode.Dinode) {
	if uint64(inum) >= b.sb.Ninodes {
		panic("PutInode")
	}
	buf.MkBuf(b.geom.Inum2Addr(inum), common.INODESZ*8, ip.Encode()).WriteDirect(b.d)
}

// PutDirent writes de into entry slot i of block bn, and nothing else.
func (b *Builder) PutDirent(bn common.Bnum, i uint64, de dir.Dirent) {
	if i >= common.DPB {
		panic("PutDirent")
	}
	buf.MkBuf(addr.MkDirentAddr(bn, i), common.DIRENTSZ*8, de.Encode()).WriteDirect(b.d)
}

// PutIndirect writes entry i of indirect block bn, and nothing else.
func (b *Builder) PutIndirect(bn common.Bnum, i uint64, v common.Bnum) {
	blk := b.d.Read(bn)
	ib := buf.MkBufLoad(addr.MkAddr(bn, 0), common.NBITBLOCK, blk)
	ib.BnumPut(i*common.BNUMSZ, v)
	ib.WriteDirect(b.d)
}

func (b *Builder) allocInode(typ uint16) (common.Inum, error) {
	n, ok := b.inodes.AllocNum()
	if !ok {
		return 0, ErrNoInodes
	}
	inum := common.Inum(n)
	b.PutInode(inum, inode.Dinode{Type: typ, Nlink: 1})
	return inum, nil
}

// bmap returns the block holding the k'th block of ip, allocating it and
// the indirect block if needed. The caller writes ip back.
func (b *Builder) bmap(ip *inode.Dinode, k uint64) (common.Bnum, error) {
	if k < common.NDIRECT {
		if ip.Addrs[k] == common.NULLBNUM {
			bn, err := b.allocBlock()
			if err != nil {
				return 0, err
			}
			ip.Addrs[k] = bn
		}
		return ip.Addrs[k], nil
	}
	k -= common.NDIRECT
	if k >= common.NINDIRECT {
		return 0, ErrTooBig
	}
	if ip.Indirect() == common.NULLBNUM {
		bn, err := b.allocBlock()
		if err != nil {
			return 0, err
		}
		ip.Addrs[common.NDIRECT] = bn
	}
	ind := ip.Indirect()
	ib := buf.MkBufLoad(addr.MkAddr(ind, 0), common.NBITBLOCK, b.d.Read(ind))
	bn := ib.BnumGet(k * common.BNUMSZ)
	if bn == common.NULLBNUM {
		var err error
		bn, err = b.allocBlock()
		if err != nil {
			return 0, err
		}
		ib.BnumPut(k*common.BNUMSZ, bn)
		ib.WriteDirect(b.d)
	}
	return bn, nil
}

// blocksOf lists the blocks ip owns that hold its contents, in order.
func (b *Builder) blocksOf(ip *inode.Dinode) []common.Bnum {
	var bns []common.Bnum
	for i := uint64(0); i < common.NDIRECT; i++ {
		if ip.Direct(i) != common.NULLBNUM {
			bns = append(bns, ip.Direct(i))
		}
	}
	if ip.Indirect() != common.NULLBNUM {
		for _, bn := range inode.DecodeIndirect(b.d.Read(ip.Indirect())) {
			if bn != common.NULLBNUM {
				bns = append(bns, bn)
			}
		}
	}
	return bns
}

// Lookup finds name in directory dp.
func (b *Builder) Lookup(dp common.Inum, name string) (common.Inum, bool) {
	ip := b.Inode(dp)
	for _, bn := range b.blocksOf(&ip) {
		for _, de := range dir.DecodeBlock(b.d.Read(bn)) {
			if !de.IsFree() && de.NameString() == name {
				return de.Inum, true
			}
		}
	}
	return 0, false
}

// entryBlocks returns how many blocks adding one entry to directory ip
// allocates.
func (b *Builder) entryBlocks(ip *inode.Dinode) (uint64, error) {
	bns := b.blocksOf(ip)
	for _, bn := range bns {
		for _, slot := range dir.DecodeBlock(b.d.Read(bn)) {
			if slot.IsFree() {
				return 0, nil
			}
		}
	}
	n := uint64(len(bns))
	if n >= common.MAXFILE {
		return 0, ErrTooBig
	}
	if n >= common.NDIRECT && ip.Indirect() == common.NULLBNUM {
		return 2, nil
	}
	return 1, nil
}

// dataBlocks is the number of blocks, the indirect block included, a file
// of sz bytes occupies.
func dataBlocks(sz uint64) uint64 {
	n := util.RoundUp(sz, common.BSIZE)
	if n > common.NDIRECT {
		n++
	}
	return n
}

// canAdd checks that name can be entered in dp with nblocks more blocks
// allocated alongside it, so that the writes that follow cannot fail.
func (b *Builder) canAdd(dp common.Inum, name string, nblocks uint64) error {
	if _, err := dir.MkName(name); err != nil {
		return err
	}
	ip := b.Inode(dp)
	if !ip.IsDir() {
		return ErrNotDir
	}
	if _, ok := b.Lookup(dp, name); ok {
		return fmt.Errorf("%w: %q in %d", ErrExists, name, dp)
	}
	grow, err := b.entryBlocks(&ip)
	if err != nil {
		return err
	}
	if nblocks+grow > b.blocks.NumFree() {
		return ErrNoSpace
	}
	return nil
}

// reserve is canAdd for a new inode.
func (b *Builder) reserve(parent common.Inum, name string, nblocks uint64) error {
	if b.inodes.NumFree() == 0 {
		return ErrNoInodes
	}
	return b.canAdd(parent, name, nblocks)
}

// addEntry puts name -> inum in the first free slot of dp, growing dp by a
// block when it is full.
func (b *Builder) addEntry(dp common.Inum, name string, inum common.Inum) error {
	if err := b.canAdd(dp, name, 0); err != nil {
		return err
	}
	de, err := dir.MkDirent(inum, name)
	if err != nil {
		return err
	}
	ip := b.Inode(dp)
	nslots := ip.Size / common.DIRENTSZ
	for k := uint64(0); ; k++ {
		bn, err := b.bmap(&ip, k)
		if err != nil {
			return err
		}
		for i, slot := range dir.DecodeBlock(b.d.Read(bn)) {
			if slot.IsFree() {
				b.PutDirent(bn, uint64(i), de)
				n := k*common.DPB + uint64(i) + 1
				if n > nslots {
					ip.Size = n * common.DIRENTSZ
				}
				b.PutInode(dp, ip)
				return nil
			}
		}
	}
}

// MkDir creates directory name in parent. On error the image is unchanged.
func (b *Builder) MkDir(parent common.Inum, name string) (common.Inum, error) {
	if err := b.reserve(parent, name, 1); err != nil {
		return 0, err
	}
	inum, err := b.allocInode(common.T_DIR)
	if err != nil {
		return 0, err
	}
	if err := b.addEntry(inum, ".", inum); err != nil {
		return 0, err
	}
	if err := b.addEntry(inum, "..", parent); err != nil {
		return 0, err
	}
	if err := b.addEntry(parent, name, inum); err != nil {
		return 0, err
	}
	return inum, nil
}

// MkFile creates file name in parent holding data. On error the image is
// unchanged.
func (b *Builder) MkFile(parent common.Inum, name string, data []byte) (common.Inum, error) {
	if util.RoundUp(uint64(len(data)), common.BSIZE) > common.MAXFILE {
		return 0, ErrTooBig
	}
	if err := b.reserve(parent, name, dataBlocks(uint64(len(data)))); err != nil {
		return 0, err
	}
	inum, err := b.allocInode(common.T_FILE)
	if err != nil {
		return 0, err
	}
	ip := b.Inode(inum)
	for k := uint64(0); k*common.BSIZE < uint64(len(data)); k++ {
		bn, err := b.bmap(&ip, k)
		if err != nil {
			return 0, err
		}
		blk := make(disk.Block, disk.BlockSize)
		end := util.Min((k+1)*common.BSIZE, uint64(len(data)))
		copy(blk, data[k*common.BSIZE:end])
		b.d.Write(bn, blk)
	}
	ip.Size = uint64(len(data))
	b.PutInode(inum, ip)
	if err := b.addEntry(parent, name, inum); err != nil {
		return 0, err
	}
	return inum, nil
}

// MkDev creates device name in parent. On error the image is unchanged.
func (b *Builder) MkDev(parent common.Inum, name string, major, minor uint16) (common.Inum, error) {
	if err := b.reserve(parent, name, 0); err != nil {
		return 0, err
	}
	inum, err := b.allocInode(common.T_DEV)
	if err != nil {
		return 0, err
	}
	ip := b.Inode(inum)
	ip.Major = major
	ip.Minor = minor
	b.PutInode(inum, ip)
	if err := b.addEntry(parent, name, inum); err != nil {
		return 0, err
	}
	return inum, nil
}

// Link adds name in parent for inum. A file's link count goes up by one;
// linking a directory produces an image the checker rejects.
func (b *Builder) Link(parent common.Inum, name string, inum common.Inum) error {
	if err := b.addEntry(parent, name, inum); err != nil {
		return err
	}
	ip := b.Inode(inum)
	if ip.IsFile() {
		ip.Nlink++
		b.PutInode(inum, ip)
	}
	return nil
}
