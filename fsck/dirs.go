package fsck

import (
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/image"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/util"
)

// dirEntries returns the entry slots of a directory: those of its direct
// blocks, then those of the blocks its indirect block names.
func dirEntries(img *image.Image, inum common.Inum, ip *inode.Dinode) ([]dir.Dirent, error) {
	var des []dir.Dirent
	err := forEachBlock(img, inum, ip, func(bn common.Bnum, ref refKind) error {
		if ref != refIndirectBlock {
			des = append(des, img.Dirents(bn)...)
		}
		return nil
	})
	return des, err
}

// findDots returns the inode numbers of the first "." and the first ".."
// entry in the direct blocks of a directory.
func findDots(img *image.Image, ip *inode.Dinode) (dot, dotdot common.Inum, hasDot, hasDotDot bool) {
	size := img.Super().Size
	for i := uint64(0); i < common.NDIRECT; i++ {
		bn := ip.Direct(i)
		if bn == common.NULLBNUM || bn >= size {
			continue
		}
		for _, de := range img.Dirents(bn) {
			if de.IsFree() {
				continue
			}
			if !hasDot && de.IsDot() {
				dot, hasDot = de.Inum, true
			}
			if !hasDotDot && de.IsDotDot() {
				dotdot, hasDotDot = de.Inum, true
			}
		}
	}
	return
}

// checkDirectoryWiring checks that directory inum has "." naming itself and
// "..", which for the root names the root and for any other directory names
// something other than itself.
func checkDirectoryWiring(img *image.Image, inum common.Inum, ip *inode.Dinode) *CorruptionError {
	dot, dotdot, hasDot, hasDotDot := findDots(img, ip)
	if !hasDot {
		return corrupt(MalformedDirectory, inum, NoBnum, "directory %d has no '.'", inum)
	}
	if dot != inum {
		return corrupt(MalformedDirectory, inum, NoBnum,
			"directory %d: '.' names inode %d", inum, dot)
	}
	if !hasDotDot {
		return corrupt(MalformedDirectory, inum, NoBnum, "directory %d has no '..'", inum)
	}
	if inum == common.ROOTINUM {
		if dotdot != common.ROOTINUM {
			return corrupt(MalformedDirectory, inum, NoBnum,
				"root '..' names inode %d", dotdot)
		}
	} else if dotdot == inum {
		return corrupt(MalformedDirectory, inum, NoBnum,
			"directory %d: '..' names itself", inum)
	}
	return nil
}

type frame struct {
	inum common.Inum
	ents []dir.Dirent
	next int
}

// walkTree walks the directory tree from the root depth first, adding one to
// refs[i] for every entry (other than "." and "..") that names inode i.
// parent[i] records the directory holding the first entry that named
// directory i. A directory is walked once; an entry naming a directory on
// the path from the root to the current directory is a cycle.
func walkTree(img *image.Image, refs []uint32, parent []common.Inum) error {
	n := img.NInodes()
	onPath := make([]bool, n)
	walked := make([]bool, n)

	root := img.Inode(common.ROOTINUM)
	ents, err := dirEntries(img, common.ROOTINUM, &root)
	if err != nil {
		return err
	}
	onPath[common.ROOTINUM] = true
	walked[common.ROOTINUM] = true
	stack := []frame{{inum: common.ROOTINUM, ents: ents}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.ents) {
			onPath[top.inum] = false
			stack = stack[:len(stack)-1]
			continue
		}
		de := top.ents[top.next]
		top.next++
		if de.IsFree() || de.IsDot() || de.IsDotDot() {
			continue
		}
		if uint64(de.Inum) >= n {
			return corrupt(BadDirectoryEntry, top.inum, NoBnum,
				"directory %d entry %q names inode %d of %d",
				top.inum, de.NameString(), de.Inum, n)
		}
		refs[de.Inum]++
		ip := img.Inode(de.Inum)
		if !ip.IsDir() {
			continue
		}
		if onPath[de.Inum] {
			return corrupt(CyclicDirectoryReference, de.Inum, NoBnum,
				"directory %d entry %q names ancestor %d",
				top.inum, de.NameString(), de.Inum)
		}
		if walked[de.Inum] {
			continue
		}
		parent[de.Inum] = top.inum
		if err := checkDirectoryWiring(img, de.Inum, &ip); err != nil {
			return err
		}
		ents, err := dirEntries(img, de.Inum, &ip)
		if err != nil {
			return err
		}
		util.DPrintf(5, "walk: %d/%q -> %d\n", top.inum, de.NameString(), de.Inum)
		walked[de.Inum] = true
		onPath[de.Inum] = true
		stack = append(stack, frame{inum: de.Inum, ents: ents})
	}
	return nil
}

// checkRefs compares the references walkTree counted with each inode's
// allocation state, link count, and, for directories, '..'.
func checkRefs(img *image.Image, refs []uint32, parent []common.Inum) error {
	for i := uint64(common.ROOTINUM) + 1; i < img.NInodes(); i++ {
		inum := common.Inum(i)
		ip := img.Inode(inum)
		r := refs[inum]
		if !ip.IsFree() && r == 0 {
			return corrupt(UnreferencedAllocatedInode, inum, NoBnum,
				"inode %d (%s)", inum, inode.TypeName(ip.Type))
		}
		if ip.IsFree() && r > 0 {
			return corrupt(DanglingDirectoryReference, inum, NoBnum,
				"inode %d named by %d entries", inum, r)
		}
		if ip.IsFile() && uint32(ip.Nlink) != r {
			return corrupt(LinkCountMismatch, inum, NoBnum,
				"inode %d nlink %d, named by %d entries", inum, ip.Nlink, r)
		}
		if ip.IsDir() && r > 1 {
			return corrupt(DuplicateDirectoryLink, inum, NoBnum,
				"directory %d named by %d entries", inum, r)
		}
		if ip.IsDir() {
			_, dotdot, _, _ := findDots(img, &ip)
			if dotdot != parent[inum] {
				return corrupt(MalformedDirectory, inum, NoBnum,
					"directory %d: '..' names %d, parent is %d", inum, dotdot, parent[inum])
			}
		}
	}
	return nil
}

func mkRefs(img *image.Image) ([]uint32, []common.Inum) {
	refs := make([]uint32, img.NInodes())
	refs[common.NULLINUM] = 1
	refs[common.ROOTINUM] = 1
	return refs, make([]common.Inum, img.NInodes())
}

// CountReferences walks the tree and returns, per inode, the number of
// directory entries naming it. Entries 0 and the root start at one.
func CountReferences(img *image.Image) ([]uint32, error) {
	refs, parent := mkRefs(img)
	err := walkTree(img, refs, parent)
	return refs, err
}

// CheckDirectories checks the directory tree: the root exists and is wired
// to itself, every directory has proper "." and ".." entries, every
// allocated inode is named, no free inode is named, file link counts match,
// and no directory is named twice. Expects CheckInodes to have passed.
func CheckDirectories(img *image.Image) error {
	root := img.Inode(common.ROOTINUM)
	if !root.IsDir() {
		return corrupt(MissingRootDirectory, common.ROOTINUM, NoBnum,
			"inode 1 has type %s", inode.TypeName(root.Type))
	}
	if err := checkDirectoryWiring(img, common.ROOTINUM, &root); err != nil {
		return &CorruptionError{Kind: MissingRootDirectory, Inum: common.ROOTINUM,
			Bnum: NoBnum, Detail: err.Detail}
	}
	refs, parent := mkRefs(img)
	if err := walkTree(img, refs, parent); err != nil {
		return err
	}
	return checkRefs(img, refs, parent)
}
