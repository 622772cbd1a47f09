package mkfs

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/util"
)

// AddTree copies the regular files and directories under host into
// directory parent. Other file types are skipped.
func (b *Builder) AddTree(parent common.Inum, host string) error {
	ents, err := ioutil.ReadDir(host)
	if err != nil {
		return fmt.Errorf("mkfs: %w", err)
	}
	for _, fi := range ents {
		p := filepath.Join(host, fi.Name())
		switch {
		case fi.IsDir():
			inum, err := b.MkDir(parent, fi.Name())
			if err != nil {
				return fmt.Errorf("mkfs: %s: %w", p, err)
			}
			if err := b.AddTree(inum, p); err != nil {
				return err
			}
		case fi.Mode().IsRegular():
			data, err := ioutil.ReadFile(p)
			if err != nil {
				return fmt.Errorf("mkfs: %w", err)
			}
			inum, err := b.MkFile(parent, fi.Name(), data)
			if err != nil {
				return fmt.Errorf("mkfs: %s: %w", p, err)
			}
			util.DPrintf(1, "mkfs: %s -> inode %d (%d bytes)\n", p, inum, len(data))
		default:
			util.DPrintf(1, "mkfs: skipping %s\n", p)
		}
	}
	return nil
}
