// mkfs writes a new filesystem image, optionally filled from a host
// directory.
//
// Usage:
//
//	mkfs <output image> [skel dir]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/mkfs"
)

const (
	FSSIZE  = 1000 // blocks
	NINODES = 200
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mkfs: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: mkfs <output image> [skel dir]")
	}
	b := mkfs.NewBuilder(FSSIZE, NINODES)
	if len(args) == 2 {
		if err := b.AddTree(common.ROOTINUM, args[1]); err != nil {
			return err
		}
	}
	if err := b.WriteFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "mkfs %s: %v\n", args[0], b.Super())
	return nil
}
