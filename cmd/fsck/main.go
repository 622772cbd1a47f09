// fsck checks a filesystem image for structural inconsistencies.
//
// Usage:
//
//	fsck <file_system_image>
//
// It exits 0 and prints nothing when the image is consistent. Otherwise it
// prints the first problem found to stderr and exits 1.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-fsck/fsck"
)

// UsageError is a bad command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	if len(args) != 1 {
		err := &UsageError{Msg: "Usage: fsck <file_system_image>"}
		fmt.Fprintln(stderr, err)
		return err
	}
	_, err := fsck.CheckFile(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}
	return nil
}
