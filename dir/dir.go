// Package dir is the fixed-size directory entry stored in directory blocks.
package dir

import (
	"bytes"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/common"
)

type Dirent struct {
	Inum common.Inum
	Name [common.DIRSIZ]byte // NUL padded
}

func Decode(b []byte) Dirent {
	dec := marshal.NewDec(b[:common.DIRENTSZ])
	de := Dirent{}
	de.Inum = common.Inum(dec.GetInt32())
	copy(de.Name[:], dec.GetBytes(common.DIRSIZ))
	return de
}

func (de *Dirent) Encode() []byte {
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt32(uint32(de.Inum))
	enc.PutBytes(de.Name[:])
	return enc.Finish()
}

// DecodeBlock returns the DPB entry slots of a directory block, in order.
func DecodeBlock(blk []byte) []Dirent {
	des := make([]Dirent, common.DPB)
	for i := range des {
		off := uint64(i) * common.DIRENTSZ
		des[i] = Decode(blk[off : off+common.DIRENTSZ])
	}
	return des
}

func MkName(s string) ([common.DIRSIZ]byte, error) {
	var name [common.DIRSIZ]byte
	if len(s) == 0 || uint64(len(s)) > common.DIRSIZ {
		return name, fmt.Errorf("name %q: length must be in [1, %d]", s, common.DIRSIZ)
	}
	if bytes.IndexByte([]byte(s), 0) >= 0 || bytes.IndexByte([]byte(s), '/') >= 0 {
		return name, fmt.Errorf("name %q: contains NUL or '/'", s)
	}
	copy(name[:], s)
	return name, nil
}

func MkDirent(inum common.Inum, s string) (Dirent, error) {
	name, err := MkName(s)
	if err != nil {
		return Dirent{}, err
	}
	return Dirent{Inum: inum, Name: name}, nil
}

func (de *Dirent) NameString() string {
	n := bytes.IndexByte(de.Name[:], 0)
	if n < 0 {
		n = len(de.Name)
	}
	return string(de.Name[:n])
}

func (de *Dirent) IsFree() bool {
	return de.Inum == common.NULLINUM
}

func (de *Dirent) IsDot() bool {
	return de.NameString() == "."
}

func (de *Dirent) IsDotDot() bool {
	return de.NameString() == ".."
}
