// Package inode is the on-disk inode record:
//
//	type u16 | major u16 | minor u16 | nlink u16 | size u32 | addrs[NDIRECT+1] u32
//
// addrs[NDIRECT] is the indirect block, which holds NINDIRECT further block
// numbers.
package inode

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/common"
)

type Dinode struct {
	Type  uint16
	Major uint16
	Minor uint16
	Nlink uint16
	Size  uint64
	Addrs [common.NDIRECT + 1]common.Bnum
}

func Decode(b []byte) Dinode {
	dec := marshal.NewDec(b[:common.INODESZ])
	ip := Dinode{}
	w := dec.GetInt32()
	ip.Type = uint16(w)
	ip.Major = uint16(w >> 16)
	w = dec.GetInt32()
	ip.Minor = uint16(w)
	ip.Nlink = uint16(w >> 16)
	ip.Size = uint64(dec.GetInt32())
	for i := range ip.Addrs {
		ip.Addrs[i] = common.Bnum(dec.GetInt32())
	}
	return ip
}

func (ip *Dinode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(uint32(ip.Type) | uint32(ip.Major)<<16)
	enc.PutInt32(uint32(ip.Minor) | uint32(ip.Nlink)<<16)
	enc.PutInt32(uint32(ip.Size))
	for _, a := range ip.Addrs {
		enc.PutInt32(uint32(a))
	}
	return enc.Finish()
}

func (ip *Dinode) IsFree() bool {
	return ip.Type == common.T_FREE
}

func (ip *Dinode) IsDir() bool {
	return ip.Type == common.T_DIR
}

func (ip *Dinode) IsFile() bool {
	return ip.Type == common.T_FILE
}

func ValidType(t uint16) bool {
	switch t {
	case common.T_DIR, common.T_FILE, common.T_DEV:
		return true
	}
	return false
}

func (ip *Dinode) Direct(i uint64) common.Bnum {
	return ip.Addrs[i]
}

func (ip *Dinode) Indirect() common.Bnum {
	return ip.Addrs[common.NDIRECT]
}

// DecodeIndirect returns the NINDIRECT block numbers of an indirect block.
func DecodeIndirect(blk []byte) []common.Bnum {
	dec := marshal.NewDec(blk[:common.BSIZE])
	bns := make([]common.Bnum, common.NINDIRECT)
	for i := range bns {
		bns[i] = common.Bnum(dec.GetInt32())
	}
	return bns
}

func EncodeIndirect(bns []common.Bnum) []byte {
	if uint64(len(bns)) > common.NINDIRECT {
		panic("EncodeIndirect")
	}
	enc := marshal.NewEnc(common.BSIZE)
	for _, bn := range bns {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

func TypeName(t uint16) string {
	switch t {
	case common.T_FREE:
		return "free"
	case common.T_DIR:
		return "dir"
	case common.T_FILE:
		return "file"
	case common.T_DEV:
		return "dev"
	}
	return "unknown"
}
