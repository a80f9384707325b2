package mstor

import (
	"encoding/binary"
	"os"
	"time"
)

// StatInfo is the in-memory form of one directory entry or stat
// result, serialized to the wire with EncodeStat.
type StatInfo struct {
	Name      string
	Mode      os.FileMode
	BlockSize uint32
	Mtime     time.Time
	Atime     time.Time
	Length    uint64
	ManRepl   uint8
	UID       uint32
	GID       uint32
}

func toStatInfo(name string, n *Node, manRepl int) StatInfo {
	if name == "" {
		name = "/"
	}

	var mr uint8
	if !n.IsDir() && manRepl > 0 && manRepl <= 0xff {
		mr = uint8(manRepl)
	}

	return StatInfo{
		Name: name,
		Mode: n.Mode,
		// BlockSize is left at zero: nothing downstream of mstor
		// currently sizes it.
		BlockSize: 0,
		Mtime:     n.Mtime,
		Atime:     n.Atime,
		Length:    n.Length,
		ManRepl:   mr,
		UID:       n.UID,
		GID:       n.GID,
	}
}

// EncodeStat serializes si into the on-wire stat record of §6:
//
//	stat_len(2,BE) | mode_and_type(2) | block_sz(4) | mtime(8) |
//	atime(8) | length(8) | man_repl(1) | uid(4) | gid(4) |
//	name(len-prefixed string)
//
// stat_len is the length of the whole record, itself included, so a
// reader can skip to the next record without decoding this one.
func EncodeStat(si StatInfo) []byte {
	name := []byte(si.Name)
	bodyLen := 2 + 4 + 8 + 8 + 8 + 1 + 4 + 4 + 2 + len(name)
	total := 2 + bodyLen

	b := make([]byte, total)
	off := 0

	binary.BigEndian.PutUint16(b[off:], uint16(total))
	off += 2

	mt := uint16(si.Mode.Perm()) & modePermMask
	if si.Mode&os.ModeDir != 0 {
		mt |= modeDirBit
	}
	binary.BigEndian.PutUint16(b[off:], mt)
	off += 2

	binary.BigEndian.PutUint32(b[off:], si.BlockSize)
	off += 4
	binary.BigEndian.PutUint64(b[off:], uint64(si.Mtime.Unix()))
	off += 8
	binary.BigEndian.PutUint64(b[off:], uint64(si.Atime.Unix()))
	off += 8
	binary.BigEndian.PutUint64(b[off:], si.Length)
	off += 8

	b[off] = si.ManRepl
	off++

	binary.BigEndian.PutUint32(b[off:], si.UID)
	off += 4
	binary.BigEndian.PutUint32(b[off:], si.GID)
	off += 4

	binary.BigEndian.PutUint16(b[off:], uint16(len(name)))
	off += 2
	copy(b[off:], name)

	return b
}
