package mstor

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

// modeDirBit and modePermMask carve up the 2-byte mode_and_type field:
// the high bit marks IS_DIR, the low 9 bits are POSIX rwx for
// owner/group/other.
const (
	modeDirBit   uint16 = 1 << 15
	modePermMask uint16 = 0x1ff
)

// nodePayloadLen is the packed, fixed-width node payload: mtime(8)
// atime(8) length(8) uid(4) gid(4) mode_and_type(2).
const nodePayloadLen = 8 + 8 + 8 + 4 + 4 + 2

// Node is the in-memory view of an "n"-record: a file or directory.
type Node struct {
	NID    uint64
	Mtime  time.Time
	Atime  time.Time
	Length uint64
	UID    uint32
	GID    uint32
	Mode   os.FileMode // only os.ModeDir and the low 9 perm bits are meaningful
}

// IsDir reports whether the node's IS_DIR bit is set.
func (n *Node) IsDir() bool {
	return n.Mode&os.ModeDir != 0
}

func encodeNode(n *Node) []byte {
	b := make([]byte, nodePayloadLen)
	binary.BigEndian.PutUint64(b[0:8], uint64(n.Mtime.Unix()))
	binary.BigEndian.PutUint64(b[8:16], uint64(n.Atime.Unix()))
	binary.BigEndian.PutUint64(b[16:24], n.Length)
	binary.BigEndian.PutUint32(b[24:28], n.UID)
	binary.BigEndian.PutUint32(b[28:32], n.GID)

	mt := uint16(n.Mode.Perm()) & modePermMask
	if n.Mode&os.ModeDir != 0 {
		mt |= modeDirBit
	}
	binary.BigEndian.PutUint16(b[32:34], mt)

	return b
}

func decodeNode(nid uint64, b []byte) (*Node, error) {
	if len(b) != nodePayloadLen {
		return nil, fmt.Errorf("%w: node payload has length %d, want %d", ErrIO, len(b), nodePayloadLen)
	}

	mt := binary.BigEndian.Uint16(b[32:34])
	mode := os.FileMode(mt & modePermMask)
	if mt&modeDirBit != 0 {
		mode |= os.ModeDir
	}

	return &Node{
		NID:    nid,
		Mtime:  time.Unix(int64(binary.BigEndian.Uint64(b[0:8])), 0).UTC(),
		Atime:  time.Unix(int64(binary.BigEndian.Uint64(b[8:16])), 0).UTC(),
		Length: binary.BigEndian.Uint64(b[16:24]),
		UID:    binary.BigEndian.Uint32(b[24:28]),
		GID:    binary.BigEndian.Uint32(b[28:32]),
		Mode:   mode,
	}, nil
}
