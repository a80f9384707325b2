package mstor

import (
	"bytes"
	"math"

	"github.com/boltdb/bolt"
)

// ChunkInfo names one chunk of a file: the byte offset it starts at
// and the chunk id that maps to its replica set.
type ChunkInfo struct {
	Offset uint64
	CID    uint64
}

// chunkFindTx implements §4.6 CHUNKFIND / §4.7: the chunk covering
// offset p is the largest (nid, offset) key at or below p, because
// keys are big-endian and therefore lexicographically ordered the
// same as numerically. We seek to nid||(start+1) and step back one to
// find that "preceding" chunk (which may span into the requested
// range), then forward-iterate while still under the nid prefix and
// at or before end.
func (s *Store) chunkFindTx(tx *bolt.Tx, nid, start, end uint64, maxCinfos int) ([]ChunkInfo, error) {
	if maxCinfos <= 0 {
		maxCinfos = math.MaxInt32
	}

	prefix := chunkPtrPrefix(nid)
	c := tx.Bucket(bucketName).Cursor()

	var seekOverflow bool
	var seekTarget []byte
	if start == math.MaxUint64 {
		seekOverflow = true
	} else {
		seekTarget = chunkPtrKey(nid, start+1)
	}

	var out []ChunkInfo
	var lastEmitted uint64
	haveLast := false

	if !seekOverflow {
		c.Seek(seekTarget)
		if pk, pv := c.Prev(); pk != nil && bytes.HasPrefix(pk, prefix) {
			off, err := decodeChunkOffset(pk, nid)
			if err != nil {
				return nil, ErrIO
			}
			if len(pv) != 8 {
				return nil, ErrIO
			}
			out = append(out, ChunkInfo{Offset: off, CID: be64u(pv)})
			lastEmitted, haveLast = off, true
		}
	}

	if len(out) >= maxCinfos {
		return out, nil
	}

	var k, v []byte
	if seekOverflow {
		k, v = c.Seek(prefix)
	} else {
		k, v = c.Seek(seekTarget)
	}
	for k != nil && bytes.HasPrefix(k, prefix) {
		off, err := decodeChunkOffset(k, nid)
		if err != nil {
			return nil, ErrIO
		}
		if off > end {
			break
		}
		if haveLast && off == lastEmitted {
			k, v = c.Next()
			continue
		}
		if len(v) != 8 {
			return nil, ErrIO
		}
		if len(out) >= maxCinfos {
			break
		}
		out = append(out, ChunkInfo{Offset: off, CID: be64u(v)})
		k, v = c.Next()
	}

	return out, nil
}

// maxChunkOffset returns the greatest existing chunk offset recorded
// for nid, used by Chunkalloc to enforce append-only ordering: a new
// chunk is only accepted past every chunk already on file, which is
// what guarantees §8 property 3 (chunkfind replays chunkalloc order).
func (s *Store) maxChunkOffset(tx *bolt.Tx, nid uint64) (offset uint64, exists bool, err error) {
	prefix := chunkPtrPrefix(nid)
	upper := chunkPtrKey(nid, math.MaxUint64)

	c := tx.Bucket(bucketName).Cursor()
	c.Seek(upper)
	k, _ := c.Prev()
	if k == nil || !bytes.HasPrefix(k, prefix) {
		return 0, false, nil
	}

	off, derr := decodeChunkOffset(k, nid)
	if derr != nil {
		return 0, false, ErrIO
	}
	return off, true, nil
}
