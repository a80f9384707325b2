package mstor

import (
	"github.com/boltdb/bolt"
)

// chunkfindCore implements §4.6 CHUNKFIND against an already-resolved
// node: returns every chunk that may overlap [start, end], including
// the one immediately preceding start (since a chunk's span isn't
// recorded, only its start offset). Requires read on the node itself;
// callers are responsible for any ancestor-directory walk their entry
// point calls for.
func (s *Store) chunkfindCore(tx *bolt.Tx, node *Node, user User, start, end uint64, maxCinfos int) ([]ChunkInfo, error) {
	checkPerms := user.UID != SuperuserUID
	if err := checkType(node, wantFile); err != nil {
		return nil, err
	}
	if err := checkAccess(node, user, accessRead, checkPerms); err != nil {
		return nil, err
	}
	return s.chunkFindTx(tx, node.NID, start, end, maxCinfos)
}

// Chunkfind is the path-addressed form of CHUNKFIND: it runs the full
// ancestor-directory walk of resolvePath before checking read access on
// the file itself. Wire-facing callers should prefer ChunkfindByNID,
// which §4.6 specifies as `CHUNKFIND (nid, start, end, max_cinfos)` —
// a nid already in hand has no ancestor directories left to check.
func (s *Store) Chunkfind(path, userName string, start, end uint64, maxCinfos int) ([]ChunkInfo, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return nil, err
	}

	var out []ChunkInfo
	err = s.db.View(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}
		cinfos, cerr := s.chunkfindCore(tx, res.child, user, start, end, maxCinfos)
		if cerr != nil {
			return cerr
		}
		out = cinfos
		return nil
	})
	return out, err
}

// ChunkfindByNID implements §4.6 CHUNKFIND's literal `(nid, start, end,
// max_cinfos)` signature: it looks the node up directly and checks read
// access on it, with no ancestor-directory permission walk at all.
func (s *Store) ChunkfindByNID(nid uint64, userName string, start, end uint64, maxCinfos int) ([]ChunkInfo, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return nil, err
	}

	var out []ChunkInfo
	err = s.db.View(func(tx *bolt.Tx) error {
		node, gerr := s.getNode(tx, nid)
		if gerr != nil {
			return gerr
		}
		cinfos, cerr := s.chunkfindCore(tx, node, user, start, end, maxCinfos)
		if cerr != nil {
			return cerr
		}
		out = cinfos
		return nil
	})
	return out, err
}

// chunkallocCore implements §4.6 CHUNKALLOC against an already-resolved
// node: allocates a new chunk id and replica set for a write at offset,
// requiring write access on the node itself. The offset must land
// strictly past every chunk already recorded for this file — mstor
// enforces append-only chunk layout, so an out-of-order offset is
// rejected EINVAL rather than silently reordering chunkfind's results
// (see DESIGN.md Open Questions for why this supersedes a literal
// "chunkfind [off,off] must be empty" reading).
//
// The node's recorded Length is extended by a chunk span rather than a
// single byte: the span is the gap since the previous chunk (or
// DefaultChunkSpan for the first chunk on a file), clamped to
// [MinChunkSpan, MaxChunkSpan] so a pathological caller can't blow the
// tracked length out to the full uint64 range on one call.
func (s *Store) chunkallocCore(tx *bolt.Tx, node *Node, user User, offset uint64) (cid uint64, oids []uint32, err error) {
	checkPerms := user.UID != SuperuserUID
	if err := checkType(node, wantFile); err != nil {
		return 0, nil, err
	}
	if err := checkAccess(node, user, accessWrite, checkPerms); err != nil {
		return 0, nil, err
	}

	maxOff, exists, merr := s.maxChunkOffset(tx, node.NID)
	if merr != nil {
		return 0, nil, merr
	}
	if exists && offset <= maxOff {
		return 0, nil, ErrInvalid
	}

	n := s.cfg.ManRepl
	if n < 1 {
		n = 1
	}
	assigned, perr := s.placer.AssignReplicas(n)
	if perr != nil {
		return 0, nil, perr
	}

	id, aerr := s.nextCID.alloc()
	if aerr != nil {
		return 0, nil, aerr
	}

	b := tx.Bucket(bucketName)
	if err := b.Put(chunkPtrKey(node.NID, offset), u64be(id)); err != nil {
		return 0, nil, ErrIO
	}
	if err := b.Put(replicaKey(id), encodeOIDs(assigned)); err != nil {
		return 0, nil, ErrIO
	}

	span := uint64(DefaultChunkSpan)
	if exists {
		span = offset - maxOff
	}
	span = clampChunkSpan(span)
	if end := offset + span; end > node.Length {
		fresh, gerr := s.getNode(tx, node.NID)
		if gerr != nil {
			return 0, nil, gerr
		}
		fresh.Length = end
		if err := s.putNode(tx, fresh); err != nil {
			return 0, nil, err
		}
	}

	return id, assigned, nil
}

// Chunkalloc is the path-addressed form of CHUNKALLOC: it runs the full
// ancestor-directory walk of resolvePath before checking write access
// on the file itself. Wire-facing callers should prefer
// ChunkallocByNID, which §4.6 specifies as `CHUNKALLOC (nid, off)`.
func (s *Store) Chunkalloc(path, userName string, offset uint64) (cid uint64, oids []uint32, err error) {
	user, rerr := s.resolveUser(userName)
	if rerr != nil {
		return 0, nil, rerr
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}
		var cerr error
		cid, oids, cerr = s.chunkallocCore(tx, res.child, user, offset)
		return cerr
	})
	return cid, oids, err
}

// ChunkallocByNID implements §4.6 CHUNKALLOC's literal `(nid, off)`
// signature: it looks the node up directly and checks write access on
// it, with no ancestor-directory permission walk at all.
func (s *Store) ChunkallocByNID(nid uint64, userName string, offset uint64) (cid uint64, oids []uint32, err error) {
	user, rerr := s.resolveUser(userName)
	if rerr != nil {
		return 0, nil, rerr
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		node, gerr := s.getNode(tx, nid)
		if gerr != nil {
			return gerr
		}
		var cerr error
		cid, oids, cerr = s.chunkallocCore(tx, node, user, offset)
		return cerr
	})
	return cid, oids, err
}
