package mstor

import (
	"bytes"
	"os"

	"github.com/boltdb/bolt"
)

// Creat implements §4.6 CREAT: requires write+IS_DIR on the parent,
// fails EEXIST if the child already exists, otherwise allocates a nid
// and batch-writes the child pointer and the new node in one
// transaction.
func (s *Store) Creat(path, userName string, mode os.FileMode) (uint64, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return 0, err
	}

	var nid uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.parent == nil {
			// full_path resolved to the root itself.
			return ErrExist
		}
		if res.child != nil {
			return ErrExist
		}

		checkPerms := user.UID != SuperuserUID
		if err := checkType(res.parent, wantDir); err != nil {
			return err
		}
		if err := checkAccess(res.parent, user, accessWrite, checkPerms); err != nil {
			return err
		}

		id, aerr := s.nextNID.alloc()
		if aerr != nil {
			return aerr
		}

		now := s.now()
		node := &Node{
			NID:   id,
			Mtime: now,
			Atime: now,
			UID:   user.UID,
			GID:   user.GID,
			Mode:  mode.Perm(), // CREAT never sets IS_DIR
		}
		if err := s.putNode(tx, node); err != nil {
			return err
		}
		if err := s.putChild(tx, res.parent.NID, res.name, id); err != nil {
			return err
		}

		nid = id
		return nil
	})
	return nid, err
}

// Open implements §4.6 OPEN: requires read on the file and updates
// atime in place. The node is re-read under its stripe lock so a
// concurrent chmod/chown/utimes on the same nid can never be lost.
func (s *Store) Open(path, userName string) (uint64, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return 0, err
	}

	var nid uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}

		checkPerms := user.UID != SuperuserUID
		if err := checkType(res.child, wantFile); err != nil {
			return err
		}
		if err := checkAccess(res.child, user, accessRead, checkPerms); err != nil {
			return err
		}

		unlock := s.locks.lock(res.child.NID)
		defer unlock()

		fresh, gerr := s.getNode(tx, res.child.NID)
		if gerr != nil {
			return gerr
		}
		fresh.Atime = s.now()
		if err := s.putNode(tx, fresh); err != nil {
			return err
		}

		nid = fresh.NID
		return nil
	})
	return nid, err
}

// Mkdirs implements §4.6 MKDIRS: creates one directory at each missing
// path component. Descending into an existing component requires
// exec+IS_DIR like any other path-walk step; creating a missing one
// requires write+IS_DIR on its parent. Per §4.4 step 6, once an
// intermediate directory has been created the permission check is
// cleared for the remainder of the walk, so a caller may mkdirs into a
// mode that excludes exec for itself.
func (s *Store) Mkdirs(path, userName string, mode os.FileMode) (uint64, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return 0, err
	}

	var lastNID uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		clean, cerr := canonicalizePath(path)
		if cerr != nil {
			return cerr
		}
		comps, serr := splitComponents(clean)
		if serr != nil {
			return serr
		}

		cnode, gerr := s.getNode(tx, RootNID)
		if gerr != nil {
			return gerr
		}
		lastNID = cnode.NID
		if len(comps) == 0 {
			return nil
		}

		checkPerms := user.UID != SuperuserUID
		for _, comp := range comps {
			pnode := cnode
			if err := checkType(pnode, wantDir); err != nil {
				return err
			}

			cid, gerr := s.getChild(tx, pnode.NID, comp)
			if gerr == nil {
				if err := checkAccess(pnode, user, accessExec, checkPerms); err != nil {
					return err
				}
				child, nerr := s.getNode(tx, cid)
				if nerr != nil {
					return nerr
				}
				if !child.IsDir() {
					return ErrNotDir
				}
				cnode = child
				continue
			}
			if gerr != ErrNotExist {
				return gerr
			}

			if err := checkAccess(pnode, user, accessWrite, checkPerms); err != nil {
				return err
			}

			id, aerr := s.nextNID.alloc()
			if aerr != nil {
				return aerr
			}
			now := s.now()
			newNode := &Node{
				NID:   id,
				Mtime: now,
				Atime: now,
				UID:   user.UID,
				GID:   user.GID,
				Mode:  mode.Perm() | os.ModeDir,
			}
			if err := s.putNode(tx, newNode); err != nil {
				return err
			}
			if err := s.putChild(tx, pnode.NID, comp, id); err != nil {
				return err
			}

			cnode = newNode
			checkPerms = false
		}

		lastNID = cnode.NID
		return nil
	})
	return lastNID, err
}

// Stat implements §4.6 STAT: requires read+IS_DIR on the parent (not
// checked for the root, which has none) and serializes one stat record
// for the resolved node.
func (s *Store) Stat(path, userName string) (StatInfo, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return StatInfo{}, err
	}

	var si StatInfo
	err = s.db.View(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}
		if res.parent != nil {
			checkPerms := user.UID != SuperuserUID
			if err := checkType(res.parent, wantDir); err != nil {
				return err
			}
			if err := checkAccess(res.parent, user, accessRead, checkPerms); err != nil {
				return err
			}
		}
		si = toStatInfo(res.name, res.child, s.cfg.ManRepl)
		return nil
	})
	return si, err
}

// Listdir implements §4.6 LISTDIR: seeks to the directory's child
// prefix and appends a stat record per live entry. A concurrently
// deleted child (ENOENT on fetch) is tolerated and skipped; every
// other error propagates. If maxBytes is positive and an entry would
// overflow it, the whole call fails ENAMETOOLONG, matching "the
// caller is expected to provide adequate capacity."
func (s *Store) Listdir(path, userName string, maxBytes int) ([]StatInfo, error) {
	user, err := s.resolveUser(userName)
	if err != nil {
		return nil, err
	}

	var out []StatInfo
	err = s.db.View(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}
		dnode := res.child

		checkPerms := user.UID != SuperuserUID
		if err := checkType(dnode, wantDir); err != nil {
			return err
		}
		if err := checkAccess(dnode, user, accessRead, checkPerms); err != nil {
			return err
		}

		c := tx.Bucket(bucketName).Cursor()
		prefix := childPrefix(dnode.NID)
		used := 0
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			name, derr := decodeChildName(k, dnode.NID)
			if derr != nil {
				continue
			}
			if len(v) != 8 {
				return ErrIO
			}
			child, gerr := s.getNode(tx, be64u(v))
			if gerr != nil {
				if gerr == ErrNotExist {
					continue
				}
				return gerr
			}

			si := toStatInfo(name, child, s.cfg.ManRepl)
			if maxBytes > 0 {
				used += len(EncodeStat(si))
				if used > maxBytes {
					return ErrNameTooLong
				}
			}
			out = append(out, si)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
