package mstor

import (
	"bytes"

	"github.com/boltdb/bolt"
)

// Rmdir implements §4.6 RMDIR: the parent must permit write+IS_DIR.
// A non-recursive rmdir on a directory with any entry fails
// ENOTEMPTY; a recursive one deletes every transitively-reachable
// child and the target itself inside this single bolt transaction, so
// the whole subtree disappears atomically.
func (s *Store) Rmdir(path, userName string, recursive bool) error {
	user, err := s.resolveUser(userName)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		res, rerr := s.resolvePath(tx, path, user)
		if rerr != nil {
			return rerr
		}
		if res.child == nil {
			return ErrNotExist
		}
		if res.parent == nil {
			// path resolved to the root, which has no parent to rmdir it from.
			return ErrPermission
		}

		checkPerms := user.UID != SuperuserUID
		if err := checkType(res.child, wantDir); err != nil {
			return err
		}
		if err := checkType(res.parent, wantDir); err != nil {
			return err
		}
		if err := checkAccess(res.parent, user, accessWrite, checkPerms); err != nil {
			return err
		}

		hasChildren, err := s.hasAnyChild(tx, res.child.NID)
		if err != nil {
			return err
		}
		if hasChildren && !recursive {
			return ErrNotEmpty
		}
		if hasChildren {
			if err := s.rmdirRecursive(tx, res.child, user, checkPerms); err != nil {
				return err
			}
		}

		if err := s.delChild(tx, res.parent.NID, res.name); err != nil {
			return err
		}
		return s.delNode(tx, res.child.NID)
	})
}

func (s *Store) hasAnyChild(tx *bolt.Tx, parent uint64) (bool, error) {
	prefix := childPrefix(parent)
	c := tx.Bucket(bucketName).Cursor()
	k, _ := c.Seek(prefix)
	return k != nil && bytes.HasPrefix(k, prefix), nil
}

// rmdirRecursive deletes every child of node, descending into
// subdirectories first, inside the caller's transaction. Children are
// collected into a slice before any delete runs, since mutating the
// bucket mid-cursor-iteration is unsafe.
func (s *Store) rmdirRecursive(tx *bolt.Tx, node *Node, user User, checkPerms bool) error {
	type entry struct {
		name string
		nid  uint64
	}

	var children []entry
	prefix := childPrefix(node.NID)
	c := tx.Bucket(bucketName).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		name, derr := decodeChildName(k, node.NID)
		if derr != nil {
			continue
		}
		if len(v) != 8 {
			return ErrIO
		}
		children = append(children, entry{name: name, nid: be64u(v)})
	}

	for _, ch := range children {
		childNode, gerr := s.getNode(tx, ch.nid)
		if gerr != nil {
			if gerr == ErrNotExist {
				continue
			}
			return gerr
		}
		if err := checkAccess(childNode, user, accessWrite, checkPerms); err != nil {
			return err
		}
		if childNode.IsDir() {
			if err := s.rmdirRecursive(tx, childNode, user, checkPerms); err != nil {
				return err
			}
		}
		if err := s.delChild(tx, node.NID, ch.name); err != nil {
			return err
		}
		if err := s.delNode(tx, ch.nid); err != nil {
			return err
		}
	}

	return nil
}
