package mstor

import (
	"os"
	"time"

	"github.com/boltdb/bolt"
)

// InvalTime is INVAL_TIME: passed to Utimes to mean "do not change
// this timestamp."
var InvalTime = time.Time{}

// Chmod implements §4.6 CHMOD: overwrites the mode bits, preserving
// the IS_DIR flag (a node can never change file<->dir by chmod).
// Ownership of the node is required unless the caller is the
// superuser, the same owner-or-superuser rule CHOWN uses for its
// owner change (see DESIGN.md Open Questions).
func (s *Store) Chmod(path, userName string, mode os.FileMode) error {
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

		checkPerms := user.UID != SuperuserUID
		if checkPerms && user.UID != res.child.UID {
			return ErrPermission
		}

		unlock := s.locks.lock(res.child.NID)
		defer unlock()

		fresh, gerr := s.getNode(tx, res.child.NID)
		if gerr != nil {
			return gerr
		}
		dirBit := fresh.Mode & os.ModeDir
		fresh.Mode = mode.Perm() | dirBit
		return s.putNode(tx, fresh)
	})
}

// Chown implements §4.6 CHOWN: resolves optional new owner/group via
// UserDirectory. Under CHECK_PERMS, changing owner is reserved to the
// superuser; changing group requires the caller to already own the
// node and be a member of the new group. Empty names mean "don't
// change".
func (s *Store) Chown(path, userName, newUserName, newGroupName string) error {
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
		node := res.child
		checkPerms := user.UID != SuperuserUID

		var newUID, newGID *uint32
		if newUserName != "" {
			if checkPerms {
				return ErrPermission
			}
			nu, uerr := s.udir.LookupUser(newUserName)
			if uerr != nil {
				return uerr
			}
			newUID = &nu.UID
		}
		if newGroupName != "" {
			ng, gerr := s.udir.LookupGroup(newGroupName)
			if gerr != nil {
				return gerr
			}
			if checkPerms {
				if user.UID != node.UID {
					return ErrPermission
				}
				if !user.InGroup(ng.GID) {
					return ErrPermission
				}
			}
			newGID = &ng.GID
		}

		unlock := s.locks.lock(node.NID)
		defer unlock()

		fresh, gerr := s.getNode(tx, node.NID)
		if gerr != nil {
			return gerr
		}
		if newUID != nil {
			fresh.UID = *newUID
		}
		if newGID != nil {
			fresh.GID = *newGID
		}
		return s.putNode(tx, fresh)
	})
}

// Utimes implements §4.6 UTIMES: updates atime/mtime, where InvalTime
// means "do not change". Requires ownership, like Chmod.
func (s *Store) Utimes(path, userName string, atime, mtime time.Time) error {
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

		checkPerms := user.UID != SuperuserUID
		if checkPerms && user.UID != res.child.UID {
			return ErrPermission
		}

		unlock := s.locks.lock(res.child.NID)
		defer unlock()

		fresh, gerr := s.getNode(tx, res.child.NID)
		if gerr != nil {
			return gerr
		}
		if !atime.IsZero() {
			fresh.Atime = atime
		}
		if !mtime.IsZero() {
			fresh.Mtime = mtime
		}
		return s.putNode(tx, fresh)
	})
}
