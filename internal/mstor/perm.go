package mstor

// wantType names the type a path component is expected to have when a
// resolver step or op handler checks it.
type wantType int

const (
	wantEither wantType = iota
	wantDir
	wantFile
)

// checkType gates on expected type: directory expected but file found
// is ENOTDIR, file expected but directory found is EISDIR.
func checkType(n *Node, want wantType) error {
	switch want {
	case wantDir:
		if !n.IsDir() {
			return ErrNotDir
		}
	case wantFile:
		if n.IsDir() {
			return ErrIsDir
		}
	}
	return nil
}

// accessMode bits mirror POSIX rwx numeric bits so they can be masked
// directly against a node's permission bits.
type accessMode uint32

const (
	accessExec  accessMode = 0x1
	accessWrite accessMode = 0x2
	accessRead  accessMode = 0x4
)

// checkAccess enforces §4.5: permissions never apply to the
// superuser or when checkPerms is false (the caller is on the
// superuser path, or mkdirs has cleared the flag for the remainder of
// a walk it's already creating directories along). Otherwise it tests,
// in the order the source does, world bits, then owner bits if uid
// matches, then group bits if the user is a member of the node's gid.
func checkAccess(n *Node, user User, want accessMode, checkPerms bool) error {
	if !checkPerms || user.UID == SuperuserUID {
		return nil
	}

	perm := uint32(n.Mode.Perm())
	other := perm & 0x7
	owner := (perm >> 6) & 0x7
	group := (perm >> 3) & 0x7
	w := uint32(want)

	if other&w == w {
		return nil
	}
	if user.UID == n.UID && owner&w == w {
		return nil
	}
	if user.InGroup(n.GID) && group&w == w {
		return nil
	}

	return ErrPermission
}
