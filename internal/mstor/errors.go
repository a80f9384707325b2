package mstor

import "errors"

// Sentinel errors returned by store operations. They are deliberately
// coarse (matching the POSIX-style taxonomy of the operation contract)
// rather than one type per call site; wrap with fmt.Errorf("%w: ...")
// at the point of detection to add detail without losing errors.Is.
var (
	ErrNotExist     = errors.New("mstor: no such file or directory")
	ErrExist        = errors.New("mstor: file already exists")
	ErrNotDir       = errors.New("mstor: not a directory")
	ErrIsDir        = errors.New("mstor: is a directory")
	ErrPermission   = errors.New("mstor: permission denied")
	ErrNotEmpty     = errors.New("mstor: directory not empty")
	ErrNameTooLong  = errors.New("mstor: name or record too long")
	ErrInvalid      = errors.New("mstor: invalid argument")
	ErrIO           = errors.New("mstor: storage engine error")
	ErrNoMem        = errors.New("mstor: allocation failed")
	ErrNotSupported = errors.New("mstor: operation not supported")
	ErrUsers        = errors.New("mstor: user lookup failed")
	ErrOverflow     = errors.New("mstor: identifier space exhausted")
)

// Code maps an error returned from this package to the POSIX-style
// code named in its operation's contract. Callers that only need to
// log the error can ignore this; a dispatch layer above mstor that
// needs to branch on error kind uses it instead of string-matching.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotExist):
		return "ENOENT"
	case errors.Is(err, ErrExist):
		return "EEXIST"
	case errors.Is(err, ErrNotDir):
		return "ENOTDIR"
	case errors.Is(err, ErrIsDir):
		return "EISDIR"
	case errors.Is(err, ErrPermission):
		return "EPERM"
	case errors.Is(err, ErrNotEmpty):
		return "ENOTEMPTY"
	case errors.Is(err, ErrNameTooLong):
		return "ENAMETOOLONG"
	case errors.Is(err, ErrInvalid):
		return "EINVAL"
	case errors.Is(err, ErrIO):
		return "EIO"
	case errors.Is(err, ErrNoMem):
		return "ENOMEM"
	case errors.Is(err, ErrNotSupported):
		return "ENOTSUP"
	case errors.Is(err, ErrUsers):
		return "EUSERS"
	case errors.Is(err, ErrOverflow):
		return "EOVERFLOW"
	default:
		return ""
	}
}
