package mstor

import (
	"fmt"
	"os"
	"time"
)

// Op tags which operation a Request carries, mirroring the external
// tagged-record interface of §6. Concrete Go callers should prefer
// calling the Store methods directly; Dispatch exists for callers that
// sit behind a wire boundary and only have an already-decoded,
// already-tagged record to act on.
type Op int

const (
	OpCreat Op = iota
	OpOpen
	OpMkdirs
	OpStat
	OpListdir
	OpChmod
	OpChown
	OpUtimes
	OpRmdir
	OpChunkfind
	OpChunkalloc
	OpSequesterTree
	OpFindSequestered
	OpDestroySequestered
	OpRename
)

// Request is one dispatchable call against a Store. Only the fields
// relevant to Op are read; the rest are ignored.
type Request struct {
	Op       Op
	Path     string
	NewPath  string
	User     string
	NewUser  string
	NewGroup string
	Mode     os.FileMode
	Atime    time.Time
	Mtime    time.Time
	Start    uint64
	End      uint64
	Offset   uint64
	MaxBytes int
	MaxCount int
	Recurse  bool
	OlderAt  uint64

	// NID addresses OpChunkfind, OpChunkalloc, and OpDestroySequestered
	// directly by node id, matching §4.6's nid-based signatures for
	// those three operations; every other op is path-addressed via
	// Path instead.
	NID uint64
}

// Response is the uniform result of Dispatch. Only the field(s)
// relevant to the request's Op are populated.
type Response struct {
	NID     uint64
	CID     uint64
	OIDs    []uint32
	Stat    StatInfo
	Entries []StatInfo
	Chunks  []ChunkInfo
	NIDs    []uint64
}

// Dispatch routes req to the matching Store method and folds its
// return values into a single Response, for callers that decode
// requests off a wire format rather than calling Go methods directly.
func (s *Store) Dispatch(req Request) (Response, error) {
	switch req.Op {
	case OpCreat:
		nid, err := s.Creat(req.Path, req.User, req.Mode)
		return Response{NID: nid}, err

	case OpOpen:
		nid, err := s.Open(req.Path, req.User)
		return Response{NID: nid}, err

	case OpMkdirs:
		nid, err := s.Mkdirs(req.Path, req.User, req.Mode)
		return Response{NID: nid}, err

	case OpStat:
		si, err := s.Stat(req.Path, req.User)
		return Response{Stat: si}, err

	case OpListdir:
		entries, err := s.Listdir(req.Path, req.User, req.MaxBytes)
		return Response{Entries: entries}, err

	case OpChmod:
		return Response{}, s.Chmod(req.Path, req.User, req.Mode)

	case OpChown:
		return Response{}, s.Chown(req.Path, req.User, req.NewUser, req.NewGroup)

	case OpUtimes:
		return Response{}, s.Utimes(req.Path, req.User, req.Atime, req.Mtime)

	case OpRmdir:
		return Response{}, s.Rmdir(req.Path, req.User, req.Recurse)

	case OpChunkfind:
		chunks, err := s.ChunkfindByNID(req.NID, req.User, req.Start, req.End, req.MaxCount)
		return Response{Chunks: chunks}, err

	case OpChunkalloc:
		cid, oids, err := s.ChunkallocByNID(req.NID, req.User, req.Offset)
		return Response{CID: cid, OIDs: oids}, err

	case OpSequesterTree:
		return Response{}, s.SequesterTree(req.Path, req.User)

	case OpFindSequestered:
		nids, err := s.FindSequestered(req.OlderAt)
		return Response{NIDs: nids}, err

	case OpDestroySequestered:
		return Response{}, s.DestroySequestered(req.NID)

	case OpRename:
		return Response{}, s.Rename(req.Path, req.NewPath, req.User)

	default:
		return Response{}, fmt.Errorf("%w: unknown op %d", ErrInvalid, req.Op)
	}
}
