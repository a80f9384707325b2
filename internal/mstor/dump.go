package mstor

import (
	"bufio"
	"fmt"
	"io"

	"github.com/boltdb/bolt"
)

// Dump writes a human-readable listing of every key in the store, one
// line per record, in on-disk (lexicographic) order. It exists for
// operational inspection: comparing a dump before and after an
// operation is often the fastest way to see exactly what a bug
// touched.
func (s *Store) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			line, derr := dumpLine(k, v)
			if derr != nil {
				return derr
			}
			if _, werr := fmt.Fprintln(bw, line); werr != nil {
				return fmt.Errorf("%w: write dump line: %v", ErrIO, werr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// dumpLine formats one on-disk record according to its family
// discriminator. An unrecognized discriminator is a corrupt key
// space, which is fatal to the dump (but not to the store itself).
func dumpLine(k, v []byte) (string, error) {
	if len(k) == 0 {
		return "", fmt.Errorf("%w: zero-length key", ErrInvalid)
	}

	switch k[0] {
	case prefixVersion:
		version, err := decodeVersion(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("version schema=%d", version), nil

	case prefixNode:
		nid, err := decodeNodeKey(k)
		if err != nil {
			return "", err
		}
		n, err := decodeNode(nid, v)
		if err != nil {
			return "", err
		}
		kind := "file"
		if n.IsDir() {
			kind = "dir"
		}
		return fmt.Sprintf("node nid=%d kind=%s mode=%v uid=%d gid=%d length=%d mtime=%s atime=%s",
			nid, kind, n.Mode.Perm(), n.UID, n.GID, n.Length,
			n.Mtime.Format("2006-01-02T15:04:05Z"), n.Atime.Format("2006-01-02T15:04:05Z")), nil

	case prefixChild:
		if len(v) != 8 {
			return "", fmt.Errorf("%w: malformed child record", ErrInvalid)
		}
		if len(k) < 9 {
			return "", fmt.Errorf("%w: malformed child key", ErrInvalid)
		}
		parent := be64u(k[1:9])
		name, err := decodeChildName(k, parent)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("child parent=%d name=%q nid=%d", parent, name, be64u(v)), nil

	case prefixChunkPtr:
		if len(k) < 9 {
			return "", fmt.Errorf("%w: malformed chunk key", ErrInvalid)
		}
		nid := be64u(k[1:9])
		offset, err := decodeChunkOffset(k, nid)
		if err != nil {
			return "", err
		}
		if len(v) != 8 {
			return "", fmt.Errorf("%w: malformed chunk record", ErrInvalid)
		}
		return fmt.Sprintf("chunk nid=%d offset=%d cid=%d", nid, offset, be64u(v)), nil

	case prefixReplica:
		if len(k) != 9 {
			return "", fmt.Errorf("%w: malformed replica key", ErrInvalid)
		}
		cid := be64u(k[1:9])
		oids, err := decodeOIDs(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("replica cid=%d oids=%v", cid, oids), nil

	case prefixSequester:
		if len(k) != 9 {
			return "", fmt.Errorf("%w: malformed sequester key", ErrInvalid)
		}
		return fmt.Sprintf("sequester unlink_time=%d", be64u(k[1:9])), nil

	default:
		return "", fmt.Errorf("%w: unknown key family %q", ErrInvalid, k[0])
	}
}
