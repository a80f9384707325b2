package mstor

import "fmt"

// SequesterTree implements §4.6 SEQUESTER_TREE. Reserved for a future
// soft-delete mechanism; not implemented.
func (s *Store) SequesterTree(path, userName string) error {
	return fmt.Errorf("%w: SEQUESTER_TREE", ErrNotSupported)
}

// FindSequestered implements §4.6 FIND_SEQUESTERED. Reserved; not
// implemented.
func (s *Store) FindSequestered(olderThan uint64) ([]uint64, error) {
	return nil, fmt.Errorf("%w: FIND_SEQUESTERED", ErrNotSupported)
}

// DestroySequestered implements §4.6 DESTROY_SEQUESTERED. Reserved;
// not implemented.
func (s *Store) DestroySequestered(nid uint64) error {
	return fmt.Errorf("%w: DESTROY_SEQUESTERED", ErrNotSupported)
}

// Rename implements §4.6 RENAME. Its semantics are left open pending
// how it composes with replica placement and sequestration, so it
// always returns ENOTSUP.
func (s *Store) Rename(oldPath, newPath, userName string) error {
	return fmt.Errorf("%w: RENAME", ErrNotSupported)
}
