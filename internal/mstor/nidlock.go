package mstor

import "sync"

// nidLockStripes bounds the striped lock table used to serialize
// read-modify-write on a single node record (atime on open, mode on
// chmod, owner on chown, times on utimes), closing the gap left by a
// fetch-then-put sequence with either a striped lock keyed by nid or
// CAS against a per-node version. Bolt's single-writer-transaction
// model already serializes concurrent Update calls against each
// other, so the stripe below exists to make the per-nid RMW contract
// explicit at the call site rather than relying on an implementation
// detail of the storage engine to happen to provide it.
const nidLockStripes = 256

type nidLockTable struct {
	mus [nidLockStripes]sync.Mutex
}

func newNIDLockTable() *nidLockTable {
	return &nidLockTable{}
}

// lock acquires the stripe for nid and returns the matching unlock
// function; call it with `defer`.
func (t *nidLockTable) lock(nid uint64) func() {
	m := &t.mus[nid%nidLockStripes]
	m.Lock()
	return m.Unlock
}
