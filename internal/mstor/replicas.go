package mstor

import (
	"fmt"
	"sync/atomic"
)

// MaxReplicas is RF_MAX_REPLICAS, the upper bound a ReplicaPlacer may
// return from AssignReplicas.
const MaxReplicas = 8

// ReplicaPlacer is the OSD placement policy, external to the core per
// §1: mstor only ever calls assign_replicas(n) -> oid[]; it never
// reasons about OSD load, failure domains, or capacity itself.
type ReplicaPlacer interface {
	AssignReplicas(n int) ([]uint32, error)
}

// RoundRobinPlacer cycles through a fixed OSD pool. It stands in for
// the real placement policy in tests and single-node deployments.
type RoundRobinPlacer struct {
	oids []uint32
	next atomic.Uint64
}

// NewRoundRobinPlacer returns a placer that hands out oids from pool
// in round-robin order.
func NewRoundRobinPlacer(pool []uint32) *RoundRobinPlacer {
	return &RoundRobinPlacer{oids: pool}
}

func (p *RoundRobinPlacer) AssignReplicas(n int) ([]uint32, error) {
	if n < 1 || n > MaxReplicas {
		return nil, fmt.Errorf("%w: replica count %d out of range", ErrInvalid, n)
	}
	if len(p.oids) == 0 {
		return nil, fmt.Errorf("%w: no OSDs available", ErrInvalid)
	}

	out := make([]uint32, n)
	for i := range out {
		idx := p.next.Add(1) - 1
		out[i] = p.oids[int(idx)%len(p.oids)]
	}
	return out, nil
}
