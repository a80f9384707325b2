package mstor

import (
	"bytes"
	"testing"
)

func TestKeyFamilyOrdering(t *testing.T) {
	// c(99) < f(102) < h(104) < n(110) < u(117) < v(118) must hold so
	// family-ceiling seeks land on the right boundary.
	order := []byte{prefixChild, prefixChunkPtr, prefixReplica, prefixNode, prefixSequester, prefixVersion}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("family order broken at index %d: %q >= %q", i, order[i-1], order[i])
		}
	}
}

func TestU64BERoundtrip(t *testing.T) {
	vals := []uint64{0, 1, 0xff, 0xffffffffffff0000, ^uint64(0)}
	for _, v := range vals {
		if got := be64u(u64be(v)); got != v {
			t.Fatalf("u64be/be64u roundtrip: got %d, want %d", got, v)
		}
	}
}

func TestVersionRoundtrip(t *testing.T) {
	enc := encodeVersion(7)
	got, err := decodeVersion(enc)
	if err != nil {
		t.Fatalf("decodeVersion: %v", err)
	}
	if got != 7 {
		t.Fatalf("decodeVersion: got %d, want 7", got)
	}

	if _, err := decodeVersion([]byte{1, 2, 3}); err == nil {
		t.Fatal("decodeVersion: expected error on short buffer")
	}
	bad := encodeVersion(7)
	bad[0] = 'X'
	if _, err := decodeVersion(bad); err == nil {
		t.Fatal("decodeVersion: expected error on bad magic")
	}
}

func TestNodeKeyRoundtrip(t *testing.T) {
	k := nodeKey(42)
	nid, err := decodeNodeKey(k)
	if err != nil {
		t.Fatalf("decodeNodeKey: %v", err)
	}
	if nid != 42 {
		t.Fatalf("decodeNodeKey: got %d, want 42", nid)
	}
}

func TestChildKeyOrderingAndDecode(t *testing.T) {
	parent := uint64(5)
	ka := childKey(parent, "a.txt")
	kb := childKey(parent, "b.txt")
	if bytes.Compare(ka, kb) >= 0 {
		t.Fatal("child keys under the same parent must sort by name")
	}

	name, err := decodeChildName(ka, parent)
	if err != nil {
		t.Fatalf("decodeChildName: %v", err)
	}
	if name != "a.txt" {
		t.Fatalf("decodeChildName: got %q, want %q", name, "a.txt")
	}

	if !bytes.HasPrefix(ka, childPrefix(parent)) {
		t.Fatal("childKey must start with childPrefix")
	}
}

func TestChunkPtrKeyOrdering(t *testing.T) {
	nid := uint64(3)
	k0 := chunkPtrKey(nid, 0)
	k1 := chunkPtrKey(nid, 4096)
	if bytes.Compare(k0, k1) >= 0 {
		t.Fatal("chunk keys must sort by offset within a nid")
	}
	off, err := decodeChunkOffset(k1, nid)
	if err != nil {
		t.Fatalf("decodeChunkOffset: %v", err)
	}
	if off != 4096 {
		t.Fatalf("decodeChunkOffset: got %d, want 4096", off)
	}
}

func TestOIDsRoundtrip(t *testing.T) {
	in := []uint32{1, 2, 3, 0xffffffff}
	enc := encodeOIDs(in)
	out, err := decodeOIDs(enc)
	if err != nil {
		t.Fatalf("decodeOIDs: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decodeOIDs: got %d oids, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("decodeOIDs[%d]: got %d, want %d", i, out[i], in[i])
		}
	}

	if _, err := decodeOIDs([]byte{1, 2, 3}); err == nil {
		t.Fatal("decodeOIDs: expected error on non-multiple-of-4 buffer")
	}
}

func TestFamilyCeilingKeyIsAboveEveryRealKey(t *testing.T) {
	ceiling := familyCeilingKey(prefixNode, NIDMax)
	real := nodeKey(NIDMax - 1)
	if bytes.Compare(real, ceiling) >= 0 {
		t.Fatal("familyCeilingKey must sort after every real key below the ceiling")
	}
}
