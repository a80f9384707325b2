package mstor

import (
	"os"
	"testing"
	"time"
)

func TestNodeEncodeDecodeRoundtrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	n := &Node{
		NID:    9,
		Mtime:  now,
		Atime:  now.Add(time.Hour),
		Length: 123456,
		UID:    1000,
		GID:    2000,
		Mode:   os.ModeDir | 0750,
	}

	enc := encodeNode(n)
	if len(enc) != nodePayloadLen {
		t.Fatalf("encodeNode: got %d bytes, want %d", len(enc), nodePayloadLen)
	}

	got, err := decodeNode(n.NID, enc)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	if !got.IsDir() {
		t.Fatal("decodeNode: IS_DIR bit lost")
	}
	if got.Mode.Perm() != 0750 {
		t.Fatalf("decodeNode: perm got %v, want %v", got.Mode.Perm(), os.FileMode(0750))
	}
	if got.Length != n.Length || got.UID != n.UID || got.GID != n.GID {
		t.Fatalf("decodeNode: fields mismatch: %+v", got)
	}
	if !got.Mtime.Equal(n.Mtime) || !got.Atime.Equal(n.Atime) {
		t.Fatalf("decodeNode: timestamps mismatch: mtime=%v atime=%v", got.Mtime, got.Atime)
	}
}

func TestDecodeNodeRejectsShortBuffer(t *testing.T) {
	if _, err := decodeNode(1, []byte{1, 2, 3}); err == nil {
		t.Fatal("decodeNode: expected error on short payload")
	}
}

func TestNodeIsDirFalseForFile(t *testing.T) {
	n := &Node{Mode: 0644}
	if n.IsDir() {
		t.Fatal("plain file node must not report IsDir")
	}
}
