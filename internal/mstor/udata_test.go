package mstor

import "testing"

func TestStaticUserDirectoryLookup(t *testing.T) {
	d := NewStaticUserDirectory()
	d.AddUser(User{Name: "alice", UID: 100, GID: 100})
	d.AddGroup(Group{Name: "staff", GID: 100})

	u, err := d.LookupUser("alice")
	if err != nil {
		t.Fatalf("LookupUser: %v", err)
	}
	if u.UID != 100 {
		t.Fatalf("LookupUser uid = %d, want 100", u.UID)
	}

	if _, err := d.LookupUser("bob"); err == nil {
		t.Fatal("LookupUser: expected error for unknown user")
	}

	g, err := d.LookupGroup("staff")
	if err != nil {
		t.Fatalf("LookupGroup: %v", err)
	}
	if g.GID != 100 {
		t.Fatalf("LookupGroup gid = %d, want 100", g.GID)
	}

	if _, err := d.LookupGroup("nobody"); err == nil {
		t.Fatal("LookupGroup: expected error for unknown group")
	}
}
