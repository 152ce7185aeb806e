package realtime

import "testing"

func testSession(id string) *Session {
	return &Session{ID: id, send: make(chan []byte, 16)}
}

func TestRegistryJoinLeave(t *testing.T) {
	registry := NewRoomRegistry()
	s1 := testSession("s1")
	s2 := testSession("s2")

	registry.Join(5, s1)
	registry.Join(5, s2)
	if registry.Count(5) != 2 {
		t.Fatalf("expected 2 members, got %d", registry.Count(5))
	}

	registry.Leave(5, s1)
	members := registry.Members(5)
	if len(members) != 1 || members[0] != s2 {
		t.Fatal("expected only s2 to remain in the room")
	}
}

func TestRegistryLeaveIsIdempotent(t *testing.T) {
	registry := NewRoomRegistry()
	s1 := testSession("s1")
	s2 := testSession("s2")

	registry.Join(5, s2)

	// s1 never joined; leaving must not panic or disturb s2
	registry.Leave(5, s1)
	registry.Leave(9, s1)

	if registry.Count(5) != 1 {
		t.Errorf("expected s2 to still be a member, count = %d", registry.Count(5))
	}
}

func TestRegistryEmptyRoom(t *testing.T) {
	registry := NewRoomRegistry()
	s1 := testSession("s1")

	registry.Join(5, s1)
	registry.Leave(5, s1)

	if registry.Count(5) != 0 {
		t.Errorf("expected empty room, count = %d", registry.Count(5))
	}
	if members := registry.Members(5); members != nil {
		t.Errorf("expected nil members for empty room, got %d", len(members))
	}
}
