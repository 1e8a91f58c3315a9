package match

import "testing"

func TestAnonymousHostRequiresExactName(t *testing.T) {
	cases := []struct {
		username string
		want     bool
	}{
		{"Anonymous", true},
		{"", false},
		{"alice", false},
		{"anonymous", false},
	}
	for _, tc := range cases {
		s := &Session{ID: "g1", HostUsername: tc.username}
		if got := s.AnonymousHost(); got != tc.want {
			t.Fatalf("AnonymousHost(%q) = %v, want %v", tc.username, got, tc.want)
		}
	}
}

func TestSeatOf(t *testing.T) {
	s := &Session{ID: "g1", WhitePlayerID: "w1", BlackPlayerID: "b1"}
	if c, ok := s.SeatOf("w1"); !ok || c != White {
		t.Fatalf("SeatOf(w1) = %s, %v", c, ok)
	}
	if c, ok := s.SeatOf("b1"); !ok || c != Black {
		t.Fatalf("SeatOf(b1) = %s, %v", c, ok)
	}
	if _, ok := s.SeatOf("spectator"); ok {
		t.Fatalf("unseated player reported a seat")
	}
	if _, ok := s.SeatOf(""); ok {
		t.Fatalf("empty id reported a seat")
	}
}
