package match

import (
	"fmt"
	"testing"
)

func openGame(id, hostID string) *Session {
	return &Session{ID: id, HostPlayerID: hostID, HostUsername: "Anonymous", Status: StatusOpen}
}

func inProgress(id, whiteID, blackID string) *Session {
	return &Session{
		ID:            id,
		WhitePlayerID: whiteID,
		BlackPlayerID: blackID,
		Status:        StatusInProgress,
		CurrentTurn:   White,
	}
}

func TestLobbyAddRemoveInterleaved(t *testing.T) {
	s := NewStore("p1", nil)

	// Removals may arrive before or after additions in any order.
	s.RemoveOpenGame("g-unknown")
	for i := 0; i < 5; i++ {
		s.AddOpenGame(openGame(fmt.Sprintf("g%d", i), "h"))
	}
	s.RemoveOpenGame("g1")
	s.RemoveOpenGame("g3")
	s.AddOpenGame(openGame("g5", "h"))
	s.RemoveOpenGame("g3")

	got := s.OpenGames()
	want := []string{"g5", "g4", "g2", "g0"}
	if len(got) != len(want) {
		t.Fatalf("expected %d games, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestLobbyNeverDuplicatesIDs(t *testing.T) {
	s := NewStore("p1", nil)
	var added int
	s.OnGameAdded(func(*Session) { added++ })

	// Broker broadcast and REST page both announce the same game.
	s.AddOpenGame(openGame("g1", "h"))
	s.AddOpenGame(openGame("g1", "h"))

	if n := len(s.OpenGames()); n != 1 {
		t.Fatalf("expected 1 game, got %d", n)
	}
	if added != 1 {
		t.Fatalf("expected 1 added notification, got %d", added)
	}
}

func TestNewestFirstOrdering(t *testing.T) {
	s := NewStore("p1", nil)
	s.AddOpenGame(openGame("older", "h"))
	s.AddOpenGame(openGame("newer", "h"))
	got := s.OpenGames()
	if got[0].ID != "newer" || got[1].ID != "older" {
		t.Fatalf("expected newest-first ordering, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestTurnAlternation(t *testing.T) {
	s := NewStore("p1", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))

	s.ApplyMove(MoveEvent{GameID: "g1", Color: White, From: "e2", To: "e4", SAN: "e4"})
	if cur := s.Current(); cur.CurrentTurn != Black {
		t.Fatalf("expected BLACK to move, got %s", cur.CurrentTurn)
	}

	s.ApplyMove(MoveEvent{GameID: "g1", Color: Black, From: "e7", To: "e5", SAN: "e5"})
	if cur := s.Current(); cur.CurrentTurn != White {
		t.Fatalf("expected WHITE to move, got %s", cur.CurrentTurn)
	}
}

func TestMoveWithoutCurrentSessionIsNoop(t *testing.T) {
	s := NewStore("p1", nil)
	var moves int
	s.OnMoveReceived(func(MoveEvent) { moves++ })

	s.ApplyMove(MoveEvent{GameID: "g1", Color: White, From: "e2", To: "e4"})
	if moves != 0 {
		t.Fatalf("expected no move notifications, got %d", moves)
	}
}

func TestStaleGameMoveIgnored(t *testing.T) {
	s := NewStore("p1", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))

	s.ApplyMove(MoveEvent{GameID: "g-old", Color: White, From: "e2", To: "e4"})
	cur := s.Current()
	if cur.CurrentTurn != White || cur.Status != StatusInProgress {
		t.Fatalf("stale move mutated session: turn=%s status=%s", cur.CurrentTurn, cur.Status)
	}
}

func TestTerminalMoveCompletesOnce(t *testing.T) {
	s := NewStore("p1", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))

	var outcomes []Outcome
	s.OnMatchCompleted(func(o Outcome) { outcomes = append(outcomes, o) })

	mate := MoveEvent{GameID: "g1", Color: White, From: "h5", To: "f7", SAN: "Qxf7#", IsCheckmate: true, PGN: "1. e4"}
	s.ApplyMove(mate)

	cur := s.Current()
	if cur.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", cur.Status)
	}
	if len(outcomes) != 1 || outcomes[0] != OutcomeWin {
		t.Fatalf("expected single WIN outcome, got %v", outcomes)
	}

	// A replayed terminal event must leave everything untouched.
	before := *cur
	s.ApplyMove(mate)
	after := s.Current()
	if after.Status != before.Status || after.CurrentTurn != before.CurrentTurn || after.PGN != before.PGN {
		t.Fatalf("double terminal reapplied: %+v vs %+v", before, *after)
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcome resolved twice: %v", outcomes)
	}
}

func TestTerminalMoveAgainstLocalPlayer(t *testing.T) {
	s := NewStore("p2", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))

	var got Outcome
	s.OnMatchCompleted(func(o Outcome) { got = o })
	s.ApplyMove(MoveEvent{GameID: "g1", Color: White, IsCheckmate: true})
	if got != OutcomeLose {
		t.Fatalf("expected LOSE for the mated side, got %s", got)
	}
}

func TestSetCurrentRemovesLobbyEntry(t *testing.T) {
	s := NewStore("p1", nil)
	s.AddOpenGame(openGame("g1", "h"))

	var removed []string
	var joined *Session
	s.OnGameRemoved(func(id string) { removed = append(removed, id) })
	s.OnMatchJoined(func(sess *Session) { joined = sess })

	s.SetCurrent(inProgress("g1", "h", "p1"))

	if len(s.OpenGames()) != 0 {
		t.Fatalf("expected joined game removed from lobby")
	}
	if len(removed) != 1 || removed[0] != "g1" {
		t.Fatalf("expected removal notification for g1, got %v", removed)
	}
	if joined == nil || joined.ID != "g1" {
		t.Fatalf("expected joined notification for g1")
	}
	if c, ok := s.LocalColor(); !ok || c != Black {
		t.Fatalf("expected local color BLACK, got %s ok=%v", c, ok)
	}
}

func TestResetDropsCurrentSession(t *testing.T) {
	s := NewStore("p1", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))
	s.Reset()
	if s.Current() != nil {
		t.Fatalf("expected nil current session after reset")
	}
}

func TestRemovedObserverStopsFiring(t *testing.T) {
	s := NewStore("p1", nil)
	var calls int
	id := s.OnGameAdded(func(*Session) { calls++ })
	s.AddOpenGame(openGame("g1", "h"))
	s.RemoveGameAddedCallback(id)
	s.AddOpenGame(openGame("g2", "h"))
	if calls != 1 {
		t.Fatalf("expected 1 call after removal, got %d", calls)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewStore("p1", nil)
	s.SetCurrent(inProgress("g1", "p1", "p2"))
	cur := s.Current()
	cur.Status = StatusCancelled
	if s.Current().Status != StatusInProgress {
		t.Fatalf("mutating the returned session leaked into the store")
	}
}
