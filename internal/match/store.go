package match

import (
	"sync"

	"go.uber.org/zap"
)

// callbackEntry pairs a registered observer with its removal handle.
type callbackEntry[T any] struct {
	id       int
	callback func(T)
}

// callbacks is one in-process notification stream: one writer, many
// readers. Invocation copies the registry so observers can never block
// or mutate the writer mid-delivery.
type callbacks[T any] struct {
	mu      sync.RWMutex
	nextID  int
	entries []callbackEntry[T]
}

func (c *callbacks[T]) add(cb func(T)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.entries = append(c.entries, callbackEntry[T]{id: c.nextID, callback: cb})
	return c.nextID
}

func (c *callbacks[T]) remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.id == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
}

func (c *callbacks[T]) invoke(v T) {
	c.mu.RLock()
	entries := make([]callbackEntry[T], len(c.entries))
	copy(entries, c.entries)
	c.mu.RUnlock()
	for _, e := range entries {
		if e.callback != nil {
			e.callback(v)
		}
	}
}

// Store holds the single current match session and the open-game lobby
// listing, and re-broadcasts broker events to interested observers.
// All mutation funnels through it; reads return copies.
type Store struct {
	playerID string
	log      *zap.Logger

	mu      sync.RWMutex
	current *Session
	open    []*Session

	gameAdded   callbacks[*Session]
	gameRemoved callbacks[string]
	moves       callbacks[MoveEvent]
	joined      callbacks[*Session]
	completed   callbacks[Outcome]
}

// NewStore creates a store for the given local player id.
func NewStore(playerID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{playerID: playerID, log: logger}
}

// PlayerID returns the local player's persistent identifier.
func (s *Store) PlayerID() string { return s.playerID }

// Current returns a copy of the current session, or nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cur := *s.current
	return &cur
}

// LocalColor returns the color the local player occupies in the
// current session.
func (s *Store) LocalColor() (Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.SeatOf(s.playerID)
}

// SetCurrent installs the joined session as the current match and drops
// its prior open-lobby entry. Observers on the joined stream see the
// new session; lobby observers see the removal.
func (s *Store) SetCurrent(sess *Session) {
	if sess == nil {
		return
	}
	cur := *sess
	s.mu.Lock()
	s.current = &cur
	removed := s.removeOpenLocked(cur.ID)
	s.mu.Unlock()

	if removed {
		s.gameRemoved.invoke(cur.ID)
	}
	joined := cur
	s.joined.invoke(&joined)
}

// Reset drops the current session. The core never drops it on its own;
// this is the explicit leave-the-game-view operation.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// ApplyMove reconciles an inbound move event into the current session:
// the turn flips to the side that did not just move, the notation
// history advances, and a terminal event completes the match exactly
// once. Stale traffic for other games and repeats after completion are
// dropped unchanged.
func (s *Store) ApplyMove(ev MoveEvent) {
	s.mu.Lock()
	cur := s.current
	if cur == nil || cur.ID != ev.GameID {
		s.mu.Unlock()
		s.log.Debug("move_event_stale", zap.String("game_id", ev.GameID))
		return
	}
	if cur.Status == StatusCompleted {
		s.mu.Unlock()
		s.log.Debug("move_event_after_completion", zap.String("game_id", ev.GameID))
		return
	}

	cur.CurrentTurn = ev.Color.Opposite()
	if ev.PGN != "" {
		cur.PGN = ev.PGN
	} else if ev.SAN != "" {
		if cur.PGN != "" {
			cur.PGN += " "
		}
		cur.PGN += ev.SAN
	}

	var outcome Outcome
	finished := ev.Terminal()
	if finished {
		cur.Status = StatusCompleted
		local, seated := cur.SeatOf(s.playerID)
		if !seated {
			// Observer without a seat resolves from the mover's side.
			local = ev.Color.Opposite()
		}
		outcome = ResolveOutcome(ev, local)
	}
	s.mu.Unlock()

	s.moves.invoke(ev)
	if finished {
		s.completed.invoke(outcome)
	}
}

// AddOpenGame prepends an open game to the lobby listing. A listing
// already holding the id is left untouched, which lets the REST
// bootstrap path and the broker broadcast reconcile by id.
func (s *Store) AddOpenGame(sess *Session) {
	if sess == nil || sess.ID == "" {
		return
	}
	entry := *sess
	s.mu.Lock()
	for _, g := range s.open {
		if g.ID == entry.ID {
			s.mu.Unlock()
			return
		}
	}
	s.open = append([]*Session{&entry}, s.open...)
	s.mu.Unlock()

	added := entry
	s.gameAdded.invoke(&added)
}

// RemoveOpenGame drops a lobby entry by id. Unknown ids are a no-op so
// out-of-order arrival stays harmless.
func (s *Store) RemoveOpenGame(id string) {
	s.mu.Lock()
	removed := s.removeOpenLocked(id)
	s.mu.Unlock()
	if removed {
		s.gameRemoved.invoke(id)
	}
}

func (s *Store) removeOpenLocked(id string) bool {
	for i, g := range s.open {
		if g.ID == id {
			s.open = append(s.open[:i], s.open[i+1:]...)
			return true
		}
	}
	return false
}

// OpenGames returns a copy of the lobby listing, newest first.
func (s *Store) OpenGames() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.open))
	for _, g := range s.open {
		cp := *g
		out = append(out, &cp)
	}
	return out
}

// OnGameAdded registers a lobby-addition observer.
func (s *Store) OnGameAdded(cb func(*Session)) int { return s.gameAdded.add(cb) }

// RemoveGameAddedCallback unregisters a lobby-addition observer.
func (s *Store) RemoveGameAddedCallback(id int) { s.gameAdded.remove(id) }

// OnGameRemoved registers a lobby-removal observer.
func (s *Store) OnGameRemoved(cb func(string)) int { return s.gameRemoved.add(cb) }

// RemoveGameRemovedCallback unregisters a lobby-removal observer.
func (s *Store) RemoveGameRemovedCallback(id int) { s.gameRemoved.remove(id) }

// OnMoveReceived registers a move observer.
func (s *Store) OnMoveReceived(cb func(MoveEvent)) int { return s.moves.add(cb) }

// RemoveMoveReceivedCallback unregisters a move observer.
func (s *Store) RemoveMoveReceivedCallback(id int) { s.moves.remove(id) }

// OnMatchJoined registers an observer for the session becoming current.
func (s *Store) OnMatchJoined(cb func(*Session)) int { return s.joined.add(cb) }

// RemoveMatchJoinedCallback unregisters a joined observer.
func (s *Store) RemoveMatchJoinedCallback(id int) { s.joined.remove(id) }

// OnMatchCompleted registers an observer for the resolved outcome. It
// fires at most once per session.
func (s *Store) OnMatchCompleted(cb func(Outcome)) int { return s.completed.add(cb) }

// RemoveMatchCompletedCallback unregisters a completion observer.
func (s *Store) RemoveMatchCompletedCallback(id int) { s.completed.remove(id) }
