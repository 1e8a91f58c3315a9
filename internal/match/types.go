package match

import "github.com/silyosbekov/chessmate-client/pkg/matchdto"

// Color identifies a chess side.
type Color string

const (
	White Color = "WHITE"
	Black Color = "BLACK"
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Status represents a game's lifecycle state.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// HostColor is the host's seat preference: a concrete color, or the
// server decides. The zero value is "server decides".
type HostColor struct {
	assigned bool
	color    Color
}

// AssignedColor returns a preference for the given color.
func AssignedColor(c Color) HostColor {
	return HostColor{assigned: true, color: c}
}

// RandomColor returns the no-preference variant.
func RandomColor() HostColor {
	return HostColor{}
}

// Assigned returns the preferred color and whether one was set.
func (h HostColor) Assigned() (Color, bool) {
	return h.color, h.assigned
}

// IsRandom reports whether the server picks the host's color.
func (h HostColor) IsRandom() bool {
	return !h.assigned
}

// Session is the single match the client participates in, or an open
// game visible in the lobby. Seat ids stay empty until a join fixes
// both of them.
type Session struct {
	ID            string
	HostPlayerID  string
	HostUsername  string
	HostColor     HostColor
	WhitePlayerID string
	WhiteUsername string
	BlackPlayerID string
	BlackUsername string
	Status        Status
	CurrentTurn   Color
	PGN           string
	CreatedDate   string
}

// AnonymousHost reports whether the session's host has no account
// record. Join commands for such games use the anonymous route. Only
// the exact server-assigned name counts; an empty username still goes
// through the authenticated route.
func (s *Session) AnonymousHost() bool {
	return s.HostUsername == matchdto.AnonymousHostName
}

// SeatOf returns the color the given player occupies in the session.
func (s *Session) SeatOf(playerID string) (Color, bool) {
	switch playerID {
	case "":
		return "", false
	case s.WhitePlayerID:
		return White, true
	case s.BlackPlayerID:
		return Black, true
	}
	return "", false
}

// MoveEvent is one applied move delivered by the broker. It is consumed
// once by the store and not retained.
type MoveEvent struct {
	GameID      string
	Color       Color
	From        string
	To          string
	IsCheckmate bool
	IsStalemate bool
	SAN         string
	PGN         string
}

// Terminal reports whether the event ends the match.
func (ev MoveEvent) Terminal() bool {
	return ev.IsCheckmate || ev.IsStalemate
}
