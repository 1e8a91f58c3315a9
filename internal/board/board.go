// Package board adapts the chess rules engine the client delegates
// legality to. The sync core itself never inspects the rules: it feeds
// inbound (from, to) pairs in and reads notation and terminal flags out.
package board

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/silyosbekov/chessmate-client/internal/match"
)

// Board holds the local visual board's rules state for the current
// match. Not safe for concurrent use; the caller serializes access.
type Board struct {
	game *nchess.Game
}

func New() *Board {
	return &Board{game: nchess.NewGame()}
}

// Reset restores the starting position for a new match.
func (b *Board) Reset() {
	b.game = nchess.NewGame()
}

// ApplyMove plays a move given as origin and target squares and returns
// its SAN. A pawn reaching the last rank without an explicit promotion
// piece promotes to a queen.
func (b *Board) ApplyMove(from, to string) (string, error) {
	uci := strings.ToLower(strings.TrimSpace(from) + strings.TrimSpace(to))
	if len(uci) < 4 {
		return "", fmt.Errorf("board: malformed squares %q-%q", from, to)
	}
	pos := b.game.Position()
	notation := nchess.UCINotation{}
	mv, err := notation.Decode(pos, uci)
	if err != nil {
		mv, err = notation.Decode(pos, uci+"q")
		if err != nil {
			return "", fmt.Errorf("board: illegal move %s-%s: %w", from, to, err)
		}
	}
	if err := b.game.Move(mv, nil); err != nil {
		return "", fmt.Errorf("board: illegal move %s-%s: %w", from, to, err)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

// PGN returns the portable game notation for the moves played so far.
func (b *Board) PGN() string {
	return strings.TrimSpace(b.game.String())
}

// FEN returns the current position.
func (b *Board) FEN() string {
	return b.game.FEN()
}

// Turn returns the side to move.
func (b *Board) Turn() match.Color {
	if b.game.Position().Turn() == nchess.White {
		return match.White
	}
	return match.Black
}

// IsCheckmate reports whether the last applied move delivered mate.
func (b *Board) IsCheckmate() bool {
	return b.game.Method() == nchess.Checkmate
}

// IsStalemate reports whether the last applied move left the opponent
// without a legal reply while not in check.
func (b *Board) IsStalemate() bool {
	return b.game.Method() == nchess.Stalemate
}

// GameOver reports whether the position has any outcome.
func (b *Board) GameOver() bool {
	return b.game.Outcome() != nchess.NoOutcome
}
