package match

// Outcome is the player-relative result of a finished match.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLose Outcome = "LOSE"
	OutcomeDraw Outcome = "DRAW"
)

// ResolveOutcome computes the local player's result from a terminal
// move event. Checkmate is always delivered by the mover against the
// other side, so the moving color is the winner; stalemate is a draw
// for both. Only meaningful when ev.Terminal() holds.
func ResolveOutcome(ev MoveEvent, localColor Color) Outcome {
	if ev.IsStalemate {
		return OutcomeDraw
	}
	if ev.Color == localColor {
		return OutcomeWin
	}
	return OutcomeLose
}
