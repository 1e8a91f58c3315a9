package matchdto

// GameStatus is the wire value for a game's lifecycle state.
type GameStatus string

const (
	StatusOpen       GameStatus = "OPEN"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusCompleted  GameStatus = "COMPLETED"
	StatusCancelled  GameStatus = "CANCELLED"
)

// GameDTO is the server's view of a game, delivered on match.join,
// game.created and game.cancelled and returned by the games REST API.
// Seat fields stay empty until both players are in.
type GameDTO struct {
	ID                  string       `json:"id"`
	HostPlayerID        string       `json:"hostPlayerId"`
	HostPlayerUsername  string       `json:"hostPlayerUsername"`
	HostPlayerColor     *PlayerColor `json:"hostPlayerColor"`
	WhitePlayerID       string       `json:"whitePlayerId,omitempty"`
	WhitePlayerUsername string       `json:"whitePlayerUsername,omitempty"`
	BlackPlayerID       string       `json:"blackPlayerId,omitempty"`
	BlackPlayerUsername string       `json:"blackPlayerUsername,omitempty"`
	Status              GameStatus   `json:"status"`
	CurrentTurnColor    PlayerColor  `json:"currentTurnColor,omitempty"`
	PGN                 string       `json:"pgn"`
	CreatedDate         string       `json:"createdDate,omitempty"`
}

// AnonymousHostName is the username the server assigns to hosts without
// an account. Join commands for such games are routed to the anonymous
// handling path.
const AnonymousHostName = "Anonymous"
