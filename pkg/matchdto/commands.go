package matchdto

// PlayerColor is the wire value for a chess side.
type PlayerColor string

const (
	ColorWhite PlayerColor = "WHITE"
	ColorBlack PlayerColor = "BLACK"
)

// ConnectCommand announces the local player to the server after the
// transport comes up.
type ConnectCommand struct {
	PlayerID string `json:"playerId"`
}

// CreateGameCommand opens a new game hosted by an authenticated player.
// A nil HostPlayerColor means the server assigns a random color.
type CreateGameCommand struct {
	HostPlayerID    string       `json:"hostPlayerId"`
	HostPlayerColor *PlayerColor `json:"hostPlayerColor"`
}

// CreateAnonymousGameCommand opens a new game hosted by a player without
// a durable account record.
type CreateAnonymousGameCommand struct {
	HostPlayerID    string       `json:"hostPlayerId"`
	HostPlayerColor *PlayerColor `json:"hostPlayerColor"`
}

// CancelGameCommand withdraws an open game before anyone joined it.
type CancelGameCommand struct {
	GameID string `json:"gameId"`
}

// JoinGameCommand seats the player in an open game.
type JoinGameCommand struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// MakeMoveCommand reports a move the local player made on their board.
// The terminal flags come from the local rules engine and are echoed
// back on the resulting move event.
type MakeMoveCommand struct {
	GameID      string      `json:"gameId"`
	Color       PlayerColor `json:"color"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	IsCheckmate bool        `json:"isCheckmate"`
	IsStalemate bool        `json:"isStalemate"`
}
