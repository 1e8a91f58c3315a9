package matchdto

// MoveDTO is a single applied move broadcast on match.moveReceived.
// PGN carries the full game notation after the move; SAN the move alone.
type MoveDTO struct {
	GameID        string      `json:"gameId"`
	WhitePlayerID string      `json:"whitePlayerId"`
	BlackPlayerID string      `json:"blackPlayerId"`
	Color         PlayerColor `json:"color"`
	From          string      `json:"from"`
	To            string      `json:"to"`
	IsCheckmate   bool        `json:"isCheckmate"`
	IsStalemate   bool        `json:"isStalemate"`
	SAN           string      `json:"san"`
	PGN           string      `json:"pgn"`
}
