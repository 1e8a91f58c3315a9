package match

import (
	"github.com/silyosbekov/chessmate-client/pkg/matchdto"
)

// ColorFromDTO maps a wire color to the domain color.
func ColorFromDTO(c matchdto.PlayerColor) Color {
	if c == matchdto.ColorBlack {
		return Black
	}
	return White
}

// HostColorFromDTO maps the nullable wire field to the HostColor
// variant; nil means the server decides.
func HostColorFromDTO(c *matchdto.PlayerColor) HostColor {
	if c == nil {
		return RandomColor()
	}
	return AssignedColor(ColorFromDTO(*c))
}

// DTO returns the wire form of the preference: nil for random.
func (h HostColor) DTO() *matchdto.PlayerColor {
	c, ok := h.Assigned()
	if !ok {
		return nil
	}
	p := matchdto.PlayerColor(c)
	return &p
}

// SessionFromDTO builds a domain session from the server's game record.
func SessionFromDTO(dto *matchdto.GameDTO) *Session {
	s := &Session{
		ID:            dto.ID,
		HostPlayerID:  dto.HostPlayerID,
		HostUsername:  dto.HostPlayerUsername,
		HostColor:     HostColorFromDTO(dto.HostPlayerColor),
		WhitePlayerID: dto.WhitePlayerID,
		WhiteUsername: dto.WhitePlayerUsername,
		BlackPlayerID: dto.BlackPlayerID,
		BlackUsername: dto.BlackPlayerUsername,
		Status:        Status(dto.Status),
		PGN:           dto.PGN,
		CreatedDate:   dto.CreatedDate,
	}
	if dto.CurrentTurnColor != "" {
		s.CurrentTurn = ColorFromDTO(dto.CurrentTurnColor)
	} else {
		// A freshly joined game always starts with white to move.
		s.CurrentTurn = White
	}
	return s
}

// MoveEventFromDTO builds a domain move event from the wire record.
func MoveEventFromDTO(dto *matchdto.MoveDTO) MoveEvent {
	return MoveEvent{
		GameID:      dto.GameID,
		Color:       ColorFromDTO(dto.Color),
		From:        dto.From,
		To:          dto.To,
		IsCheckmate: dto.IsCheckmate,
		IsStalemate: dto.IsStalemate,
		SAN:         dto.SAN,
		PGN:         dto.PGN,
	}
}
