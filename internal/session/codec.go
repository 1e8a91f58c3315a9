package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/silyosbekov/chessmate-client/internal/broker"
	"github.com/silyosbekov/chessmate-client/internal/match"
	"github.com/silyosbekov/chessmate-client/pkg/matchdto"
)

// Command addresses. Commands are published to an address; the server
// answers on the event topics in demux.go.
const (
	DestConnect             = "player.connect"
	DestCreateGame          = "game.create"
	DestCreateAnonymousGame = "game.createAnonymous"
	DestCancelGame          = "game.cancel"
	DestJoinGame            = "match.join"
	DestJoinAnonymousGame   = "match.joinAnonymous"
	DestMakeMove            = "match.move"
)

// ErrMissingField rejects a command with an empty required field. A bad
// command must fail here, never leave as a partial payload.
var ErrMissingField = fmt.Errorf("session: missing required field")

// Codec serializes player intents into addressed frames.
type Codec struct{}

func (Codec) Connect(playerID string) (broker.Frame, error) {
	if strings.TrimSpace(playerID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: playerId", ErrMissingField)
	}
	return encode(DestConnect, matchdto.ConnectCommand{PlayerID: playerID})
}

func (Codec) CreateGame(hostPlayerID string, hostColor match.HostColor) (broker.Frame, error) {
	if strings.TrimSpace(hostPlayerID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: hostPlayerId", ErrMissingField)
	}
	cmd := matchdto.CreateGameCommand{HostPlayerID: hostPlayerID, HostPlayerColor: hostColor.DTO()}
	return encode(DestCreateGame, cmd)
}

func (Codec) CreateAnonymousGame(hostPlayerID string, hostColor match.HostColor) (broker.Frame, error) {
	if strings.TrimSpace(hostPlayerID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: hostPlayerId", ErrMissingField)
	}
	cmd := matchdto.CreateAnonymousGameCommand{HostPlayerID: hostPlayerID, HostPlayerColor: hostColor.DTO()}
	return encode(DestCreateAnonymousGame, cmd)
}

func (Codec) CancelGame(gameID string) (broker.Frame, error) {
	if strings.TrimSpace(gameID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: gameId", ErrMissingField)
	}
	return encode(DestCancelGame, matchdto.CancelGameCommand{GameID: gameID})
}

// JoinGame routes to the anonymous address when the target game's host
// has no durable account record; those joins take a separate handling
// path server-side.
func (Codec) JoinGame(gameID, playerID string, anonymousHost bool) (broker.Frame, error) {
	if strings.TrimSpace(gameID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: gameId", ErrMissingField)
	}
	if strings.TrimSpace(playerID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: playerId", ErrMissingField)
	}
	dest := DestJoinGame
	if anonymousHost {
		dest = DestJoinAnonymousGame
	}
	return encode(dest, matchdto.JoinGameCommand{GameID: gameID, PlayerID: playerID})
}

func (Codec) MakeMove(gameID string, color match.Color, from, to string, isCheckmate, isStalemate bool) (broker.Frame, error) {
	if strings.TrimSpace(gameID) == "" {
		return broker.Frame{}, fmt.Errorf("%w: gameId", ErrMissingField)
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return broker.Frame{}, fmt.Errorf("%w: from/to", ErrMissingField)
	}
	cmd := matchdto.MakeMoveCommand{
		GameID:      gameID,
		Color:       matchdto.PlayerColor(color),
		From:        from,
		To:          to,
		IsCheckmate: isCheckmate,
		IsStalemate: isStalemate,
	}
	return encode(DestMakeMove, cmd)
}

func encode(dest string, cmd any) (broker.Frame, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return broker.Frame{}, fmt.Errorf("encode %s: %w", dest, err)
	}
	return broker.Frame{Destination: dest, Body: body}, nil
}
