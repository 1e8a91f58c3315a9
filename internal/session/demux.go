package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/silyosbekov/chessmate-client/internal/broker"
	"github.com/silyosbekov/chessmate-client/internal/match"
	"github.com/silyosbekov/chessmate-client/pkg/matchdto"
)

// Event topics the client listens on.
const (
	TopicMatchJoin     = "match.join"
	TopicMoveReceived  = "match.moveReceived"
	TopicGameCreated   = "game.created"
	TopicGameCancelled = "game.cancelled"
)

// Demux classifies inbound frames by topic, decodes the payload and
// forwards the typed event to the store. A frame that fails to decode
// is logged and dropped; the topic stays subscribed.
type Demux struct {
	store *match.Store
	log   *zap.Logger
}

func NewDemux(store *match.Store, logger *zap.Logger) *Demux {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Demux{store: store, log: logger}
}

// Dispatch handles one inbound frame. It runs on the transport's read
// goroutine and must not block.
func (d *Demux) Dispatch(frame *broker.Frame) {
	if frame == nil {
		return
	}
	switch frame.Destination {
	case TopicMatchJoin:
		var dto matchdto.GameDTO
		if !d.decode(frame, &dto) {
			return
		}
		d.store.SetCurrent(match.SessionFromDTO(&dto))

	case TopicMoveReceived:
		var dto matchdto.MoveDTO
		if !d.decode(frame, &dto) {
			return
		}
		d.store.ApplyMove(match.MoveEventFromDTO(&dto))

	case TopicGameCreated:
		var dto matchdto.GameDTO
		if !d.decode(frame, &dto) {
			return
		}
		d.store.AddOpenGame(match.SessionFromDTO(&dto))

	case TopicGameCancelled:
		var dto matchdto.GameDTO
		if !d.decode(frame, &dto) {
			return
		}
		d.store.RemoveOpenGame(dto.ID)

	default:
		d.log.Debug("frame_unhandled", zap.String("topic", frame.Destination))
	}
}

func (d *Demux) decode(frame *broker.Frame, v any) bool {
	if err := json.Unmarshal(frame.Body, v); err != nil {
		d.log.Warn("frame_decode_error",
			zap.String("topic", frame.Destination),
			zap.Error(err),
		)
		return false
	}
	return true
}
