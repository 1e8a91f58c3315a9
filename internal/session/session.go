package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/silyosbekov/chessmate-client/internal/broker"
	"github.com/silyosbekov/chessmate-client/internal/match"
)

// Session owns the single logical connection to the broker: one
// transport, one codec, one demultiplexer. It is the only object that
// talks to the broker.
type Session struct {
	conn     broker.Conn
	codec    Codec
	demux    *Demux
	store    *match.Store
	playerID string
	log      *zap.Logger

	mu        sync.Mutex
	active    bool
	frameCbID int
}

func New(conn broker.Conn, store *match.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		conn:     conn,
		demux:    NewDemux(store, logger),
		store:    store,
		playerID: store.PlayerID(),
		log:      logger,
	}
}

// Activate establishes the transport, announces the player and installs
// the topic subscriptions. Calling it while active is a no-op.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil
	}

	if err := s.conn.Connect(ctx); err != nil {
		return fmt.Errorf("session: connect: %w", err)
	}

	frame, err := s.codec.Connect(s.playerID)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(ctx, frame); err != nil {
		return fmt.Errorf("session: announce player: %w", err)
	}

	s.frameCbID = s.conn.OnFrame(s.demux.Dispatch)
	s.active = true
	s.log.Info("session_activated", zap.String("player_id", s.playerID))
	return nil
}

// Deactivate tears the transport down. Safe from any state, including
// never-activated; it does not flush in-flight commands.
func (s *Session) Deactivate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	s.conn.RemoveFrameCallback(s.frameCbID)
	s.active = false
	if err := s.conn.Close(ctx); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	s.log.Info("session_deactivated")
	return nil
}

// Store returns the match state store fed by this session.
func (s *Session) Store() *match.Store { return s.store }

// CreateGame opens a game hosted by the local (authenticated) player.
func (s *Session) CreateGame(ctx context.Context, hostColor match.HostColor) error {
	frame, err := s.codec.CreateGame(s.playerID, hostColor)
	if err != nil {
		return err
	}
	return s.publish(ctx, frame)
}

// CreateAnonymousGame opens a game hosted by the local player without
// an account record.
func (s *Session) CreateAnonymousGame(ctx context.Context, hostColor match.HostColor) error {
	frame, err := s.codec.CreateAnonymousGame(s.playerID, hostColor)
	if err != nil {
		return err
	}
	return s.publish(ctx, frame)
}

// CancelGame withdraws an open game before a second player joined.
func (s *Session) CancelGame(ctx context.Context, gameID string) error {
	frame, err := s.codec.CancelGame(gameID)
	if err != nil {
		return err
	}
	return s.publish(ctx, frame)
}

// JoinGame seats the local player in an open game, routed by whether
// the host is anonymous.
func (s *Session) JoinGame(ctx context.Context, gameID string, anonymousHost bool) error {
	frame, err := s.codec.JoinGame(gameID, s.playerID, anonymousHost)
	if err != nil {
		return err
	}
	return s.publish(ctx, frame)
}

// MakeMove reports a local move with the terminal flags the rules
// engine computed for it.
func (s *Session) MakeMove(ctx context.Context, gameID string, color match.Color, from, to string, isCheckmate, isStalemate bool) error {
	frame, err := s.codec.MakeMove(gameID, color, from, to, isCheckmate, isStalemate)
	if err != nil {
		return err
	}
	return s.publish(ctx, frame)
}

func (s *Session) publish(ctx context.Context, frame broker.Frame) error {
	if err := s.conn.Publish(ctx, frame); err != nil {
		return fmt.Errorf("session: publish %s: %w", frame.Destination, err)
	}
	s.log.Debug("command_published", zap.String("destination", frame.Destination))
	return nil
}
