package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/silyosbekov/chessmate-client/internal/api"
	"github.com/silyosbekov/chessmate-client/internal/board"
	"github.com/silyosbekov/chessmate-client/internal/broker"
	appcfg "github.com/silyosbekov/chessmate-client/internal/config"
	"github.com/silyosbekov/chessmate-client/internal/identity"
	"github.com/silyosbekov/chessmate-client/internal/match"
	"github.com/silyosbekov/chessmate-client/internal/obslog"
	"github.com/silyosbekov/chessmate-client/internal/session"
	"github.com/silyosbekov/chessmate-client/pkg/matchdto"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	playerID, err := identity.Load(cfg.DataDir)
	if err != nil {
		log.Fatalf("identity error: %v", err)
	}

	store := match.NewStore(playerID, obslog.L())
	ws := broker.NewWebSocket(cfg.BrokerWSURL, cfg.ReconnectAttempts, cfg.ReconnectDelay)
	ws.OnStateChange(func(state broker.State) {
		obslog.L().Info("transport_state", zap.String("state", string(state)))
	})
	sess := session.New(ws, store, obslog.L())
	apiClient := api.NewClient(cfg.APIBaseURL)

	a := &app{
		cfg:      cfg,
		api:      apiClient,
		sess:     sess,
		store:    store,
		board:    board.New(),
		playerID: playerID,
		log:      obslog.L(),
	}
	a.installObservers()

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = sess.Activate(cctx)
	cancel()
	if err != nil {
		log.Fatalf("session activate error: %v", err)
	}
	fmt.Printf("connected as %s, type 'help' for commands\n", playerID)

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

loop:
	for {
		select {
		case <-sigCh:
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if !a.handleCommand(strings.Fields(strings.TrimSpace(line))) {
				break loop
			}
		}
	}

	a.shutdown()
}

// app is the text-mode stand-in for the browser UI: it observes the
// store's notification streams and turns typed commands into session
// calls.
type app struct {
	cfg      *appcfg.AppConfig
	api      *api.Client
	sess     *session.Session
	store    *match.Store
	board    *board.Board
	playerID string
	log      *zap.Logger

	// mu guards the board and the pending id: observers fire on the
	// transport's read goroutine while commands run on the main one.
	mu sync.Mutex

	// pendingGameID is the game this client created and still hosts
	// alone, recognized on the game-added stream by host id.
	pendingGameID string
}

func (a *app) installObservers() {
	a.store.OnGameAdded(func(g *match.Session) {
		if g.HostPlayerID == a.playerID {
			a.mu.Lock()
			a.pendingGameID = g.ID
			a.mu.Unlock()
			fmt.Printf("game %s created, waiting for an opponent\n", g.ID)
			return
		}
		fmt.Printf("lobby: game %s, host %s, host color %s\n", g.ID, hostName(g), hostColorLabel(g.HostColor))
	})

	a.store.OnGameRemoved(func(id string) {
		a.mu.Lock()
		if id == a.pendingGameID {
			a.pendingGameID = ""
		}
		a.mu.Unlock()
		fmt.Printf("lobby: game %s is gone\n", id)
	})

	a.store.OnMatchJoined(func(s *match.Session) {
		a.mu.Lock()
		if s.ID == a.pendingGameID {
			a.pendingGameID = ""
		}
		a.board.Reset()
		a.mu.Unlock()
		color, _ := a.store.LocalColor()
		fmt.Printf("match %s started, you play %s, WHITE to move\n", s.ID, color)
	})

	a.store.OnMoveReceived(func(ev match.MoveEvent) {
		// The mover's own board already holds the move; replay only
		// the opponent's.
		a.mu.Lock()
		if a.board.Turn() == ev.Color {
			if _, err := a.board.ApplyMove(ev.From, ev.To); err != nil {
				a.log.Warn("board_replay_error",
					zap.String("from", ev.From),
					zap.String("to", ev.To),
					zap.Error(err),
				)
			}
		}
		a.mu.Unlock()
		if cur := a.store.Current(); cur != nil && cur.Status == match.StatusInProgress {
			fmt.Printf("%s played %s%s (%s), %s to move\n", ev.Color, ev.From, ev.To, ev.SAN, cur.CurrentTurn)
		}
	})

	a.store.OnMatchCompleted(func(o match.Outcome) {
		switch o {
		case match.OutcomeWin:
			fmt.Println("checkmate, you win")
		case match.OutcomeLose:
			fmt.Println("checkmate, you lose")
		default:
			fmt.Println("stalemate, draw")
		}
	})
}

// handleCommand runs one typed command; returning false ends the loop.
func (a *app) handleCommand(args []string) bool {
	if len(args) == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "help":
		fmt.Println(helpText)
	case "list":
		a.listGames(ctx)
	case "create":
		a.createGame(ctx, args[1:])
	case "cancel":
		a.cancelGame(ctx)
	case "join":
		a.joinGame(ctx, args[1:])
	case "move":
		a.makeMove(ctx, args[1:])
	case "pgn":
		a.mu.Lock()
		pgn := a.board.PGN()
		a.mu.Unlock()
		fmt.Println(pgn)
	case "leave":
		a.store.Reset()
		a.mu.Lock()
		a.board.Reset()
		a.mu.Unlock()
		fmt.Println("left the game view")
	case "quit", "exit":
		return false
	default:
		fmt.Printf("unknown command %q, type 'help'\n", args[0])
	}
	return true
}

func (a *app) listGames(ctx context.Context) {
	games, err := a.api.GetGames(ctx, api.GamesQuery{
		Status:   matchdto.StatusOpen,
		Page:     1,
		PageSize: a.cfg.LobbyPageSize,
	})
	if err != nil {
		fmt.Printf("listing failed: %v\n", err)
	}
	for i := range games {
		a.store.AddOpenGame(match.SessionFromDTO(&games[i]))
	}

	open := a.store.OpenGames()
	if len(open) == 0 {
		fmt.Println("no open games")
		return
	}
	for _, g := range open {
		fmt.Printf("  %s  host=%s  color=%s\n", g.ID, hostName(g), hostColorLabel(g.HostColor))
	}
}

func (a *app) createGame(ctx context.Context, args []string) {
	hostColor := hostColorFromName(a.cfg.DefaultHostColor)
	viaHTTP := false
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "white":
			hostColor = match.AssignedColor(match.White)
		case "black":
			hostColor = match.AssignedColor(match.Black)
		case "random":
			hostColor = match.RandomColor()
		case "http":
			viaHTTP = true
		default:
			fmt.Printf("unknown create option %q\n", arg)
			return
		}
	}

	if viaHTTP {
		game, err := a.api.CreateAnonymousGame(ctx, matchdto.CreateAnonymousGameCommand{
			HostPlayerID:    a.playerID,
			HostPlayerColor: hostColor.DTO(),
		})
		if err != nil {
			fmt.Printf("create failed: %v\n", err)
			return
		}
		// The broker will broadcast the same game; the store
		// reconciles the two announcements by id.
		a.store.AddOpenGame(match.SessionFromDTO(game))
		return
	}

	if err := a.sess.CreateAnonymousGame(ctx, hostColor); err != nil {
		fmt.Printf("create failed: %v\n", err)
	}
}

func (a *app) cancelGame(ctx context.Context) {
	a.mu.Lock()
	gameID := a.pendingGameID
	a.mu.Unlock()
	if gameID == "" {
		fmt.Println("no pending game to cancel")
		return
	}
	if err := a.sess.CancelGame(ctx, gameID); err != nil {
		fmt.Printf("cancel failed: %v\n", err)
	}
}

func (a *app) joinGame(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: join <game-id>")
		return
	}
	gameID := args[0]

	anonymousHost := true
	for _, g := range a.store.OpenGames() {
		if g.ID == gameID {
			anonymousHost = g.AnonymousHost()
			break
		}
	}
	if err := a.sess.JoinGame(ctx, gameID, anonymousHost); err != nil {
		fmt.Printf("join failed: %v\n", err)
	}
}

func (a *app) makeMove(ctx context.Context, args []string) {
	var from, to string
	switch {
	case len(args) == 2:
		from, to = args[0], args[1]
	case len(args) == 1 && len(args[0]) >= 4:
		from, to = args[0][:2], args[0][2:4]
	default:
		fmt.Println("usage: move <from> <to>  (e.g. move e2 e4)")
		return
	}

	cur := a.store.Current()
	if cur == nil || cur.Status != match.StatusInProgress {
		fmt.Println("no game in progress")
		return
	}
	color, seated := a.store.LocalColor()
	if !seated {
		fmt.Println("you are not seated in this game")
		return
	}
	if cur.CurrentTurn != color {
		fmt.Println("not your turn")
		return
	}

	a.mu.Lock()
	san, err := a.board.ApplyMove(from, to)
	if err != nil {
		a.mu.Unlock()
		fmt.Printf("illegal move: %v\n", err)
		return
	}
	isCheckmate, isStalemate := a.board.IsCheckmate(), a.board.IsStalemate()
	a.mu.Unlock()

	err = a.sess.MakeMove(ctx, cur.ID, color, from, to, isCheckmate, isStalemate)
	if err != nil {
		fmt.Printf("move not sent: %v\n", err)
		return
	}
	fmt.Printf("you played %s\n", san)
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// An open game whose host walks away is withdrawn, as the create
	// dialog does when it is dismissed.
	a.mu.Lock()
	gameID := a.pendingGameID
	a.mu.Unlock()
	if gameID != "" && a.store.Current() == nil {
		if err := a.sess.CancelGame(ctx, gameID); err != nil {
			a.log.Warn("cancel_on_exit_failed", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	if err := a.sess.Deactivate(ctx); err != nil {
		a.log.Warn("deactivate_failed", zap.Error(err))
	}
}

func hostName(g *match.Session) string {
	if g.HostUsername == "" {
		return "Anonymous"
	}
	return g.HostUsername
}

func hostColorFromName(name string) match.HostColor {
	switch name {
	case "white":
		return match.AssignedColor(match.White)
	case "black":
		return match.AssignedColor(match.Black)
	default:
		return match.RandomColor()
	}
}

func hostColorLabel(h match.HostColor) string {
	if c, ok := h.Assigned(); ok {
		return string(c)
	}
	return "RANDOM"
}

const helpText = `commands:
  list               show open games
  create [color]     create a game (color: white|black|random; add 'http' for the REST path)
  cancel             withdraw your open game
  join <game-id>     join an open game
  move <from> <to>   play a move, e.g. move e2 e4
  pgn                print the local game notation
  leave              leave the current game view
  quit               exit`
