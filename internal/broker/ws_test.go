package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func waitForState(t *testing.T, ch <-chan State, want State) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-ch:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestReconnectWhilePublishing(t *testing.T) {
	var accepts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		if accepts.Add(1) == 1 {
			_ = c.Close(websocket.StatusGoingAway, "drop")
			return
		}
		for {
			if _, _, err := c.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws := NewWebSocket(wsURL, 5, 10*time.Millisecond)

	states := make(chan State, 32)
	ws.OnStateChange(func(s State) { states <- s })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = ws.Close(context.Background()) }()

	waitForState(t, states, StateConnected)

	// Hammer Publish across the drop and the redial.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = ws.Publish(context.Background(), Frame{Destination: "noop"})
				time.Sleep(time.Millisecond)
			}
		}
	}()

	waitForState(t, states, StateReconnecting)
	waitForState(t, states, StateConnected)
	close(stop)
	wg.Wait()

	var err error
	for i := 0; i < 100; i++ {
		if err = ws.Publish(ctx, Frame{Destination: "after.redial"}); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("publish after redial: %v", err)
	}
	if got := accepts.Load(); got < 2 {
		t.Fatalf("expected a redial, server accepted %d connections", got)
	}
}

func TestPublishDisconnectedReturnsError(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:0", 0, time.Millisecond)
	if err := ws.Publish(context.Background(), Frame{Destination: "noop"}); err != ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
