// Package api is the non-realtime request/response path to the game
// server: paged lobby listing and the HTTP game-creation bootstrap.
// Results are reconciled into the match store by id, so both this path
// and the broker broadcasts may announce the same game.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/silyosbekov/chessmate-client/pkg/matchdto"
)

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GamesQuery selects and pages the games listing.
type GamesQuery struct {
	Status   matchdto.GameStatus
	OrderBy  string
	Page     int
	PageSize int
}

func (q GamesQuery) encode() string {
	v := url.Values{}
	if q.Status != "" {
		v.Set("gameStatus", string(q.Status))
	}
	if q.OrderBy != "" {
		v.Set("orderBy", q.OrderBy)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v.Encode()
}

// GetGames lists games matching the query, typically the OPEN page the
// lobby shows before broker deltas take over.
func (c *Client) GetGames(ctx context.Context, q GamesQuery) ([]matchdto.GameDTO, error) {
	path := "/games"
	if qs := q.encode(); qs != "" {
		path += "?" + qs
	}
	var games []matchdto.GameDTO
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &games, true); err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame fetches one game by id.
func (c *Client) GetGame(ctx context.Context, id string) (*matchdto.GameDTO, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("api: game id required")
	}
	var game matchdto.GameDTO
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/games/"+url.PathEscape(id), nil, &game, true); err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateGame creates a game over HTTP for an authenticated host.
func (c *Client) CreateGame(ctx context.Context, cmd matchdto.CreateGameCommand) (*matchdto.GameDTO, error) {
	var game matchdto.GameDTO
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games", cmd, &game, false); err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateAnonymousGame creates a game over HTTP for a host without an
// account record.
func (c *Client) CreateAnonymousGame(ctx context.Context, cmd matchdto.CreateAnonymousGameCommand) (*matchdto.GameDTO, error) {
	var game matchdto.GameDTO
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games/anonymous", cmd, &game, false); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := fmt.Errorf("api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusInternalServerError,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
