package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"cluedo-custom/internal/config"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Detail, e.Status)
}

// Client talks to the game server's HTTP API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// JoinResult identifies a seat in a game.
type JoinResult struct {
	GameCode   string `json:"game_code"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

func (c *Client) Themes(ctx context.Context) (config.Themes, error) {
	var out struct {
		Themes config.Themes `json:"themes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/themes", nil, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

func (c *Client) Create(ctx context.Context, name string, rooms []string, useAI bool) (string, error) {
	var out struct {
		GameCode string `json:"game_code"`
	}
	body := map[string]any{"name": name, "rooms": rooms, "use_ai": useAI}
	if err := c.do(ctx, http.MethodPost, "/games/create", body, &out); err != nil {
		return "", err
	}
	return out.GameCode, nil
}

func (c *Client) QuickCreate(ctx context.Context, theme, playerName string, useAI bool) (*JoinResult, error) {
	var out JoinResult
	body := map[string]any{"theme": theme, "player_name": playerName, "use_ai": useAI}
	if err := c.do(ctx, http.MethodPost, "/games/quick-create", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Join(ctx context.Context, code, playerName string) (*JoinResult, error) {
	var out JoinResult
	body := map[string]any{"game_code": code, "player_name": playerName}
	if err := c.do(ctx, http.MethodPost, "/games/join", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Start(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/games/"+url.PathEscape(code)+"/start", nil, nil)
}

func (c *Client) View(ctx context.Context, code, playerID string) (*manager.PlayerView, error) {
	var out manager.PlayerView
	path := fmt.Sprintf("/games/%s/player/%s", url.PathEscape(code), url.PathEscape(playerID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Action mirrors the body of the action endpoint.
type Action struct {
	PlayerID string          `json:"player_id"`
	Action   game.ActionKind `json:"action"`
	Suspect  string          `json:"suspect,omitempty"`
	Weapon   string          `json:"weapon,omitempty"`
	Room     string          `json:"room,omitempty"`
	Dice     int             `json:"dice,omitempty"`
}

func (c *Client) Act(ctx context.Context, code string, a Action) (*manager.ActionResult, error) {
	var out manager.ActionResult
	if err := c.do(ctx, http.MethodPost, "/games/"+url.PathEscape(code)+"/action", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context) ([]manager.Summary, error) {
	var out struct {
		Games []manager.Summary `json:"games"`
	}
	if err := c.do(ctx, http.MethodGet, "/games/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

// Watch opens the event stream of a game.
func (c *Client) Watch(ctx context.Context, code string) (*websocket.Conn, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/games/" + url.PathEscape(code) + "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Detail string `json:"detail"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) != nil || e.Detail == "" {
			e.Detail = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Detail: e.Detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
