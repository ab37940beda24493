package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cluedo-custom/internal/ai"
	"cluedo-custom/internal/api"
	"cluedo-custom/internal/config"
	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
	"cluedo-custom/internal/store"
)

var sixRooms = []string{"Kitchen", "Ballroom", "Conservatory", "Library", "Study", "Hall"}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testServer struct {
	mgr    *manager.Manager
	hub    *api.Hub
	client *Client
}

// newTestServer runs the real HTTP API on a loopback listener.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := quietLogger()

	themes, err := config.LoadThemes("")
	require.NoError(t, err)
	settings := config.Defaults()

	bus := events.NewManager()
	hub := api.NewHub(log)
	bus.Subscribe(hub)

	engine := game.NewEngine(log, rand.New(rand.NewSource(1)), &game.DeterministicChooser{})
	mgr := manager.New(engine, store.Nop{}, bus, themes, manager.LimitsFrom(settings), log)

	srv := httptest.NewServer(api.NewServer(mgr, hub, settings, log).Router())
	t.Cleanup(func() {
		hub.CloseAll()
		srv.Close()
	})
	return &testServer{mgr: mgr, hub: hub, client: NewClient(srv.URL + "/")}
}

func TestClient(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client
	ctx := context.Background()

	themes, err := c.Themes(ctx)
	require.NoError(t, err)
	assert.Contains(t, themes, "classic")

	res, err := c.QuickCreate(ctx, "office", "Ann", false)
	require.NoError(t, err)
	assert.Equal(t, "Ann", res.PlayerName)

	conn, err := c.Watch(ctx, res.GameCode)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return ts.hub.Count(res.GameCode) == 1 }, time.Second, 10*time.Millisecond)

	bob, err := c.Join(ctx, strings.ToLower(res.GameCode), "Bob")
	require.NoError(t, err)
	assert.Equal(t, res.GameCode, bob.GameCode)

	var m streamMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, "player_joined", m.Type)
	assert.Equal(t, "Bob joined (2 players)", describeEvent(m))

	_, err = c.Join(ctx, res.GameCode, "Cid")
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx, res.GameCode))

	games, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, game.StatusInProgress, games[0].Status)

	v, err := c.View(ctx, res.GameCode, bob.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", v.MyName)
	assert.False(t, v.IsMyTurn)
	assert.NotEmpty(t, v.MyCards)

	t.Run("acting out of turn is forbidden", func(t *testing.T) {
		_, err := c.Act(ctx, res.GameCode, Action{PlayerID: bob.PlayerID, Action: game.ActionPass})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.NotEmpty(t, apiErr.Detail)
	})

	t.Run("the current player can act", func(t *testing.T) {
		r, err := c.Act(ctx, res.GameCode, Action{PlayerID: res.PlayerID, Action: game.ActionMove, Dice: 2})
		require.NoError(t, err)
		assert.Equal(t, game.ActionMove, r.Kind)
		assert.Equal(t, 2, r.Dice)
	})

	t.Run("unknown game", func(t *testing.T) {
		err := c.Start(ctx, "ZZZZ")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})
}

func TestClientUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.List(context.Background())
	assert.ErrorContains(t, err, "cannot reach server")
}

func newTestCLI(ts *testServer) (*CLI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewCLI(quietLogger(), nil, out, ts.client, rand.New(rand.NewSource(1))), out
}

func TestExecuteGame(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ui, out := newTestCLI(ts)

	code, err := ts.client.Create(ctx, "Manor", sixRooms, false)
	require.NoError(t, err)

	t.Run("commands need a seat", func(t *testing.T) {
		_, err := ui.execute(ctx, "view")
		assert.ErrorContains(t, err, "join or create a game first")
	})

	_, err = ui.execute(ctx, "join "+code+" Ann")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "You are seated as Ann")
	assert.Eventually(t, func() bool { return ts.hub.Count(code) == 1 }, time.Second, 10*time.Millisecond)

	for _, name := range []string{"Bob", "Cid"} {
		_, err := ts.client.Join(ctx, code, name)
		require.NoError(t, err)
	}

	t.Run("events are printed before the next prompt", func(t *testing.T) {
		assert.Eventually(t, func() bool {
			ui.mu.Lock()
			defer ui.mu.Unlock()
			return len(ui.pending) >= 2
		}, 2*time.Second, 10*time.Millisecond)

		out.Reset()
		ui.drainEvents(ctx)
		assert.Contains(t, out.String(), "Bob joined (2 players)")
		assert.Contains(t, out.String(), "Cid joined (3 players)")
	})

	t.Run("notes are closed before the deal", func(t *testing.T) {
		out.Reset()
		_, err := ui.execute(ctx, "notes")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "once the cards are dealt")
	})

	t.Run("start shows the board", func(t *testing.T) {
		out.Reset()
		_, err := ui.execute(ctx, "start")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "It's your turn!")
		assert.Contains(t, out.String(), "Ann (you)")
		require.NotNil(t, ui.brain)
		assert.Equal(t, "Ann", ui.brain.Name())
	})

	t.Run("notes and hint", func(t *testing.T) {
		out.Reset()
		_, err := ui.execute(ctx, "notes")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Ann's Detective Notes")
		assert.Contains(t, out.String(), "Envelope")

		out.Reset()
		_, err = ui.execute(ctx, "hint")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Try suggesting")
		assert.Contains(t, out.String(), ", Kitchen\n", "the hint names the room Ann stands in")
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := ui.execute(ctx, "roll many")
		assert.ErrorContains(t, err, "invalid dice value")

		_, err = ui.execute(ctx, "suggest Miss Scarlett, Knife")
		assert.ErrorContains(t, err, "expected: suspect, weapon, room")

		out.Reset()
		quit, err := ui.execute(ctx, "dance")
		require.NoError(t, err)
		assert.False(t, quit)
		assert.Contains(t, out.String(), "Unknown command 'dance'")
	})

	t.Run("suggest only in your own room", func(t *testing.T) {
		_, err := ui.execute(ctx, "suggest Miss Scarlett, Knife, Hall")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Contains(t, apiErr.Detail, "you are in the Kitchen")
	})

	t.Run("suggest passes the turn and fills the notebook", func(t *testing.T) {
		out.Reset()
		_, err := ui.execute(ctx, "s miss scarlett, knife, kitchen")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Next up: Bob")

		if strings.Contains(out.String(), "showed you") {
			shown := false
			for _, card := range []string{"Miss Scarlett", "Knife", "Kitchen"} {
				for _, p := range []string{"Bob", "Cid"} {
					shown = shown || ui.brain.Status(card, p) == ai.StatusYes
				}
			}
			assert.True(t, shown, "the revealed card should be located")
		}
	})

	t.Run("out of turn", func(t *testing.T) {
		_, err := ui.execute(ctx, "pass")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
	})

	t.Run("prompts abort without a terminal", func(t *testing.T) {
		_, err := ui.execute(ctx, "accuse")
		assert.ErrorIs(t, err, errAborted)
	})

	quit, err := ui.execute(ctx, "quit")
	require.NoError(t, err)
	assert.True(t, quit)
	ui.closeStream()
}

func TestObserveOtherSuggestion(t *testing.T) {
	ui, out := newTestCLI(newTestServer(t))
	ui.session = &session{code: "ABCD", playerID: "p1", name: "Ann"}
	ui.brain = ai.NewBrain(quietLogger(), rand.New(rand.NewSource(1)), &game.DeterministicChooser{})
	ui.brain.Setup("Ann", []string{"Ann", "Bob", "Cid"}, game.DefaultSuspects, game.DefaultWeapons, sixRooms)

	data, err := json.Marshal(events.SuggestionResolved{
		Base:          events.Base{Code: "ABCD"},
		PlayerName:    "Bob",
		Suspect:       "Mrs. White",
		Weapon:        "Rope",
		Room:          "Study",
		DisproverName: "Ann",
	})
	require.NoError(t, err)

	ui.observe(context.Background(), streamMessage{Type: "suggestion_resolved", Data: data})

	assert.Contains(t, out.String(), "Bob suggests Mrs. White with the Rope in the Study; Ann shows a card")
	// Cid sits between Bob and Ann and could not disprove.
	assert.Equal(t, ai.StatusNo, ui.brain.Status("Rope", "Cid"))
}

func TestNotebookOpensAtTheDeal(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ui, out := newTestCLI(ts)

	code, err := ts.client.Create(ctx, "Manor", sixRooms, false)
	require.NoError(t, err)
	ann, err := ts.client.Join(ctx, code, "Ann")
	require.NoError(t, err)
	_, err = ts.client.Join(ctx, code, "Bob")
	require.NoError(t, err)

	// GIVEN Cid seated and watching before the deal
	_, err = ui.execute(ctx, "join "+code+" Cid")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return ts.hub.Count(code) == 1 }, time.Second, 10*time.Millisecond)

	// WHEN the game starts and Ann suggests the solution without Cid typing anything
	require.NoError(t, ts.client.Start(ctx, code))
	g, err := ts.mgr.Get(code)
	require.NoError(t, err)
	solution := g.Solution

	dice := len(sixRooms)
	for i, r := range sixRooms {
		if r == solution.Room.Name && i > 0 {
			dice = i
		}
	}
	_, err = ts.client.Act(ctx, code, Action{PlayerID: ann.PlayerID, Action: game.ActionMove, Dice: dice})
	require.NoError(t, err)
	_, err = ts.client.Act(ctx, code, Action{PlayerID: ann.PlayerID, Action: game.ActionSuggest,
		Suspect: solution.Suspect.Name, Weapon: solution.Weapon.Name, Room: solution.Room.Name})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ui.mu.Lock()
		defer ui.mu.Unlock()
		for _, m := range ui.pending {
			if m.Type == "suggestion_resolved" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	ui.drainEvents(ctx)

	// THEN the notebook opened at the deal and learned that Bob could not disprove
	require.NotNil(t, ui.brain)
	assert.Contains(t, out.String(), "nobody can disprove")
	for _, card := range []string{solution.Suspect.Name, solution.Weapon.Name, solution.Room.Name} {
		assert.Equal(t, ai.StatusNo, ui.brain.Status(card, "Bob"), card)
	}
	ui.closeStream()
}
