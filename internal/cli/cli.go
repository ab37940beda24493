// Package cli is the interactive terminal client of the game server.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/ai"
	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
)

// session is the seat the client plays.
type session struct {
	code     string
	playerID string
	name     string
}

// CLI manages all command-line interactions.
type CLI struct {
	log    *logrus.Logger
	line   *liner.State
	out    io.Writer
	client *Client
	rand   *rand.Rand

	session *session
	brain   *ai.Brain

	mu      sync.Mutex
	pending []streamMessage
	conn    *websocket.Conn
}

// NewCLI creates a client. line may be nil when no terminal is attached.
func NewCLI(log *logrus.Logger, line *liner.State, out io.Writer, client *Client, rand *rand.Rand) *CLI {
	return &CLI{log: log, line: line, out: out, client: client, rand: rand}
}

// NewLiner prepares the interactive line editor.
func NewLiner() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// Run is the REPL. It returns when the user quits or input ends.
func (c *CLI) Run(ctx context.Context) error {
	defer c.closeStream()

	C.Header.Fprintln(c.out, "--- Cluedo Custom ---")
	c.printHelp()

	for {
		c.drainEvents(ctx)

		prompt := "(lobby) "
		if c.session != nil {
			prompt = fmt.Sprintf("(%s@%s) ", c.session.name, c.session.code)
		}
		input, err := c.line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				C.Info.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("error reading line: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)

		quit, err := c.execute(ctx, input)
		if err != nil {
			var apiErr *APIError
			switch {
			case errors.As(err, &apiErr):
				C.Warn.Fprintf(c.out, "Server says: %s\n", apiErr.Detail)
			case errors.Is(err, errAborted):
				C.Warn.Fprintln(c.out, "Cancelled.")
			default:
				C.No.Fprintf(c.out, "Error: %v\n", err)
			}
		}
		if quit {
			C.Info.Fprintln(c.out, "Goodbye!")
			return nil
		}
	}
}

// execute runs one command line.
func (c *CLI) execute(ctx context.Context, input string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "list", "ls":
		return false, c.handleList(ctx)
	case "quick", "q":
		return false, c.handleQuick(ctx, arg)
	case "create", "c":
		return false, c.handleCreate(ctx, arg)
	case "join", "j":
		return false, c.handleJoin(ctx, arg)
	case "start":
		return false, c.handleStart(ctx)
	case "view", "v":
		return false, c.handleView(ctx)
	case "roll", "r":
		return false, c.handleRoll(ctx, arg)
	case "suggest", "s":
		return false, c.handleTriple(ctx, game.ActionSuggest, arg)
	case "accuse", "a":
		return false, c.handleTriple(ctx, game.ActionAccuse, arg)
	case "pass", "p":
		return false, c.handlePass(ctx)
	case "notes", "n":
		return false, c.handleNotes(ctx)
	case "hint", "h":
		return false, c.handleHint(ctx)
	case "help", "?":
		c.printHelp()
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		C.Warn.Fprintf(c.out, "Unknown command '%s'. Type 'help' for a list of commands.\n", cmd)
		return false, nil
	}
}

func (c *CLI) handleList(ctx context.Context) error {
	games, err := c.client.List(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		C.Info.Fprintln(c.out, "No open games.")
		return nil
	}
	for _, g := range games {
		fmt.Fprintf(c.out, " %s  %-28s %-12s %d/%d players\n", g.Code, g.Name, g.Status, g.PlayerCount, g.MaxPlayers)
	}
	return nil
}

func (c *CLI) handleQuick(ctx context.Context, theme string) error {
	name, err := c.askName()
	if err != nil {
		return err
	}
	res, err := c.client.QuickCreate(ctx, theme, name, false)
	if err != nil {
		return err
	}
	C.Yes.Fprintf(c.out, "Created game %s. Share the code with the other detectives.\n", res.GameCode)
	return c.sit(ctx, res)
}

func (c *CLI) handleCreate(ctx context.Context, name string) error {
	var err error
	if name == "" {
		if name, err = c.promptForString("Game name: "); err != nil {
			return err
		}
	}
	roomList, err := c.promptForString("Rooms (comma separated, 6 to 12): ")
	if err != nil {
		return err
	}
	code, err := c.client.Create(ctx, name, parseList(roomList), false)
	if err != nil {
		return err
	}
	C.Yes.Fprintf(c.out, "Created game %s.\n", code)
	return c.handleJoin(ctx, code)
}

func (c *CLI) handleJoin(ctx context.Context, arg string) error {
	code, name, _ := strings.Cut(arg, " ")
	if code == "" {
		var err error
		if code, err = c.promptForString("Game code: "); err != nil {
			return err
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		var err error
		if name, err = c.askName(); err != nil {
			return err
		}
	}
	res, err := c.client.Join(ctx, code, name)
	if err != nil {
		return err
	}
	return c.sit(ctx, res)
}

func (c *CLI) handleStart(ctx context.Context) error {
	s, err := c.requireSession()
	if err != nil {
		return err
	}
	if err := c.client.Start(ctx, s.code); err != nil {
		return err
	}
	return c.handleView(ctx)
}

func (c *CLI) handleView(ctx context.Context) error {
	v, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	RenderView(c.out, v)
	return nil
}

func (c *CLI) handleRoll(ctx context.Context, arg string) error {
	a := Action{Action: game.ActionMove}
	if arg != "" {
		dice, err := strconv.Atoi(arg)
		if err != nil || dice < 1 {
			return fmt.Errorf("invalid dice value %q", arg)
		}
		a.Dice = dice
	}
	_, err := c.act(ctx, a)
	return err
}

func (c *CLI) handleTriple(ctx context.Context, kind game.ActionKind, arg string) error {
	v, err := c.refresh(ctx)
	if err != nil {
		return err
	}

	rooms := v.Rooms
	if kind == game.ActionSuggest && v.MyRoom != "" {
		rooms = []string{v.MyRoom}
	}

	var triple [3]string
	if arg != "" {
		triple, err = parseTriple(arg, v.Suspects, v.Weapons, v.Rooms)
	} else {
		triple, err = c.promptForTriple(v.Suspects, v.Weapons, rooms)
	}
	if err != nil {
		return err
	}

	res, err := c.act(ctx, Action{Action: kind, Suspect: triple[0], Weapon: triple[1], Room: triple[2]})
	if err != nil {
		return err
	}
	if kind == game.ActionSuggest && c.brain != nil {
		s := ai.Suggestion{Suspect: triple[0], Weapon: triple[1], Room: triple[2]}
		c.brain.RecordSuggestion(c.session.name, s, res.Disprover, res.RevealedCard)
	}
	return nil
}

func (c *CLI) handlePass(ctx context.Context) error {
	_, err := c.act(ctx, Action{Action: game.ActionPass})
	return err
}

func (c *CLI) handleNotes(ctx context.Context) error {
	if _, err := c.refresh(ctx); err != nil {
		return err
	}
	if c.brain == nil {
		C.Info.Fprintln(c.out, "Your notebook opens once the cards are dealt.")
		return nil
	}
	RenderNotes(c.out, c.brain)
	return nil
}

func (c *CLI) handleHint(ctx context.Context) error {
	v, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if c.brain == nil {
		C.Info.Fprintln(c.out, "Your notebook opens once the cards are dealt.")
		return nil
	}
	if acc, ok := c.brain.Accusation(); ok {
		C.Yes.Fprintf(c.out, "You know enough to accuse: %s, %s, %s\n", ColorizeCard(acc.Suspect), acc.Weapon, acc.Room)
		return nil
	}
	h := c.brain.HintIn(v.MyRoom)
	C.Info.Fprintf(c.out, "Try suggesting: %s, %s, %s\n", ColorizeCard(h.Suspect), h.Weapon, h.Room)
	return nil
}

func (c *CLI) act(ctx context.Context, a Action) (*manager.ActionResult, error) {
	s, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	a.PlayerID = s.playerID
	res, err := c.client.Act(ctx, s.code, a)
	if err != nil {
		return nil, err
	}
	RenderResult(c.out, res)
	return res, nil
}

func (c *CLI) askName() (string, error) {
	if c.session != nil {
		return c.session.name, nil
	}
	return c.promptForString("Your name: ")
}

func (c *CLI) requireSession() (*session, error) {
	if c.session == nil {
		return nil, errors.New("join or create a game first")
	}
	return c.session, nil
}

// sit takes a seat and subscribes to the game's events.
func (c *CLI) sit(ctx context.Context, res *JoinResult) error {
	c.closeStream()
	c.session = &session{code: res.GameCode, playerID: res.PlayerID, name: res.PlayerName}
	c.brain = nil
	C.Info.Fprintf(c.out, "You are seated as %s in game %s.\n", res.PlayerName, res.GameCode)

	conn, err := c.client.Watch(ctx, res.GameCode)
	if err != nil {
		c.log.Debugf("Event stream unavailable: %v", err)
		return nil
	}
	c.conn = conn
	go c.readStream(conn)
	return nil
}

// refresh fetches the view and opens the notebook once the cards are dealt.
func (c *CLI) refresh(ctx context.Context) (*manager.PlayerView, error) {
	s, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	v, err := c.client.View(ctx, s.code, s.playerID)
	if err != nil {
		return nil, err
	}
	if c.brain == nil && v.Status != game.StatusWaiting {
		var players []string
		for _, p := range v.Players {
			players = append(players, p.Name)
		}
		c.brain = ai.NewBrain(c.log, c.rand, game.NewRandomChooser(c.rand))
		c.brain.Setup(v.MyName, players, v.Suspects, v.Weapons, v.Rooms)
		c.brain.ReceiveHand(v.MyCards)
	}
	return v, nil
}

func (c *CLI) readStream(conn *websocket.Conn) {
	for {
		var m streamMessage
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		c.mu.Lock()
		c.pending = append(c.pending, m)
		c.mu.Unlock()
	}
}

func (c *CLI) closeStream() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// drainEvents prints what happened since the last prompt and feeds other
// players' suggestions into the notebook.
func (c *CLI) drainEvents(ctx context.Context) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, m := range pending {
		c.observe(ctx, m)
	}
}

func (c *CLI) observe(ctx context.Context, m streamMessage) {
	if line := describeEvent(m); line != "" {
		if m.Type == "comment_added" {
			C.Narrator.Fprintln(c.out, line)
		} else {
			C.Info.Fprintln(c.out, "» "+line)
		}
	}
	if c.session == nil {
		return
	}
	// Open the notebook at the deal so no later suggestion is missed.
	if m.Type == "game_started" && c.brain == nil {
		if _, err := c.refresh(ctx); err != nil {
			c.log.Debugf("Could not open the notebook: %v", err)
		}
	}
	if m.Type != "suggestion_resolved" || c.brain == nil {
		return
	}
	var e events.SuggestionResolved
	if err := json.Unmarshal(m.Data, &e); err != nil || e.PlayerName == c.session.name {
		return
	}
	c.brain.RecordSuggestion(e.PlayerName, ai.Suggestion{Suspect: e.Suspect, Weapon: e.Weapon, Room: e.Room}, e.DisproverName, "")
}
