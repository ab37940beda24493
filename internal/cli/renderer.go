package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cluedo-custom/internal/ai"
	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Yes, No, Maybe, Info, Warn, Header, Prompt, Narrator *color.Color
}{
	Yes:      color.New(color.FgGreen),
	No:       color.New(color.FgRed),
	Maybe:    color.New(color.FgYellow),
	Info:     color.New(color.FgCyan),
	Warn:     color.New(color.FgHiYellow),
	Header:   color.New(color.FgWhite, color.Bold),
	Prompt:   color.New(color.FgHiWhite),
	Narrator: color.New(color.FgMagenta, color.Italic),
}

// SuspectColors maps the classic suspects to their colors.
var SuspectColors = map[string]*color.Color{
	"Miss Scarlett":   color.New(color.FgRed),
	"Colonel Mustard": color.New(color.FgYellow),
	"Mrs. White":      color.New(color.FgWhite),
	"Reverend Green":  color.New(color.FgGreen),
	"Mrs. Peacock":    color.New(color.FgBlue),
	"Professor Plum":  color.New(color.FgMagenta),
}

// ColorizeCard returns a card name as a colored string if it's a classic suspect.
func ColorizeCard(name string) string {
	if c, ok := SuspectColors[name]; ok {
		return c.Sprint(name)
	}
	return name
}

// RenderView prints a player's view of the game.
func RenderView(w io.Writer, v *manager.PlayerView) {
	C.Header.Fprintf(w, "\n=== %s [%s] ===\n", v.GameName, v.GameCode)
	if v.Scenario != "" {
		C.Narrator.Fprintf(w, "%s\n", v.Scenario)
	}

	switch v.Status {
	case game.StatusWaiting:
		C.Info.Fprintf(w, "Waiting for players (%d joined). Share the code %s.\n", len(v.Players), v.GameCode)
	case game.StatusFinished:
		if v.Winner != "" {
			C.Yes.Fprintf(w, "Game over! %s solved the case.\n", v.Winner)
		} else {
			C.No.Fprintln(w, "Game over! Nobody solved the case.")
		}
	default:
		if v.IsMyTurn {
			C.Yes.Fprintln(w, "It's your turn!")
		} else {
			C.Info.Fprintf(w, "Waiting for %s.\n", v.CurrentTurn)
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Player", "Room", "Cards", "Status"})
	for _, p := range v.Players {
		name := p.Name
		if p.IsMe {
			name += " (you)"
		}
		status := C.Yes.Sprint("in play")
		if !p.Active {
			status = C.No.Sprint("eliminated")
		}
		if p.Name == v.CurrentTurn && v.Status == game.StatusInProgress {
			name = "▶ " + name
		}
		t.AppendRow(table.Row{name, p.Room, p.CardCount, status})
	}
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()

	if len(v.MyCards) > 0 {
		var cards []string
		for _, c := range v.MyCards {
			cards = append(cards, ColorizeCard(c.Name))
		}
		C.Info.Fprintf(w, "Your cards: %s\n", strings.Join(cards, ", "))
	}
	if v.MyRoom != "" {
		C.Info.Fprintf(w, "You are in the %s.\n", v.MyRoom)
	}

	if len(v.RecentTurns) > 0 {
		C.Header.Fprintln(w, "\nRecent turns:")
		for _, turn := range v.RecentTurns {
			fmt.Fprintf(w, " - %s %s", turn.PlayerName, turn.Action)
			if turn.Details != "" {
				fmt.Fprintf(w, ": %s", turn.Details)
			}
			fmt.Fprintln(w)
			if turn.Comment != "" {
				C.Narrator.Fprintf(w, "   Desland: %s\n", turn.Comment)
			}
		}
	}
}

// RenderResult prints the outcome of the player's own action.
func RenderResult(w io.Writer, r *manager.ActionResult) {
	switch r.Kind {
	case game.ActionSuggest:
		if r.Disproved {
			C.Info.Fprintf(w, "%s showed you: %s\n", r.Disprover, ColorizeCard(r.RevealedCard))
		} else {
			C.Yes.Fprintln(w, "Nobody could disprove your suggestion!")
		}
	case game.ActionAccuse:
		if r.Correct {
			C.Yes.Fprintln(w, r.Message)
		} else {
			C.No.Fprintln(w, r.Message)
		}
	default:
		C.Info.Fprintln(w, r.Message)
	}
	if r.NextPlayer != "" && r.Kind != game.ActionMove {
		C.Info.Fprintf(w, "Next up: %s\n", r.NextPlayer)
	}
}

// RenderNotes displays the brain's knowledge grid in a formatted table.
func RenderNotes(w io.Writer, b *ai.Brain) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s's Detective Notes", b.Name()))
	header := table.Row{"Card", "Type"}
	for _, p := range b.Players() {
		header = append(header, ColorizeCard(p))
	}
	header = append(header, "Envelope")
	t.AppendHeader(header)

	for i, k := range []game.CardKind{game.KindSuspect, game.KindWeapon, game.KindRoom} {
		if i > 0 {
			t.AppendSeparator()
		}
		for _, card := range b.Cards(k) {
			row := table.Row{ColorizeCard(card), k.String()}
			for _, p := range b.Players() {
				row = append(row, statusToSymbol(b.Status(card, p)))
			}
			row = append(row, statusToSymbol(b.Status(card, ai.Envelope)))
			t.AppendRow(row)
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Render()
}

func statusToSymbol(status ai.CardStatus) string {
	switch status {
	case ai.StatusYes:
		return C.Yes.Sprint("✔")
	case ai.StatusNo:
		return C.No.Sprint("✖")
	default:
		return C.Maybe.Sprint("?")
	}
}

// streamMessage is one frame of the game event stream.
type streamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// describeEvent turns a stream message into a line for the console.
// Unknown or undecodable messages yield "".
func describeEvent(m streamMessage) string {
	switch m.Type {
	case "player_joined":
		var e events.PlayerJoined
		if json.Unmarshal(m.Data, &e) == nil {
			return fmt.Sprintf("%s joined (%d players)", e.PlayerName, e.PlayerCount)
		}
	case "game_started":
		var e events.GameStarted
		if json.Unmarshal(m.Data, &e) == nil {
			return fmt.Sprintf("The game has started, %s plays first", e.FirstPlayer)
		}
	case "player_moved":
		var e events.PlayerMoved
		if json.Unmarshal(m.Data, &e) == nil {
			return fmt.Sprintf("%s rolled %d and walked to the %s", e.PlayerName, e.Dice, e.Room)
		}
	case "suggestion_resolved":
		var e events.SuggestionResolved
		if json.Unmarshal(m.Data, &e) == nil {
			line := fmt.Sprintf("%s suggests %s with the %s in the %s", e.PlayerName, e.Suspect, e.Weapon, e.Room)
			if e.DisproverName != "" {
				return line + fmt.Sprintf("; %s shows a card", e.DisproverName)
			}
			return line + "; nobody can disprove"
		}
	case "accusation_resolved":
		var e events.AccusationResolved
		if json.Unmarshal(m.Data, &e) == nil {
			if e.Correct {
				return fmt.Sprintf("%s accuses %s with the %s in the %s, and is right!", e.PlayerName, e.Suspect, e.Weapon, e.Room)
			}
			line := fmt.Sprintf("%s accuses %s with the %s in the %s, and is wrong", e.PlayerName, e.Suspect, e.Weapon, e.Room)
			if e.Finished && e.Winner != "" {
				line += fmt.Sprintf(". %s wins by elimination", e.Winner)
			}
			return line
		}
	case "turn_passed":
		var e events.TurnPassed
		if json.Unmarshal(m.Data, &e) == nil {
			return fmt.Sprintf("%s passes", e.PlayerName)
		}
	case "turn_advanced":
		var e events.TurnAdvanced
		if json.Unmarshal(m.Data, &e) == nil && e.Status == game.StatusInProgress {
			return fmt.Sprintf("It is now %s's turn", e.PlayerName)
		}
	case "comment_added":
		var e events.CommentAdded
		if json.Unmarshal(m.Data, &e) == nil {
			return "Desland: " + e.Comment
		}
	case "game_deleted":
		return "The game was deleted"
	}
	return ""
}
