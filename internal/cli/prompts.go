package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

var errAborted = errors.New("input aborted")

func (c *CLI) printHelp() {
	C.Header.Fprintln(c.out, "\n--- Commands ---")

	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Command", "Alias", "Description"})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"list", "ls", "List the open games on the server."},
		{"quick [theme]", "q", "Create a game from a theme and take the first seat."},
		{"create <name>", "c", "Create a game with your own rooms and take the first seat."},
		{"join <code> [name]", "j", "Join a waiting game."},
		{"start", "", "Deal the cards once everyone has joined."},
		{"view", "v", "Show the game from your seat."},
		{"roll [dice]", "r", "Roll the dice and walk around the board."},
		{"suggest [s, w, r]", "s", "Suggest a suspect, weapon and room."},
		{"accuse [s, w, r]", "a", "Make your final accusation."},
		{"pass", "p", "End your turn."},
		{"notes", "n", "Display your detective notes."},
		{"hint", "h", "Ask your notebook what to suggest next."},
		{"help", "?", "Show this help message."},
		{"quit", "exit", "Leave the client."},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func (c *CLI) promptForString(prompt string) (string, error) {
	if c.line == nil {
		return "", errAborted
	}
	for {
		input, err := c.line.Prompt(prompt)
		if err != nil {
			return "", errAborted
		}
		trimmed := strings.TrimSpace(input)
		if trimmed != "" {
			c.line.AppendHistory(trimmed)
			return trimmed, nil
		}
	}
}

func (c *CLI) promptForSelection(prompt string, options []string) (string, error) {
	for {
		C.Header.Fprintln(c.out, "\n"+prompt)
		for i, opt := range options {
			fmt.Fprintf(c.out, " %2d: %s\n", i+1, ColorizeCard(opt))
		}
		input, err := c.promptForString("Enter number or name: ")
		if err != nil {
			return "", err
		}
		if choice, ok := matchOption(input, options); ok {
			return choice, nil
		}
		C.Warn.Fprintln(c.out, "Invalid selection.")
	}
}

// matchOption resolves a 1-based index or a case-insensitive name.
func matchOption(input string, options []string) (string, bool) {
	input = strings.TrimSpace(input)
	if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(options) {
		return options[num-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return "", false
}

// promptForTriple asks for a suspect, a weapon and a room, one list at a time.
func (c *CLI) promptForTriple(suspects, weapons, rooms []string) ([3]string, error) {
	var triple [3]string
	lists := [][]string{suspects, weapons, rooms}
	titles := []string{"Which suspect?", "Which weapon?", "Which room?"}
	for i := range lists {
		choice, err := c.promptForSelection(titles[i], lists[i])
		if err != nil {
			return triple, err
		}
		triple[i] = choice
	}
	return triple, nil
}

// parseTriple reads "suspect, weapon, room" typed on the command line.
func parseTriple(arg string, suspects, weapons, rooms []string) ([3]string, error) {
	var triple [3]string
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return triple, errors.New("expected: suspect, weapon, room")
	}
	lists := [][]string{suspects, weapons, rooms}
	for i, part := range parts {
		choice, ok := matchOption(part, lists[i])
		if !ok {
			return triple, fmt.Errorf("unknown card %q", strings.TrimSpace(part))
		}
		triple[i] = choice
	}
	return triple, nil
}

// parseList splits a comma separated list, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
