package manager

import (
	"errors"
	"fmt"
	"strings"

	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
)

// Action is a player's request on their turn.
type Action struct {
	PlayerID string
	Kind     game.ActionKind
	Suspect  string
	Weapon   string
	Room     string
	// Dice is optional for moves; zero means the server rolls.
	Dice int
}

// ActionResult is what the acting player gets back. RevealedCard is private to them.
type ActionResult struct {
	Kind    game.ActionKind `json:"action"`
	Message string          `json:"message"`

	Disproved    bool   `json:"disproved"`
	Disprover    string `json:"disproved_by,omitempty"`
	RevealedCard string `json:"card_shown,omitempty"`

	Correct  bool   `json:"correct,omitempty"`
	Finished bool   `json:"game_finished,omitempty"`
	Winner   string `json:"winner,omitempty"`

	Dice     int    `json:"dice_value,omitempty"`
	Position int    `json:"new_position"`
	Room     string `json:"new_room,omitempty"`

	NextPlayer string `json:"next_player,omitempty"`
}

// Act validates and applies one action, then persists and announces it.
func (m *Manager) Act(code string, a Action) (*ActionResult, error) {
	code = normalizeCode(code)
	var (
		result    *ActionResult
		published []events.Event
	)
	err := m.mutate(code, func(g *game.Game) error {
		if err := m.checkTurn(g, a); err != nil {
			return err
		}

		var err error
		switch a.Kind {
		case game.ActionMove:
			result, published, err = m.move(g, a)
		case game.ActionSuggest:
			result, published, err = m.suggest(g, a)
		case game.ActionAccuse:
			result, published, err = m.accuse(g, a)
		case game.ActionPass:
			result, published = m.pass(g, a)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, e := range published {
		m.bus.Publish(e)
	}
	return result, nil
}

// checkTurn applies the gates every action shares, in the order the API reports them.
func (m *Manager) checkTurn(g *game.Game, a Action) error {
	switch g.Status {
	case game.StatusWaiting:
		return fmt.Errorf("%w: game has not started", ErrInvalidState)
	case game.StatusFinished:
		return fmt.Errorf("%w: game is finished", ErrInvalidState)
	}
	if p, _ := g.PlayerByID(a.PlayerID); p == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, a.PlayerID)
	}
	if !m.engine.CanAct(g, a.PlayerID) {
		return fmt.Errorf("%w: not your turn", ErrForbidden)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: invalid action type %q", ErrValidation, a.Kind)
	}
	return nil
}

func (m *Manager) move(g *game.Game, a Action) (*ActionResult, []events.Event, error) {
	dice := a.Dice
	if dice == 0 {
		dice = m.engine.RollDice()
	}
	pos, room, err := m.engine.MovePlayer(g, a.PlayerID, dice)
	switch {
	case errors.Is(err, game.ErrAlreadyMoved):
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	case errors.Is(err, game.ErrInvalidDice):
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, game.ErrNotYourTurn):
		return nil, nil, fmt.Errorf("%w: %v", ErrForbidden, err)
	case err != nil:
		return nil, nil, err
	}

	player, _ := g.PlayerByID(a.PlayerID)
	msg := fmt.Sprintf("%s rolled %d and moved to %s", player.Name, dice, room)
	m.engine.RecordTurn(g, a.PlayerID, game.ActionMove, msg)

	return &ActionResult{
			Kind:       game.ActionMove,
			Message:    msg,
			Dice:       dice,
			Position:   pos,
			Room:       room,
			NextPlayer: player.Name,
		}, []events.Event{
			events.PlayerMoved{Base: events.Base{Code: g.ID}, PlayerName: player.Name, Dice: dice, Room: room},
		}, nil
}

func (m *Manager) suggest(g *game.Game, a Action) (*ActionResult, []events.Event, error) {
	if err := validateTriple(g, a, "Suggestion"); err != nil {
		return nil, nil, err
	}
	player, _ := g.PlayerByID(a.PlayerID)
	if !m.engine.CanSuggestIn(g, a.PlayerID, a.Room) {
		return nil, nil, fmt.Errorf("%w: you must be in the %s to suggest it, you are in the %s", ErrValidation, a.Room, g.RoomAt(player.Position))
	}

	res := m.engine.CheckSuggestion(g, a.PlayerID, a.Suspect, a.Weapon, a.Room)
	idx := m.engine.RecordTurn(g, a.PlayerID, game.ActionSuggest, tripleDetails(a))
	m.engine.AdvanceTurn(g)
	next := g.CurrentPlayer().Name

	result := &ActionResult{Kind: game.ActionSuggest, NextPlayer: next}
	resolved := events.SuggestionResolved{
		Base:         events.Base{Code: g.ID},
		TurnIndex:    idx,
		PlayerName:   player.Name,
		Suspect:      a.Suspect,
		Weapon:       a.Weapon,
		Room:         a.Room,
		Tone:         g.Tone,
		UseNarration: g.UseNarration,
	}
	if res.Disproved {
		result.Disproved = true
		result.Disprover = res.Disprover
		result.RevealedCard = res.Revealed.Name
		result.Message = fmt.Sprintf("%s disproved the suggestion by showing: %s", res.Disprover, res.Revealed.Name)
		resolved.DisproverName = res.Disprover
		resolved.RevealedCard = res.Revealed.Name
	} else {
		result.Message = "No one could disprove the suggestion!"
	}

	return result, []events.Event{
		resolved,
		events.TurnAdvanced{Base: events.Base{Code: g.ID}, PlayerName: next, Status: g.Status},
	}, nil
}

// accuse needs all three names but does not check them against the deck:
// naming a card that does not exist is simply a wrong accusation.
func (m *Manager) accuse(g *game.Game, a Action) (*ActionResult, []events.Event, error) {
	if err := requireTriple(a, "Accusation"); err != nil {
		return nil, nil, err
	}

	player, _ := g.PlayerByID(a.PlayerID)
	correct, msg := m.engine.ProcessAccusation(g, a.PlayerID, a.Suspect, a.Weapon, a.Room)
	idx := m.engine.RecordTurn(g, a.PlayerID, game.ActionAccuse, tripleDetails(a))

	published := []events.Event{events.AccusationResolved{
		Base:         events.Base{Code: g.ID},
		TurnIndex:    idx,
		PlayerName:   player.Name,
		Suspect:      a.Suspect,
		Weapon:       a.Weapon,
		Room:         a.Room,
		Correct:      correct,
		Finished:     g.Status == game.StatusFinished,
		Winner:       g.Winner,
		Tone:         g.Tone,
		UseNarration: g.UseNarration,
	}}
	result := &ActionResult{
		Kind:     game.ActionAccuse,
		Message:  msg,
		Correct:  correct,
		Finished: g.Status == game.StatusFinished,
		Winner:   g.Winner,
	}
	if g.Status == game.StatusInProgress {
		m.engine.AdvanceTurn(g)
		result.NextPlayer = g.CurrentPlayer().Name
		published = append(published, events.TurnAdvanced{Base: events.Base{Code: g.ID}, PlayerName: result.NextPlayer, Status: g.Status})
	}
	m.log.Infof("Accusation in game %s by %s: correct=%v finished=%v", g.ID, player.Name, correct, result.Finished)
	return result, published, nil
}

func (m *Manager) pass(g *game.Game, a Action) (*ActionResult, []events.Event) {
	player, _ := g.PlayerByID(a.PlayerID)
	m.engine.RecordTurn(g, a.PlayerID, game.ActionPass, "Passed turn")
	m.engine.AdvanceTurn(g)
	next := g.CurrentPlayer().Name

	return &ActionResult{
			Kind:       game.ActionPass,
			Message:    fmt.Sprintf("%s passed their turn", player.Name),
			NextPlayer: next,
		}, []events.Event{
			events.TurnPassed{Base: events.Base{Code: g.ID}, PlayerName: player.Name},
			events.TurnAdvanced{Base: events.Base{Code: g.ID}, PlayerName: next, Status: g.Status},
		}
}

func requireTriple(a Action, what string) error {
	if strings.TrimSpace(a.Suspect) == "" || strings.TrimSpace(a.Weapon) == "" || strings.TrimSpace(a.Room) == "" {
		return fmt.Errorf("%w: %s requires suspect, weapon, and room", ErrValidation, what)
	}
	return nil
}

// validateTriple requires all three names and that each names a card of its kind.
func validateTriple(g *game.Game, a Action, what string) error {
	if err := requireTriple(a, what); err != nil {
		return err
	}
	checks := []struct {
		name  string
		cards []game.Card
	}{
		{a.Suspect, g.Suspects},
		{a.Weapon, g.Weapons},
		{a.Room, g.RoomCards},
	}
	for _, c := range checks {
		if !containsCard(c.cards, c.name) {
			return fmt.Errorf("%w: unknown card %q", ErrValidation, c.name)
		}
	}
	return nil
}

func containsCard(cards []game.Card, name string) bool {
	for _, c := range cards {
		if c.Name == name {
			return true
		}
	}
	return false
}

func tripleDetails(a Action) string {
	return fmt.Sprintf("%s + %s + %s", a.Suspect, a.Weapon, a.Room)
}
