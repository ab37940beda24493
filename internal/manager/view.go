package manager

import (
	"fmt"

	"cluedo-custom/internal/game"
)

const recentTurns = 5

// PlayerView is the game as one player may see it: their own hand, counts only
// for everyone else, and never the solution.
type PlayerView struct {
	GameCode string      `json:"game_code"`
	GameName string      `json:"game_name"`
	Status   game.Status `json:"status"`
	Tone     string      `json:"tone,omitempty"`
	Scenario string      `json:"scenario,omitempty"`

	Rooms    []string `json:"rooms"`
	Suspects []string `json:"suspects"`
	Weapons  []string `json:"weapons"`

	MyID       string      `json:"my_id"`
	MyName     string      `json:"my_name"`
	MyCards    []game.Card `json:"my_cards"`
	MyPosition int         `json:"my_position"`
	MyRoom     string      `json:"my_room"`
	Active     bool        `json:"active"`
	HasRolled  bool        `json:"has_rolled"`

	Players []OtherPlayer `json:"players"`

	CurrentTurn string      `json:"current_turn,omitempty"`
	IsMyTurn    bool        `json:"is_my_turn"`
	RecentTurns []game.Turn `json:"recent_turns"`
	Winner      string      `json:"winner,omitempty"`
}

// OtherPlayer is the public face of a player.
type OtherPlayer struct {
	Name      string `json:"name"`
	Active    bool   `json:"is_active"`
	CardCount int    `json:"card_count"`
	Position  int    `json:"position"`
	Room      string `json:"room"`
	IsMe      bool   `json:"is_me"`
}

// View builds the redacted view of a game for one player.
func (m *Manager) View(code, playerID string) (*PlayerView, error) {
	var view *PlayerView
	err := m.read(code, func(g *game.Game) error {
		me, _ := g.PlayerByID(playerID)
		if me == nil {
			return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
		}
		view = buildView(g, me)
		return nil
	})
	return view, err
}

func buildView(g *game.Game, me *game.Player) *PlayerView {
	v := &PlayerView{
		GameCode:   g.ID,
		GameName:   g.Name,
		Status:     g.Status,
		Tone:       g.Tone,
		Scenario:   g.Scenario,
		Rooms:      append([]string(nil), g.Rooms...),
		Suspects:   append([]string(nil), g.SuspectNames...),
		Weapons:    append([]string(nil), g.WeaponNames...),
		MyID:       me.ID,
		MyName:     me.Name,
		MyCards:    append([]game.Card{}, me.Hand...),
		MyPosition: me.Position,
		MyRoom:     g.RoomAt(me.Position),
		Active:     me.Active,
		HasRolled:  me.HasRolled,
		Winner:     g.Winner,
	}

	for _, p := range g.Players {
		v.Players = append(v.Players, OtherPlayer{
			Name:      p.Name,
			Active:    p.Active,
			CardCount: len(p.Hand),
			Position:  p.Position,
			Room:      g.RoomAt(p.Position),
			IsMe:      p.ID == me.ID,
		})
	}

	if g.Status == game.StatusInProgress {
		if current := g.CurrentPlayer(); current != nil {
			v.CurrentTurn = current.Name
			v.IsMyTurn = current.ID == me.ID
		}
	}

	start := len(g.Turns) - recentTurns
	if start < 0 {
		start = 0
	}
	v.RecentTurns = append([]game.Turn{}, g.Turns[start:]...)
	// Player ids are the only thing standing in for a session.
	for i := range v.RecentTurns {
		v.RecentTurns[i].PlayerID = ""
	}
	return v
}
