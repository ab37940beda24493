package game

import (
	"fmt"
	"time"
)

// CardKind defines the type of a card using a typed enum.
type CardKind int

const (
	KindSuspect CardKind = iota
	KindWeapon
	KindRoom
)

var kindNames = []string{"suspect", "weapon", "room"}

// String returns the string representation of a CardKind.
func (k CardKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k CardKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CardKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = CardKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown card kind %q", string(b))
}

// Card is a single suspect, weapon or room card.
type Card struct {
	Name string   `json:"name"`
	Kind CardKind `json:"kind"`
}

// Status is the lifecycle stage of a game.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// ActionKind is what a player did on a turn.
type ActionKind string

const (
	ActionMove    ActionKind = "move"
	ActionSuggest ActionKind = "suggest"
	ActionAccuse  ActionKind = "accuse"
	ActionPass    ActionKind = "pass"
)

// Valid reports whether a is one of the known action kinds.
func (a ActionKind) Valid() bool {
	switch a {
	case ActionMove, ActionSuggest, ActionAccuse, ActionPass:
		return true
	}
	return false
}

// Player is a participant in one game.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Hand      []Card `json:"hand"`
	Active    bool   `json:"active"`
	Position  int    `json:"position"`
	HasRolled bool   `json:"has_rolled"`
}

// Holds reports whether the player has a card with the given name.
func (p *Player) Holds(name string) bool {
	for _, c := range p.Hand {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Solution is the hidden suspect, weapon and room.
type Solution struct {
	Suspect Card `json:"suspect"`
	Weapon  Card `json:"weapon"`
	Room    Card `json:"room"`
}

// Cards returns the solution as a slice ordered suspect, weapon, room.
func (s Solution) Cards() []Card {
	return []Card{s.Suspect, s.Weapon, s.Room}
}

// Turn is one entry of the append-only turn log.
type Turn struct {
	PlayerID   string     `json:"player_id,omitempty"`
	PlayerName string     `json:"player_name"`
	Action     ActionKind `json:"action"`
	Details    string     `json:"details,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Game is the aggregate holding the full state of one match.
type Game struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       Status `json:"status"`
	Tone         string `json:"tone,omitempty"`
	Scenario     string `json:"scenario,omitempty"`
	UseNarration bool   `json:"use_narration"`
	MaxPlayers   int    `json:"max_players"`

	// Rooms defines the board: a closed circuit in this order.
	Rooms        []string `json:"rooms"`
	SuspectNames []string `json:"suspect_names"`
	WeaponNames  []string `json:"weapon_names"`

	Players            []*Player `json:"players"`
	CurrentPlayerIndex int       `json:"current_player_index"`

	Suspects  []Card `json:"suspects"`
	Weapons   []Card `json:"weapons"`
	RoomCards []Card `json:"room_cards"`

	Solution *Solution `json:"solution,omitempty"`
	Turns    []Turn    `json:"turns"`
	Winner   string    `json:"winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PlayerByID returns the player with the given id and its index, or nil and -1.
func (g *Game) PlayerByID(id string) (*Player, int) {
	for i, p := range g.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// CurrentPlayer returns the player whose turn it is, or nil if there are no players.
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// ActivePlayers returns the players that have not been eliminated.
func (g *Game) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range g.Players {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

// AddPlayer appends a new active player at the first room.
func (g *Game) AddPlayer(id, name string) *Player {
	p := &Player{ID: id, Name: name, Hand: []Card{}, Active: true}
	g.Players = append(g.Players, p)
	return p
}

// IsFull reports whether no more players may join.
func (g *Game) IsFull() bool {
	return g.MaxPlayers > 0 && len(g.Players) >= g.MaxPlayers
}

// Deck returns every card of the game: suspects, weapons, then rooms.
func (g *Game) Deck() []Card {
	deck := make([]Card, 0, len(g.Suspects)+len(g.Weapons)+len(g.RoomCards))
	deck = append(deck, g.Suspects...)
	deck = append(deck, g.Weapons...)
	deck = append(deck, g.RoomCards...)
	return deck
}

// RoomAt returns the room name at a board position.
func (g *Game) RoomAt(pos int) string {
	if pos < 0 || pos >= len(g.Rooms) {
		return ""
	}
	return g.Rooms[pos]
}

// Clone returns a deep copy of the game so callers can read it without holding a lock.
func (g *Game) Clone() *Game {
	c := *g
	c.Rooms = cloneSlice(g.Rooms)
	c.SuspectNames = cloneSlice(g.SuspectNames)
	c.WeaponNames = cloneSlice(g.WeaponNames)
	c.Suspects = cloneSlice(g.Suspects)
	c.Weapons = cloneSlice(g.Weapons)
	c.RoomCards = cloneSlice(g.RoomCards)
	c.Turns = cloneSlice(g.Turns)
	if g.Solution != nil {
		s := *g.Solution
		c.Solution = &s
	}
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		pc := *p
		pc.Hand = cloneSlice(p.Hand)
		c.Players[i] = &pc
	}
	return &c
}

// cloneSlice copies s, keeping nil and empty distinct so JSON output is stable.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
