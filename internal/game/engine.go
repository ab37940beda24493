package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSuspects are used when a game does not bring its own suspects.
var DefaultSuspects = []string{
	"Miss Scarlett",
	"Colonel Mustard",
	"Mrs. White",
	"Reverend Green",
	"Mrs. Peacock",
	"Professor Plum",
}

// DefaultWeapons are used when a game does not bring its own weapons.
var DefaultWeapons = []string{
	"Candlestick",
	"Knife",
	"Lead Pipe",
	"Revolver",
	"Rope",
	"Wrench",
}

var (
	errNoPlayers    = errors.New("cannot initialize a game without players")
	errNoRooms      = errors.New("cannot initialize a game without rooms")
	errNoSuspects   = errors.New("cannot initialize a game without suspects")
	errNoWeapons    = errors.New("cannot initialize a game without weapons")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrAlreadyMoved = errors.New("already rolled this turn")
	ErrInvalidDice  = errors.New("dice value must be positive")
)

// SuggestionResult is the outcome of a suggestion.
// Revealed is meant for the suggester only.
type SuggestionResult struct {
	Disproved bool
	Disprover string
	Revealed  *Card
}

// Engine evaluates the rules over a Game. It performs no I/O.
type Engine struct {
	mu      sync.Mutex // guards rand and chooser, shared between games
	rand    *rand.Rand
	chooser Chooser
	log     *logrus.Logger
}

// NewEngine creates an engine with its random source, card chooser and logger injected.
func NewEngine(logger *logrus.Logger, rand *rand.Rand, chooser Chooser) *Engine {
	return &Engine{
		rand:    rand,
		chooser: chooser,
		log:     logger,
	}
}

// Initialize picks the solution, deals the remaining cards and starts the game.
func (e *Engine) Initialize(g *Game, suspectNames, weaponNames []string) error {
	switch {
	case len(g.Players) == 0:
		return errNoPlayers
	case len(g.Rooms) == 0:
		return errNoRooms
	case len(suspectNames) == 0:
		return errNoSuspects
	case len(weaponNames) == 0:
		return errNoWeapons
	}

	g.Suspects = makeCards(suspectNames, KindSuspect)
	g.Weapons = makeCards(weaponNames, KindWeapon)
	g.RoomCards = makeCards(g.Rooms, KindRoom)

	e.mu.Lock()
	solution := &Solution{
		Suspect: g.Suspects[e.rand.Intn(len(g.Suspects))],
		Weapon:  g.Weapons[e.rand.Intn(len(g.Weapons))],
		Room:    g.RoomCards[e.rand.Intn(len(g.RoomCards))],
	}

	var cardsToDeal []Card
	for _, card := range g.Deck() {
		if card == solution.Suspect || card == solution.Weapon || card == solution.Room {
			continue
		}
		cardsToDeal = append(cardsToDeal, card)
	}
	e.rand.Shuffle(len(cardsToDeal), func(i, j int) { cardsToDeal[i], cardsToDeal[j] = cardsToDeal[j], cardsToDeal[i] })
	e.mu.Unlock()

	for _, p := range g.Players {
		p.Hand = nil
		p.Active = true
		p.Position = 0
		p.HasRolled = false
	}
	for i, card := range cardsToDeal {
		p := g.Players[i%len(g.Players)]
		p.Hand = append(p.Hand, card)
	}

	g.Solution = solution
	g.Status = StatusInProgress
	g.CurrentPlayerIndex = 0

	for _, p := range g.Players {
		e.log.Debugf("[%s] %s hand: %v", g.ID, p.Name, cardNames(p.Hand))
	}
	e.log.Debugf("[%s] Solution: %s / %s / %s", g.ID, solution.Suspect.Name, solution.Weapon.Name, solution.Room.Name)
	return nil
}

// CheckSuggestion finds the first player clockwise from the suggester holding one of
// the named cards. It tests hand membership only and never consults the solution.
func (e *Engine) CheckSuggestion(g *Game, playerID, suspect, weapon, room string) SuggestionResult {
	_, suggesterIdx := g.PlayerByID(playerID)
	if suggesterIdx < 0 {
		return SuggestionResult{}
	}

	for i := 1; i < len(g.Players); i++ {
		checker := g.Players[(suggesterIdx+i)%len(g.Players)]
		var canShow []Card
		for _, card := range checker.Hand {
			if card.Name == suspect || card.Name == weapon || card.Name == room {
				canShow = append(canShow, card)
			}
		}
		if len(canShow) == 0 {
			continue
		}
		e.mu.Lock()
		shown := e.chooser.Choose(canShow)
		e.mu.Unlock()
		return SuggestionResult{Disproved: true, Disprover: checker.Name, Revealed: &shown}
	}
	return SuggestionResult{}
}

// CheckAccusation reports whether all three names equal the solution exactly.
func (e *Engine) CheckAccusation(g *Game, suspect, weapon, room string) bool {
	if g.Solution == nil {
		return false
	}
	return g.Solution.Suspect.Name == suspect &&
		g.Solution.Weapon.Name == weapon &&
		g.Solution.Room.Name == room
}

// ProcessAccusation adjudicates an accusation. A correct one wins the game; a wrong
// one eliminates the accuser and may end the game by elimination.
func (e *Engine) ProcessAccusation(g *Game, playerID, suspect, weapon, room string) (bool, string) {
	player, _ := g.PlayerByID(playerID)
	if player == nil {
		return false, "Player not found"
	}

	if e.CheckAccusation(g, suspect, weapon, room) {
		g.Winner = player.Name
		g.Status = StatusFinished
		return true, fmt.Sprintf("%s wins! The accusation was correct.", player.Name)
	}

	player.Active = false
	active := g.ActivePlayers()
	switch len(active) {
	case 0:
		g.Status = StatusFinished
		return false, "All players eliminated. Game over!"
	case 1:
		g.Status = StatusFinished
		g.Winner = active[0].Name
		return false, fmt.Sprintf("%s's accusation was wrong. %s wins by elimination!", player.Name, g.Winner)
	}
	return false, fmt.Sprintf("%s's accusation was wrong and is eliminated from the game.", player.Name)
}

// RollDice returns a value between 1 and 6.
func (e *Engine) RollDice() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Intn(6) + 1
}

// MovePlayer walks the player dice rooms forward around the board.
func (e *Engine) MovePlayer(g *Game, playerID string, dice int) (int, string, error) {
	if !e.CanAct(g, playerID) {
		return 0, "", ErrNotYourTurn
	}
	if dice <= 0 {
		return 0, "", ErrInvalidDice
	}
	player, _ := g.PlayerByID(playerID)
	if player.HasRolled {
		return player.Position, g.RoomAt(player.Position), ErrAlreadyMoved
	}

	player.Position = (player.Position + dice) % len(g.Rooms)
	player.HasRolled = true
	return player.Position, g.RoomAt(player.Position), nil
}

// AdvanceTurn hands the turn to the next active player, wrapping around.
// If nobody else is active the current index comes back to where it started.
func (e *Engine) AdvanceTurn(g *Game) {
	if len(g.Players) == 0 {
		return
	}
	if current := g.CurrentPlayer(); current != nil {
		current.HasRolled = false
	}

	idx := g.CurrentPlayerIndex
	for attempts := 0; attempts < len(g.Players); attempts++ {
		idx = (idx + 1) % len(g.Players)
		if g.Players[idx].Active {
			g.CurrentPlayerIndex = idx
			return
		}
	}
}

// CanAct reports whether it is this player's turn in a running game.
func (e *Engine) CanAct(g *Game, playerID string) bool {
	if g.Status != StatusInProgress {
		return false
	}
	current := g.CurrentPlayer()
	return current != nil && current.ID == playerID && current.Active
}

// CanSuggestIn reports whether the player stands in the named room.
// Suggestions may only name the room the suggester is in.
func (e *Engine) CanSuggestIn(g *Game, playerID, room string) bool {
	player, _ := g.PlayerByID(playerID)
	return player != nil && room != "" && g.RoomAt(player.Position) == room
}

// RecordTurn appends to the turn log and returns the index of the new entry,
// or -1 if the player is unknown.
func (e *Engine) RecordTurn(g *Game, playerID string, action ActionKind, details string) int {
	player, _ := g.PlayerByID(playerID)
	if player == nil {
		return -1
	}
	g.Turns = append(g.Turns, Turn{
		PlayerID:   playerID,
		PlayerName: player.Name,
		Action:     action,
		Details:    details,
		Timestamp:  time.Now(),
	})
	return len(g.Turns) - 1
}

func makeCards(names []string, kind CardKind) []Card {
	cards := make([]Card, len(names))
	for i, name := range names {
		cards[i] = Card{Name: name, Kind: kind}
	}
	return cards
}

func cardNames(cards []Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}
