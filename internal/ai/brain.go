// Package ai keeps a player's deduction notebook and proposes suggestions
// from what the notebook knows.
package ai

import (
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/game"
)

// CardStatus defines the knowledge state of a card at one location.
type CardStatus int

const (
	StatusMaybe CardStatus = iota
	StatusYes
	StatusNo
)

// Envelope is the location key of the hidden solution. Player names are never empty.
const Envelope = ""

// Suggestion is a suspect, weapon and room triple.
type Suggestion struct {
	Suspect string
	Weapon  string
	Room    string
}

func (s Suggestion) names() []string {
	return []string{s.Suspect, s.Weapon, s.Room}
}

func suggestionFrom(m map[game.CardKind]string) Suggestion {
	return Suggestion{Suspect: m[game.KindSuspect], Weapon: m[game.KindWeapon], Room: m[game.KindRoom]}
}

// UnresolvedSuggestion tracks a disproval where the specific card shown is unknown.
type UnresolvedSuggestion struct {
	Disprover     string
	PossibleCards map[string]struct{}
}

var kinds = []game.CardKind{game.KindSuspect, game.KindWeapon, game.KindRoom}

// Brain is the deduction engine behind the terminal client's notebook.
type Brain struct {
	name                  string
	players               []string
	cards                 map[game.CardKind][]string
	cardKind              map[string]game.CardKind
	hand                  map[string]struct{}
	knowledge             map[string]map[string]CardStatus
	unresolvedSuggestions []UnresolvedSuggestion
	recentSurgicalTargets *StringDeque
	strategies            []SuggestionStrategy
	log                   logrus.FieldLogger
	chooser               game.Chooser
	rand                  *rand.Rand
}

// NewBrain creates a brain with its dependencies injected. Call Setup before use.
func NewBrain(logger *logrus.Logger, rand *rand.Rand, chooser game.Chooser) *Brain {
	b := &Brain{
		log:     logger,
		rand:    rand,
		chooser: chooser,
	}
	b.strategies = []SuggestionStrategy{
		&ExploitStrategy{},
		&SurgicalStrikeStrategy{},
		&ExploreStrategy{},
	}
	return b
}

func (b *Brain) Name() string                   { return b.name }
func (b *Brain) Players() []string              { return b.players }
func (b *Brain) Cards(k game.CardKind) []string { return b.cards[k] }

// Status returns what the brain knows about card at location.
func (b *Brain) Status(card, location string) CardStatus {
	return b.knowledge[card][location]
}

// Hand returns the cards the brain holds, sorted.
func (b *Brain) Hand() []string {
	return mapKeys(b.hand)
}

// Setup resets the notebook for a game. players is the seating order.
func (b *Brain) Setup(myName string, players, suspects, weapons, rooms []string) {
	b.name = myName
	b.players = append([]string(nil), players...)
	b.cards = map[game.CardKind][]string{
		game.KindSuspect: append([]string(nil), suspects...),
		game.KindWeapon:  append([]string(nil), weapons...),
		game.KindRoom:    append([]string(nil), rooms...),
	}
	b.cardKind = make(map[string]game.CardKind)
	b.hand = make(map[string]struct{})
	b.unresolvedSuggestions = []UnresolvedSuggestion{}
	b.recentSurgicalTargets = NewStringDeque(3)
	b.knowledge = make(map[string]map[string]CardStatus)

	for _, k := range kinds {
		for _, card := range b.cards[k] {
			b.cardKind[card] = k
			b.knowledge[card] = make(map[string]CardStatus)
			for _, p := range b.locations() {
				b.knowledge[card][p] = StatusMaybe
			}
		}
	}
	b.log.Debugf("Notebook initialized for %s with %d players.", myName, len(players))
}

// ReceiveHand records the brain's own cards. Everything else is not in its hand.
func (b *Brain) ReceiveHand(cards []game.Card) {
	for _, c := range cards {
		b.hand[c.Name] = struct{}{}
		b.markCardLocation(c.Name, b.name)
	}
	for card := range b.knowledge {
		if _, mine := b.hand[card]; !mine {
			b.markNotAt(card, b.name)
		}
	}
	b.runDeductionLoop()
}

// RecordSuggestion learns from one resolved suggestion. revealed is only known
// when the brain itself made the suggestion.
func (b *Brain) RecordSuggestion(suggester string, s Suggestion, disprover, revealed string) {
	// Everyone between the suggester and the disprover holds none of the three.
	for _, p := range b.skippedPlayers(suggester, disprover) {
		for _, card := range s.names() {
			b.markNotAt(card, p)
		}
	}

	switch {
	case suggester == b.name && disprover != "" && revealed != "":
		b.markCardLocation(revealed, disprover)
	case suggester == b.name && disprover == "":
		b.log.Infof("My suggestion was not disproved! Making powerful deductions.")
		for _, card := range s.names() {
			if _, inHand := b.hand[card]; !inHand {
				b.markCardLocation(card, Envelope)
			}
		}
	case disprover != "" && disprover != b.name:
		mystery := UnresolvedSuggestion{Disprover: disprover, PossibleCards: make(map[string]struct{})}
		for _, card := range s.names() {
			mystery.PossibleCards[card] = struct{}{}
		}
		b.unresolvedSuggestions = append(b.unresolvedSuggestions, mystery)
		b.log.Infof("Noted that %s holds one of %v.", disprover, mapKeys(mystery.PossibleCards))
	}

	b.runDeductionLoop()
}

// Hint proposes the next suggestion.
func (b *Brain) Hint() Suggestion {
	for _, s := range b.strategies {
		if suggestion, ok := s.BuildSuggestion(b); ok {
			return suggestionFrom(suggestion)
		}
	}
	return suggestionFrom((&ExploreStrategy{}).mustBuild(b))
}

// HintIn proposes a suggestion naming room, where the player stands.
// An empty room leaves the strategies free to pick one.
func (b *Brain) HintIn(room string) Suggestion {
	hint := b.Hint()
	if room != "" {
		hint.Room = room
	}
	return hint
}

// Accusation returns the solution once all three cards are known.
func (b *Brain) Accusation() (Suggestion, bool) {
	solution := make(map[game.CardKind]string)
	for _, k := range kinds {
		for _, card := range b.cards[k] {
			if b.knowledge[card][Envelope] == StatusYes {
				solution[k] = card
				break
			}
		}
		if _, ok := solution[k]; !ok {
			return Suggestion{}, false
		}
	}
	return suggestionFrom(solution), true
}

// --- Internal Deduction Logic ---

func (b *Brain) locations() []string {
	return append(append([]string(nil), b.players...), Envelope)
}

// skippedPlayers lists the players asked before the disprover, clockwise from the
// suggester. With no disprover that is everyone else.
func (b *Brain) skippedPlayers(suggester, disprover string) []string {
	start := -1
	for i, p := range b.players {
		if p == suggester {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	var skipped []string
	for step := 1; step < len(b.players); step++ {
		p := b.players[(start+step)%len(b.players)]
		if p == disprover {
			break
		}
		skipped = append(skipped, p)
	}
	return skipped
}

func (b *Brain) runDeductionLoop() {
	for i := 0; i < 10; i++ {
		var changed bool
		changed = b.pruneAndSolveMysteries() || changed
		changed = b.deduceSolutionByElimination() || changed
		changed = b.deduceCardLocationsByElimination() || changed
		if !changed {
			break
		}
	}
}

func (b *Brain) markCardLocation(card, location string) bool {
	if _, ok := b.cardKind[card]; !ok {
		b.log.Errorf("Ignoring unknown card name '%s'", card)
		return false
	}
	if b.knowledge[card][location] == StatusYes {
		return false
	}
	b.log.Debugf("Learned that '%s' is with %q.", card, location)
	for _, loc := range b.locations() {
		b.knowledge[card][loc] = StatusNo
	}
	b.knowledge[card][location] = StatusYes
	return true
}

func (b *Brain) markNotAt(card, location string) bool {
	row, ok := b.knowledge[card]
	if !ok || row[location] != StatusMaybe {
		return false
	}
	row[location] = StatusNo
	return true
}

func (b *Brain) pruneAndSolveMysteries() bool {
	var changed bool
	var remaining []UnresolvedSuggestion
	for _, mystery := range b.unresolvedSuggestions {
		pruned := make(map[string]struct{})
		for card := range mystery.PossibleCards {
			if b.knowledge[card][mystery.Disprover] != StatusNo {
				pruned[card] = struct{}{}
			}
		}
		if len(pruned) < len(mystery.PossibleCards) {
			b.log.Debugf("Pruning mystery: %s's options narrowed to %v", mystery.Disprover, mapKeys(pruned))
			mystery.PossibleCards = pruned
			changed = true
		}
		if len(pruned) == 1 {
			card := mapKeys(pruned)[0]
			b.log.Infof("Solved a mystery: %s must have shown '%s'.", mystery.Disprover, card)
			if b.markCardLocation(card, mystery.Disprover) {
				changed = true
			}
		} else if len(pruned) > 1 {
			remaining = append(remaining, mystery)
		}
	}
	if len(remaining) < len(b.unresolvedSuggestions) {
		changed = true
	}
	b.unresolvedSuggestions = remaining
	return changed
}

func (b *Brain) deduceCardLocationsByElimination() bool {
	var changed bool
	for card, row := range b.knowledge {
		var maybes []string
		known := false
		for _, loc := range b.locations() {
			if row[loc] == StatusYes {
				known = true
				break
			}
			if row[loc] == StatusMaybe {
				maybes = append(maybes, loc)
			}
		}
		if !known && len(maybes) == 1 {
			if b.markCardLocation(card, maybes[0]) {
				changed = true
			}
		}
	}
	return changed
}

func (b *Brain) deduceSolutionByElimination() bool {
	var changed bool
	for _, k := range kinds {
		solved := false
		var maybes []string
		for _, card := range b.cards[k] {
			switch b.knowledge[card][Envelope] {
			case StatusYes:
				solved = true
			case StatusMaybe:
				maybes = append(maybes, card)
			}
		}
		if !solved && len(maybes) == 1 {
			if b.markCardLocation(maybes[0], Envelope) {
				changed = true
			}
		}
	}
	return changed
}

func mapKeys(m map[string]struct{}) []string {
	k := make([]string, 0, len(m))
	for key := range m {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}
