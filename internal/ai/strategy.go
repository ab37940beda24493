package ai

import (
	"sort"

	"cluedo-custom/internal/game"
)

// SuggestionStrategy builds a suggestion from the brain's knowledge, or declines.
type SuggestionStrategy interface {
	BuildSuggestion(b *Brain) (map[game.CardKind]string, bool)
}

// ExploitStrategy keeps the solution cards already known and probes the rest.
type ExploitStrategy struct{}

func (s *ExploitStrategy) BuildSuggestion(b *Brain) (map[game.CardKind]string, bool) {
	known := make(map[game.CardKind]string)
	for _, k := range kinds {
		for _, card := range b.cards[k] {
			if b.knowledge[card][Envelope] == StatusYes {
				known[k] = card
				break
			}
		}
	}

	if len(known) > 0 && len(known) < 3 {
		b.log.Infof("Strategy: EXPLOIT. I know %d/3 of the solution.", len(known))
		suggestion := make(map[game.CardKind]string)
		for _, k := range kinds {
			if card, ok := known[k]; ok {
				suggestion[k] = card
			} else {
				suggestion[k] = b.pickUnknownCard(k)
			}
		}
		return suggestion, true
	}
	return nil, false
}

// SurgicalStrikeStrategy targets the card that appears in the most unresolved
// disprovals, padding the suggestion with cards from the brain's own hand.
type SurgicalStrikeStrategy struct{}

func (s *SurgicalStrikeStrategy) BuildSuggestion(b *Brain) (map[game.CardKind]string, bool) {
	if len(b.unresolvedSuggestions) == 0 {
		return nil, false
	}

	frequency := make(map[string]int)
	for _, mystery := range b.unresolvedSuggestions {
		for card := range mystery.PossibleCards {
			frequency[card]++
		}
	}
	if len(frequency) == 0 {
		return nil, false
	}

	sorted := sortByValue(frequency)
	var patient []string
	for _, card := range sorted {
		if !b.recentSurgicalTargets.Contains(card) {
			patient = append(patient, card)
		}
	}
	if len(patient) == 0 {
		patient = sorted
	}
	target := b.choose(patient)
	b.log.Infof("Strategy: SURGICAL STRIKE. Targeting '%s'.", target)
	b.recentSurgicalTargets.Push(target)
	return b.buildSuggestionAroundTarget(target), true
}

// ExploreStrategy suggests cards whose location is still open.
type ExploreStrategy struct{}

func (s *ExploreStrategy) BuildSuggestion(b *Brain) (map[game.CardKind]string, bool) {
	b.log.Infof("Strategy: EXPLORE. Gathering new information.")
	return s.mustBuild(b), true
}

func (s *ExploreStrategy) mustBuild(b *Brain) map[game.CardKind]string {
	return map[game.CardKind]string{
		game.KindSuspect: b.pickUnknownCard(game.KindSuspect),
		game.KindWeapon:  b.pickUnknownCard(game.KindWeapon),
		game.KindRoom:    b.pickUnknownCard(game.KindRoom),
	}
}

// --- Strategy Helpers ---

func (b *Brain) pickUnknownCard(k game.CardKind) string {
	cards := b.cards[k]
	var maybes []string
	for _, card := range cards {
		if _, inHand := b.hand[card]; !inHand && b.knowledge[card][Envelope] == StatusMaybe {
			maybes = append(maybes, card)
		}
	}
	if len(maybes) > 0 {
		return maybes[b.rand.Intn(len(maybes))]
	}

	var notMine []string
	for _, card := range cards {
		if _, inHand := b.hand[card]; !inHand {
			notMine = append(notMine, card)
		}
	}
	if len(notMine) > 0 {
		return b.choose(notMine)
	}
	return b.choose(cards)
}

func (b *Brain) buildSuggestionAroundTarget(target string) map[game.CardKind]string {
	suggestion := make(map[game.CardKind]string)
	suggestion[b.cardKind[target]] = target

	hand := b.Hand()
	b.rand.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
	for _, card := range hand {
		if len(suggestion) == 3 {
			break
		}
		k := b.cardKind[card]
		if _, exists := suggestion[k]; !exists {
			suggestion[k] = card
		}
	}
	for _, k := range kinds {
		if _, ok := suggestion[k]; !ok {
			suggestion[k] = b.pickUnknownCard(k)
		}
	}
	return suggestion
}

// choose picks one name through the injected chooser.
func (b *Brain) choose(names []string) string {
	if len(names) == 0 {
		return ""
	}
	cards := make([]game.Card, len(names))
	for i, n := range names {
		cards[i] = game.Card{Name: n, Kind: b.cardKind[n]}
	}
	return b.chooser.Choose(cards).Name
}

// --- Utility Types and Functions ---

// StringDeque remembers the last few strings pushed.
type StringDeque struct {
	elements []string
	maxSize  int
}

func NewStringDeque(maxSize int) *StringDeque {
	return &StringDeque{maxSize: maxSize}
}

func (d *StringDeque) Push(s string) {
	d.elements = append(d.elements, s)
	if len(d.elements) > d.maxSize {
		d.elements = d.elements[1:]
	}
}

func (d *StringDeque) Contains(s string) bool {
	for _, e := range d.elements {
		if e == s {
			return true
		}
	}
	return false
}

// sortByValue returns the keys by descending count, ties broken by name.
func sortByValue(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
