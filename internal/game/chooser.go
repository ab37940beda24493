package game

import (
	"math/rand"
	"sort"
)

// Chooser selects the card a disprover reveals from the cards it could show.
// Swapping it lets tests pin the choice.
type Chooser interface {
	Choose(cards []Card) Card
}

// RandomChooser picks uniformly at random.
type RandomChooser struct {
	rand *rand.Rand
}

// NewRandomChooser creates a new random chooser.
func NewRandomChooser(rand *rand.Rand) *RandomChooser {
	return &RandomChooser{rand: rand}
}

func (r *RandomChooser) Choose(cards []Card) Card {
	if len(cards) == 0 {
		return Card{}
	}
	return cards[r.rand.Intn(len(cards))]
}

// DeterministicChooser always picks the first card alphabetically.
type DeterministicChooser struct{}

func (d *DeterministicChooser) Choose(cards []Card) Card {
	if len(cards) == 0 {
		return Card{}
	}
	sorted := append([]Card(nil), cards...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted[0]
}
