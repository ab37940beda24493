package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Builder provides a step-by-step API for constructing a Game waiting for players.
type Builder struct {
	name         string
	tone         string
	rooms        []string
	suspects     []string
	weapons      []string
	useNarration bool
	maxPlayers   int
}

// NewBuilder starts a game with the given display name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, maxPlayers: 8}
}

func (b *Builder) WithRooms(rooms []string) *Builder {
	b.rooms = rooms
	return b
}

// WithSuspects sets custom suspects; an empty list keeps DefaultSuspects.
func (b *Builder) WithSuspects(suspects []string) *Builder {
	b.suspects = suspects
	return b
}

// WithWeapons sets custom weapons; an empty list keeps DefaultWeapons.
func (b *Builder) WithWeapons(weapons []string) *Builder {
	b.weapons = weapons
	return b
}

func (b *Builder) WithTone(tone string) *Builder {
	b.tone = tone
	return b
}

func (b *Builder) WithNarration(enabled bool) *Builder {
	b.useNarration = enabled
	return b
}

func (b *Builder) WithMaxPlayers(n int) *Builder {
	b.maxPlayers = n
	return b
}

// Build constructs the Game after all options have been configured.
func (b *Builder) Build(id string) (*Game, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, errors.New("game name is required")
	}
	if len(b.rooms) == 0 {
		return nil, errors.New("at least one room is required")
	}

	suspects := cleanNames(b.suspects)
	if len(suspects) == 0 {
		suspects = append([]string(nil), DefaultSuspects...)
	}
	weapons := cleanNames(b.weapons)
	if len(weapons) == 0 {
		weapons = append([]string(nil), DefaultWeapons...)
	}
	rooms := cleanNames(b.rooms)

	// Card names must be unique across the whole deck for name matching to work.
	seen := make(map[string]CardKind)
	for kind, names := range [][]string{suspects, weapons, rooms} {
		for _, name := range names {
			if prev, dup := seen[name]; dup {
				return nil, fmt.Errorf("duplicate card name %q (%s and %s)", name, prev, CardKind(kind))
			}
			seen[name] = CardKind(kind)
		}
	}

	return &Game{
		ID:           id,
		Name:         strings.TrimSpace(b.name),
		Status:       StatusWaiting,
		Tone:         b.tone,
		UseNarration: b.useNarration,
		MaxPlayers:   b.maxPlayers,
		Rooms:        rooms,
		SuspectNames: suspects,
		WeaponNames:  weapons,
		Players:      []*Player{},
		Turns:        []Turn{},
		CreatedAt:    time.Now(),
	}, nil
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
