// Package store persists game aggregates between process restarts.
package store

import (
	"fmt"

	"cluedo-custom/internal/game"
)

// Store saves and loads games keyed by their code.
type Store interface {
	LoadAll() (map[string]*game.Game, error)
	Save(g *game.Game) error
	Delete(code string) error
	Close() error
}

// Open returns the store for a backend name: "json" (one snapshot file) or
// "sqlite" (one row per game).
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "json":
		return NewJSONFile(path), nil
	case "sqlite":
		return NewSQLite(path)
	case "memory", "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Nop keeps nothing. Games live only as long as the process.
type Nop struct{}

func (Nop) LoadAll() (map[string]*game.Game, error) { return map[string]*game.Game{}, nil }
func (Nop) Save(*game.Game) error                   { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Close() error                            { return nil }
