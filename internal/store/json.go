package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"cluedo-custom/internal/game"
)

// JSONFile rewrites a single JSON document mapping code to game on every save.
type JSONFile struct {
	path  string
	mu    sync.Mutex
	games map[string]*game.Game
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, games: make(map[string]*game.Game)}
}

// LoadAll reads the snapshot file. A missing file is an empty store.
func (s *JSONFile) LoadAll() (map[string]*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*game.Game{}, nil
	}
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]*game.Game)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}
	s.games = make(map[string]*game.Game, len(loaded))
	out := make(map[string]*game.Game, len(loaded))
	for code, g := range loaded {
		s.games[code] = g
		out[code] = g.Clone()
	}
	return out, nil
}

func (s *JSONFile) Save(g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return s.flush()
}

func (s *JSONFile) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, code)
	return s.flush()
}

func (s *JSONFile) Close() error { return nil }

// flush writes to a temp file next to the target and renames it over, so a
// crash mid-write leaves the previous snapshot intact.
func (s *JSONFile) flush() error {
	data, err := json.MarshalIndent(s.games, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".games-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
