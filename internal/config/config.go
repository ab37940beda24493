package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
)

//go:embed themes.json
var builtinThemes []byte

// DefaultTheme is used when a quick-create request names no theme or an unknown one.
const DefaultTheme = "classic"

// Theme is a ready-made set of rooms, weapons and suspects.
type Theme struct {
	Name     string   `json:"name"`
	Tone     string   `json:"tone"`
	Rooms    []string `json:"rooms"`
	Weapons  []string `json:"weapons"`
	Suspects []string `json:"suspects"`
}

// Themes maps a theme key to its definition.
type Themes map[string]Theme

// Get returns the theme for key, falling back to DefaultTheme.
func (t Themes) Get(key string) (Theme, string) {
	if theme, ok := t[key]; ok {
		return theme, key
	}
	return t[DefaultTheme], DefaultTheme
}

// Keys returns the theme keys in sorted order.
func (t Themes) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadThemes reads, parses and merges themes from a file over the built-in ones.
// An empty path returns the built-in themes only.
func LoadThemes(path string) (Themes, error) {
	themes := make(Themes)
	if err := json.Unmarshal(builtinThemes, &themes); err != nil {
		return nil, fmt.Errorf("built-in themes: %w", err)
	}
	if path == "" {
		return themes, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	custom := make(Themes)
	if err := json.Unmarshal(data, &custom); err != nil {
		return nil, err
	}
	for k, v := range custom {
		themes[k] = v
	}
	return themes, nil
}

// Settings holds everything the server and client read from flags and environment.
type Settings struct {
	AppName string
	Bind    string
	Port    int

	StoreBackend string
	GamesFile    string
	SQLitePath   string
	ThemesFile   string

	MinRooms   int
	MaxRooms   int
	MinPlayers int
	MaxPlayers int

	UseAI            bool
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	NarrationTimeout time.Duration

	LogLevel string
}

// Defaults returns the stock settings.
func Defaults() Settings {
	return Settings{
		AppName:          "Cluedo Custom",
		Bind:             "0.0.0.0",
		Port:             7860,
		StoreBackend:     "json",
		GamesFile:        "games.json",
		SQLitePath:       "games.db",
		MinRooms:         6,
		MaxRooms:         12,
		MinPlayers:       3,
		MaxPlayers:       8,
		OpenAIBaseURL:    "https://api.openai.com/v1",
		OpenAIModel:      "gpt-3.5-turbo",
		NarrationTimeout: 10 * time.Second,
		LogLevel:         "info",
	}
}

// Validate checks the settings for contradictions.
func (s Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", s.Port)
	}
	if s.MinRooms < 1 || s.MaxRooms < s.MinRooms {
		return fmt.Errorf("invalid room bounds: %d-%d", s.MinRooms, s.MaxRooms)
	}
	if s.MinPlayers < 2 || s.MaxPlayers < s.MinPlayers {
		return fmt.Errorf("invalid player bounds: %d-%d", s.MinPlayers, s.MaxPlayers)
	}
	if s.NarrationTimeout <= 0 {
		return errors.New("narration timeout must be positive")
	}
	return nil
}

// NarrationEnabled reports whether the AI narrator can be used at all.
func (s Settings) NarrationEnabled() bool {
	return s.UseAI && s.OpenAIKey != ""
}

// StorePath returns the location used by the configured store backend.
func (s Settings) StorePath() string {
	if s.StoreBackend == "sqlite" {
		return s.SQLitePath
	}
	return s.GamesFile
}
