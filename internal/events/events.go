package events

import (
	"sync"

	"cluedo-custom/internal/game"
)

// Event is implemented by every event type. GameCode ties it to one game.
type Event interface {
	GameCode() string
}

// Listener defines an interface for any component that wants to react to events.
type Listener interface {
	HandleEvent(e Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(e Event)

func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// Manager (or Event Bus) manages listeners and dispatches events synchronously.
// Listeners must not block; slow work belongs in a goroutine.
type Manager struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewManager() *Manager {
	return &Manager{}
}

func (em *Manager) Subscribe(l Listener) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.listeners = append(em.listeners, l)
}

func (em *Manager) Publish(e Event) {
	em.mu.RLock()
	listeners := append([]Listener(nil), em.listeners...)
	em.mu.RUnlock()

	for _, l := range listeners {
		l.HandleEvent(e)
	}
}

// Base carries the game code shared by all events.
type Base struct {
	Code string `json:"game_code"`
}

func (b Base) GameCode() string { return b.Code }

// --- Lifecycle events ---

type GameCreated struct {
	Base
	Name         string   `json:"name"`
	Tone         string   `json:"tone,omitempty"`
	Rooms        []string `json:"rooms"`
	Suspects     []string `json:"suspects"`
	Weapons      []string `json:"weapons"`
	UseNarration bool     `json:"use_narration"`
}

type PlayerJoined struct {
	Base
	PlayerName  string `json:"player_name"`
	PlayerCount int    `json:"player_count"`
}

type GameStarted struct {
	Base
	FirstPlayer string `json:"first_player"`
}

type GameDeleted struct {
	Base
}

// --- Turn events ---

type PlayerMoved struct {
	Base
	PlayerName string `json:"player_name"`
	Dice       int    `json:"dice"`
	Room       string `json:"room"`
}

// SuggestionResolved is published after a suggestion. RevealedCard is only
// meant for the suggester and is never serialized.
type SuggestionResolved struct {
	Base
	TurnIndex     int    `json:"turn_index"`
	PlayerName    string `json:"player_name"`
	Suspect       string `json:"suspect"`
	Weapon        string `json:"weapon"`
	Room          string `json:"room"`
	DisproverName string `json:"disprover_name,omitempty"`
	RevealedCard  string `json:"-"`
	Tone          string `json:"-"`
	UseNarration  bool   `json:"-"`
}

type AccusationResolved struct {
	Base
	TurnIndex    int    `json:"turn_index"`
	PlayerName   string `json:"player_name"`
	Suspect      string `json:"suspect"`
	Weapon       string `json:"weapon"`
	Room         string `json:"room"`
	Correct      bool   `json:"correct"`
	Finished     bool   `json:"finished"`
	Winner       string `json:"winner,omitempty"`
	Tone         string `json:"-"`
	UseNarration bool   `json:"-"`
}

type TurnPassed struct {
	Base
	PlayerName string `json:"player_name"`
}

// TurnAdvanced announces whose turn it is now.
type TurnAdvanced struct {
	Base
	PlayerName string      `json:"player_name"`
	Status     game.Status `json:"status"`
}

// CommentAdded is published when narration has been attached to a turn.
type CommentAdded struct {
	Base
	TurnIndex int    `json:"turn_index"`
	Comment   string `json:"comment"`
}

// Name returns the wire name of an event, used by the websocket stream and logs.
func Name(e Event) string {
	switch e.(type) {
	case GameCreated:
		return "game_created"
	case PlayerJoined:
		return "player_joined"
	case GameStarted:
		return "game_started"
	case GameDeleted:
		return "game_deleted"
	case PlayerMoved:
		return "player_moved"
	case SuggestionResolved:
		return "suggestion_resolved"
	case AccusationResolved:
		return "accusation_resolved"
	case TurnPassed:
		return "turn_passed"
	case TurnAdvanced:
		return "turn_advanced"
	case CommentAdded:
		return "comment_added"
	default:
		return "unknown"
	}
}
