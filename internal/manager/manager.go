// Package manager keeps the live games, serializes actions per game and persists
// every change.
package manager

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/config"
	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/store"
)

// Limits bounds game creation and joining.
type Limits struct {
	MinRooms   int
	MaxRooms   int
	MinPlayers int
	MaxPlayers int
}

// LimitsFrom extracts the game limits from the settings.
func LimitsFrom(s config.Settings) Limits {
	return Limits{
		MinRooms:   s.MinRooms,
		MaxRooms:   s.MaxRooms,
		MinPlayers: s.MinPlayers,
		MaxPlayers: s.MaxPlayers,
	}
}

// entry guards one game. Actions on different games never contend.
type entry struct {
	mu      sync.Mutex
	game    *game.Game
	deleted bool
}

// Manager is the keyed registry of live games.
type Manager struct {
	mu     sync.RWMutex
	games  map[string]*entry
	engine *game.Engine
	store  store.Store
	bus    *events.Manager
	themes config.Themes
	limits Limits
	log    *logrus.Logger
}

// New creates a manager with its collaborators injected.
func New(engine *game.Engine, st store.Store, bus *events.Manager, themes config.Themes, limits Limits, logger *logrus.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*entry),
		engine: engine,
		store:  st,
		bus:    bus,
		themes: themes,
		limits: limits,
		log:    logger,
	}
}

// Load fills the registry from the store. A failing store is logged and
// leaves the registry empty.
func (m *Manager) Load() int {
	loaded, err := m.store.LoadAll()
	if err != nil {
		m.log.Errorf("Error loading games: %v", err)
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, g := range loaded {
		m.games[code] = &entry{game: g}
	}
	m.log.Infof("Loaded %d games from store", len(loaded))
	return len(loaded)
}

// Themes returns the configured themes.
func (m *Manager) Themes() config.Themes {
	return m.themes
}

// CreateRequest describes a new game.
type CreateRequest struct {
	Name         string
	Rooms        []string
	Suspects     []string
	Weapons      []string
	Tone         string
	UseNarration bool
}

// CreateGame validates the request, registers a new waiting game and persists it.
func (m *Manager) CreateGame(req CreateRequest) (*game.Game, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidation)
	}
	if len(req.Rooms) < m.limits.MinRooms {
		return nil, fmt.Errorf("%w: at least %d rooms are required", ErrValidation, m.limits.MinRooms)
	}
	if len(req.Rooms) > m.limits.MaxRooms {
		return nil, fmt.Errorf("%w: maximum %d rooms allowed", ErrValidation, m.limits.MaxRooms)
	}

	builder := game.NewBuilder(req.Name).
		WithRooms(req.Rooms).
		WithSuspects(req.Suspects).
		WithWeapons(req.Weapons).
		WithTone(req.Tone).
		WithNarration(req.UseNarration).
		WithMaxPlayers(m.limits.MaxPlayers)

	m.mu.Lock()
	code := generateCode()
	for m.games[code] != nil {
		code = generateCode()
	}
	g, err := builder.Build(code)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(g.Rooms) < m.limits.MinRooms {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: at least %d rooms are required", ErrValidation, m.limits.MinRooms)
	}
	e := &entry{game: g}
	e.mu.Lock()
	m.games[code] = e
	m.mu.Unlock()

	m.persist(g)
	snapshot := g.Clone()
	e.mu.Unlock()

	m.log.Infof("Created game %s (%q) with %d rooms", code, g.Name, len(g.Rooms))
	m.bus.Publish(events.GameCreated{
		Base:         events.Base{Code: code},
		Name:         snapshot.Name,
		Tone:         snapshot.Tone,
		Rooms:        snapshot.Rooms,
		Suspects:     snapshot.SuspectNames,
		Weapons:      snapshot.WeaponNames,
		UseNarration: snapshot.UseNarration,
	})
	return snapshot, nil
}

// QuickCreate creates a game from a theme and joins its creator as first player.
func (m *Manager) QuickCreate(themeKey, playerName string, useNarration bool) (*game.Game, *game.Player, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, nil, fmt.Errorf("%w: player name is required", ErrValidation)
	}
	theme, _ := m.themes.Get(themeKey)
	g, err := m.CreateGame(CreateRequest{
		Name:         theme.Name,
		Rooms:        theme.Rooms,
		Suspects:     theme.Suspects,
		Weapons:      theme.Weapons,
		Tone:         theme.Tone,
		UseNarration: useNarration,
	})
	if err != nil {
		return nil, nil, err
	}
	p, err := m.Join(g.ID, playerName)
	if err != nil {
		return nil, nil, err
	}
	return g, p, nil
}

// Get returns a snapshot of the game.
func (m *Manager) Get(code string) (*game.Game, error) {
	var snapshot *game.Game
	err := m.read(code, func(g *game.Game) error {
		snapshot = g.Clone()
		return nil
	})
	return snapshot, err
}

// Join adds a player to a waiting game that still has room.
func (m *Manager) Join(code, playerName string) (*game.Player, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidation)
	}

	var (
		player *game.Player
		count  int
	)
	code = normalizeCode(code)
	err := m.mutate(code, func(g *game.Game) error {
		if g.Status != game.StatusWaiting {
			return fmt.Errorf("%w: game has already started", ErrInvalidState)
		}
		if g.IsFull() {
			return fmt.Errorf("%w: game is full", ErrInvalidState)
		}
		p := g.AddPlayer(uuid.New().String(), name)
		pc := *p
		player = &pc
		count = len(g.Players)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Infof("Player joined game %s: %s (%d players)", code, name, count)
	m.bus.Publish(events.PlayerJoined{Base: events.Base{Code: code}, PlayerName: name, PlayerCount: count})
	return player, nil
}

// Start deals the cards and opens the first turn.
func (m *Manager) Start(code string) error {
	var first string
	code = normalizeCode(code)
	err := m.mutate(code, func(g *game.Game) error {
		if g.Status != game.StatusWaiting {
			return fmt.Errorf("%w: game has already started", ErrInvalidState)
		}
		if len(g.Players) < m.limits.MinPlayers {
			return fmt.Errorf("%w: need at least %d players, have %d", ErrInvalidState, m.limits.MinPlayers, len(g.Players))
		}
		if err := m.engine.Initialize(g, g.SuspectNames, g.WeaponNames); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		first = g.CurrentPlayer().Name
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Infof("Started game %s, %s plays first", code, first)
	m.bus.Publish(events.GameStarted{Base: events.Base{Code: code}, FirstPlayer: first})
	return nil
}

// Summary is the listing form of a game.
type Summary struct {
	Code        string      `json:"game_code"`
	Name        string      `json:"name"`
	Status      game.Status `json:"status"`
	PlayerCount int         `json:"players"`
	MaxPlayers  int         `json:"max_players"`
}

// ListActive returns waiting and running games ordered by code.
func (m *Manager) ListActive() []Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.games))
	for _, e := range m.games {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	summaries := []Summary{}
	for _, e := range entries {
		e.mu.Lock()
		g := e.game
		if !e.deleted && (g.Status == game.StatusWaiting || g.Status == game.StatusInProgress) {
			summaries = append(summaries, Summary{
				Code:        g.ID,
				Name:        g.Name,
				Status:      g.Status,
				PlayerCount: len(g.Players),
				MaxPlayers:  g.MaxPlayers,
			})
		}
		e.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Code < summaries[j].Code })
	return summaries
}

// Delete removes a game from the registry and the store.
func (m *Manager) Delete(code string) error {
	code = normalizeCode(code)
	m.mu.Lock()
	e, ok := m.games[code]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: game %s", ErrNotFound, code)
	}
	delete(m.games, code)
	m.mu.Unlock()

	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()

	if err := m.store.Delete(code); err != nil {
		m.log.Errorf("Error deleting game %s from store: %v", code, err)
	}
	m.log.Infof("Deleted game %s", code)
	m.bus.Publish(events.GameDeleted{Base: events.Base{Code: code}})
	return nil
}

// AttachComment sets the narration of a turn already in the log.
func (m *Manager) AttachComment(code string, turnIndex int, comment string) error {
	code = normalizeCode(code)
	err := m.mutate(code, func(g *game.Game) error {
		if turnIndex < 0 || turnIndex >= len(g.Turns) {
			return fmt.Errorf("%w: turn %d", ErrNotFound, turnIndex)
		}
		g.Turns[turnIndex].Comment = comment
		return nil
	})
	if err != nil {
		return err
	}
	m.bus.Publish(events.CommentAdded{Base: events.Base{Code: code}, TurnIndex: turnIndex, Comment: comment})
	return nil
}

// SetScenario stores the narrated introduction of a game.
func (m *Manager) SetScenario(code, scenario string) error {
	return m.mutate(normalizeCode(code), func(g *game.Game) error {
		g.Scenario = scenario
		return nil
	})
}

// lookup returns the entry for a code.
func (m *Manager) lookup(code string) (*entry, error) {
	code = normalizeCode(code)
	m.mu.RLock()
	e, ok := m.games[code]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, code)
	}
	return e, nil
}

// read runs fn with the game locked.
func (m *Manager) read(code string, fn func(g *game.Game) error) error {
	e, err := m.lookup(code)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return fmt.Errorf("%w: game %s", ErrNotFound, code)
	}
	return fn(e.game)
}

// mutate runs fn with the game locked and persists it if fn succeeds.
func (m *Manager) mutate(code string, fn func(g *game.Game) error) error {
	e, err := m.lookup(code)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return fmt.Errorf("%w: game %s", ErrNotFound, code)
	}
	if err := fn(e.game); err != nil {
		return err
	}
	m.persist(e.game)
	return nil
}

// persist is best effort: the in-memory game stays authoritative.
func (m *Manager) persist(g *game.Game) {
	if err := m.store.Save(g); err != nil {
		m.log.Errorf("Error saving game %s: %v", g.ID, err)
	}
}
