package store

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cluedo-custom/internal/game"
)

var fixedTime = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// startedGame returns a dealt game with a turn in its log.
func startedGame(t *testing.T, code string) *game.Game {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	engine := game.NewEngine(log, rand.New(rand.NewSource(1)), &game.DeterministicChooser{})

	g, err := game.NewBuilder("Manor "+code).
		WithRooms([]string{"Kitchen", "Ballroom", "Conservatory", "Library", "Study", "Hall"}).
		WithNarration(true).
		Build(code)
	require.NoError(t, err)
	g.CreatedAt = fixedTime
	g.AddPlayer("p1", "Alice")
	g.AddPlayer("p2", "Bob")
	g.AddPlayer("p3", "Carol")
	require.NoError(t, engine.Initialize(g, g.SuspectNames, g.WeaponNames))

	idx := engine.RecordTurn(g, "p1", game.ActionSuggest, "Mrs. White + Rope + Hall")
	g.Turns[idx].Timestamp = fixedTime
	g.Turns[idx].Comment = "Everything is fine here."
	engine.AdvanceTurn(g)
	return g
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	s := NewJSONFile(path)

	g := startedGame(t, "ABCD")
	require.NoError(t, s.Save(g))
	require.NoError(t, s.Save(startedGame(t, "WXYZ")))

	loaded, err := NewJSONFile(path).LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, g, loaded["ABCD"])
}

func TestJSONFileDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	s := NewJSONFile(path)
	require.NoError(t, s.Save(startedGame(t, "ABCD")))
	require.NoError(t, s.Save(startedGame(t, "WXYZ")))

	require.NoError(t, s.Delete("ABCD"))

	loaded, err := NewJSONFile(path).LoadAll()
	require.NoError(t, err)
	assert.NotContains(t, loaded, "ABCD")
	assert.Contains(t, loaded, "WXYZ")
}

func TestJSONFileMissingFileIsEmpty(t *testing.T) {
	loaded, err := NewJSONFile(filepath.Join(t.TempDir(), "nope.json")).LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestJSONFileCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFile(path).LoadAll()
	assert.Error(t, err)
}

func TestJSONFileSaveCopiesGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	s := NewJSONFile(path)
	g := startedGame(t, "ABCD")
	require.NoError(t, s.Save(g))

	// Mutating after save must not leak into the next flush of another game.
	g.Winner = "Mallory"
	require.NoError(t, s.Save(startedGame(t, "WXYZ")))

	loaded, err := NewJSONFile(path).LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded["ABCD"].Winner)
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)

	g := startedGame(t, "ABCD")
	require.NoError(t, s.Save(g))

	// Saving again updates the same row.
	g.Status = game.StatusFinished
	g.Winner = "Alice"
	require.NoError(t, s.Save(g))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, g, loaded["ABCD"])
}

func TestSQLiteDelete(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(startedGame(t, "ABCD")))
	require.NoError(t, s.Save(startedGame(t, "WXYZ")))
	require.NoError(t, s.Delete("ABCD"))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Contains(t, loaded, "WXYZ")
}

func TestOpen(t *testing.T) {
	s, err := Open("json", filepath.Join(t.TempDir(), "g.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, s)

	s, err = Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)

	_, err = Open("cassette", "")
	assert.Error(t, err)
}
