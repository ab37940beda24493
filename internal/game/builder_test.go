package game

import (
	"encoding/json"
	"testing"
)

func TestBuilder(t *testing.T) {
	t.Run("defaults fill in missing suspects and weapons", func(t *testing.T) {
		g, err := NewBuilder("Manor").WithRooms(sixRooms).Build("AB12")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if len(g.SuspectNames) != len(DefaultSuspects) || len(g.WeaponNames) != len(DefaultWeapons) {
			t.Errorf("Expected default lists, got %v / %v", g.SuspectNames, g.WeaponNames)
		}
		if g.Status != StatusWaiting || g.MaxPlayers != 8 {
			t.Errorf("Unexpected status %s or max players %d", g.Status, g.MaxPlayers)
		}
	})

	t.Run("custom lists are trimmed and kept", func(t *testing.T) {
		g, err := NewBuilder("Office").
			WithRooms(sixRooms).
			WithSuspects([]string{" Claire ", "Pierre", ""}).
			WithWeapons([]string{"Stapler"}).
			WithTone("parody").
			WithNarration(true).
			WithMaxPlayers(4).
			Build("OF01")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if len(g.SuspectNames) != 2 || g.SuspectNames[0] != "Claire" {
			t.Errorf("Unexpected suspects %v", g.SuspectNames)
		}
		if !g.UseNarration || g.MaxPlayers != 4 || g.Tone != "parody" {
			t.Errorf("Options not applied: %+v", g)
		}
	})

	t.Run("duplicate card names are rejected", func(t *testing.T) {
		_, err := NewBuilder("Dup").WithRooms([]string{"Rope", "Hall"}).Build("DUP1")
		if err == nil {
			t.Error("Expected an error for a room named like a weapon")
		}
	})

	t.Run("name and rooms are required", func(t *testing.T) {
		if _, err := NewBuilder(" ").WithRooms(sixRooms).Build("X"); err == nil {
			t.Error("Expected an error for an empty name")
		}
		if _, err := NewBuilder("No rooms").Build("X"); err == nil {
			t.Error("Expected an error without rooms")
		}
	})
}

func TestCardKindJSON(t *testing.T) {
	data, err := json.Marshal(Card{Name: "Rope", Kind: KindWeapon})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"name":"Rope","kind":"weapon"}` {
		t.Errorf("Unexpected encoding %s", data)
	}

	var c Card
	if err := json.Unmarshal([]byte(`{"name":"Hall","kind":"room"}`), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c.Kind != KindRoom {
		t.Errorf("Expected room kind, got %s", c.Kind)
	}
	if err := json.Unmarshal([]byte(`{"name":"X","kind":"cat"}`), &c); err == nil {
		t.Error("Expected an error for an unknown kind")
	}
}

func TestClone(t *testing.T) {
	e := newTestEngine(5)
	g := setupStartedGame(t, e, "A", "B", "C")

	c := g.Clone()
	c.Players[0].Hand[0] = Card{Name: "changed"}
	c.Players[1].Active = false
	c.Solution.Room = Card{Name: "changed"}

	if g.Players[0].Hand[0].Name == "changed" || !g.Players[1].Active || g.Solution.Room.Name == "changed" {
		t.Error("Clone shares state with the original game")
	}
}
