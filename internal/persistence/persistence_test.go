package persistence

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
)

func testDefs(t *testing.T) *catalog.Catalog {
	t.Helper()
	defs, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error: %v", err)
	}
	return defs
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok, _ := store.Get("missing"); ok {
		t.Fatal("Get on empty store reported a hit")
	}

	store.Set("save-a", []byte("1"))
	store.Set("save-b", []byte("2"))
	store.Set("settings", []byte("3"))

	v, ok, err := store.Get("save-a")
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("Get(save-a) = %q, %v, %v", v, ok, err)
	}

	keys, err := store.Keys("save-")
	if err != nil {
		t.Fatalf("Keys error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Keys(save-) = %v, want 2 entries", keys)
	}

	store.Delete("save-a")
	if _, ok, _ := store.Get("save-a"); ok {
		t.Error("Get after Delete reported a hit")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	defs := testDefs(t)
	g := game.New(defs, game.BoundsForSize(game.GridMedium), 7, nil)
	m := NewSaveManager(NewMemoryStore(), defs)

	g.GrantResearchKey("Drone")
	lab, _ := defs.FacilityByName("Research Lab")
	drone, _ := defs.SpeciesByName("Drone")
	g.PlaceFacility(lab, game.Position{Row: 2, Col: 3})
	g.PlaceCreature(drone, game.Position{Row: 4, Col: 4})

	want := g.Snapshot()
	if !m.SaveGame(g, "slotA", "Test Run") {
		t.Fatal("SaveGame failed")
	}

	// Mutate the live state arbitrarily, then load.
	g.RemoveFacility(g.Facilities()[0].ID)
	g.ApplyPatch(game.Patch{Credits: intp(1)})

	slot := m.LoadGame("slotA")
	if slot == nil {
		t.Fatal("LoadGame returned nil")
	}
	g.Restore(slot.Data.GameState)

	if !reflect.DeepEqual(g.Snapshot(), want) {
		t.Error("loaded state differs from saved state")
	}
}

func intp(v int) *int { return &v }

func TestLoadMissingAndCorruptSlots(t *testing.T) {
	defs := testDefs(t)
	store := NewMemoryStore()
	m := NewSaveManager(store, defs)

	if slot := m.LoadGame("nope"); slot != nil {
		t.Error("missing slot should load as nil")
	}

	store.Set("save-bad", []byte("{not json"))
	if slot := m.LoadGame("bad"); slot != nil {
		t.Error("corrupt slot should load as nil")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	defs := testDefs(t)
	store := NewMemoryStore()
	m := NewSaveManager(store, defs)

	// A minimal old save that only recorded the day. Everything else must
	// fall back to fresh defaults.
	store.Set("save-old", []byte(`{"id":"old","name":"Old","data":{"version":"0.1.0","gameState":{"day":12}}}`))

	slot := m.LoadGame("old")
	if slot == nil {
		t.Fatal("old save failed to load despite version skew")
	}
	if slot.Data.GameState.Day != 12 {
		t.Errorf("day = %d, want 12 from the save", slot.Data.GameState.Day)
	}
	if slot.Data.GameState.Resources.Credits != game.DefaultSnapshot(defs).Resources.Credits {
		t.Errorf("credits = %d, want default fallback", slot.Data.GameState.Resources.Credits)
	}
}

func TestReservedSlots(t *testing.T) {
	defs := testDefs(t)
	g := game.New(defs, game.BoundsForSize(game.GridSmall), 1, nil)
	m := NewSaveManager(NewMemoryStore(), defs)

	if !m.QuickSave(g) {
		t.Fatal("QuickSave failed")
	}
	if slot := m.QuickLoad(); slot == nil || slot.ID != SlotQuick {
		t.Fatalf("QuickLoad = %+v, want reserved slot %q", slot, SlotQuick)
	}
	if !m.AutoSave(g) {
		t.Fatal("AutoSave failed")
	}
	if len(m.ListSaves()) != 2 {
		t.Errorf("ListSaves = %d slots, want 2", len(m.ListSaves()))
	}
}

func TestListSavesNewestFirst(t *testing.T) {
	defs := testDefs(t)
	g := game.New(defs, game.BoundsForSize(game.GridSmall), 1, nil)
	m := NewSaveManager(NewMemoryStore(), defs)

	m.SaveGame(g, "first", "")
	m.SaveGame(g, "second", "")

	slots := m.ListSaves()
	if len(slots) != 2 {
		t.Fatalf("ListSaves = %d slots, want 2", len(slots))
	}
	if slots[0].Data.Timestamp.Before(slots[1].Data.Timestamp) {
		t.Error("ListSaves not sorted newest first")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	defs := testDefs(t)
	g := game.New(defs, game.BoundsForSize(game.GridMedium), 3, nil)
	m := NewSaveManager(NewMemoryStore(), defs)

	m.SaveGame(g, "trip", "Trip")
	doc, err := m.ExportSave("trip")
	if err != nil {
		t.Fatalf("ExportSave error: %v", err)
	}

	m.DeleteSave("trip")
	if m.LoadGame("trip") != nil {
		t.Fatal("slot still present after delete")
	}

	id, ok := m.ImportSave(doc)
	if !ok || id != "trip" {
		t.Fatalf("ImportSave = %q, %v", id, ok)
	}
	if m.LoadGame("trip") == nil {
		t.Error("imported slot failed to load")
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	m := NewSaveManager(NewMemoryStore(), testDefs(t))

	if _, ok := m.ImportSave([]byte("garbage")); ok {
		t.Error("ImportSave accepted non-JSON input")
	}

	wrongFormat, _ := json.Marshal(map[string]any{"format": "other-game", "slot": map[string]any{"id": "x"}})
	if _, ok := m.ImportSave(wrongFormat); ok {
		t.Error("ImportSave accepted a foreign format marker")
	}
}

func TestSettingsRoundTripAndNormalize(t *testing.T) {
	store := NewMemoryStore()

	s := DefaultSettings()
	s.AutoSaveInterval = 300
	s.GridSize = "large"
	if !SaveSettings(store, s) {
		t.Fatal("SaveSettings failed")
	}

	loaded := LoadSettings(store)
	if loaded.AutoSaveInterval != 300 || loaded.GridSize != "large" {
		t.Errorf("loaded settings = %+v", loaded)
	}

	// Unrecognized enum values fall back to defaults.
	store.Set("settings", []byte(`{"autoSaveInterval":45,"gridSize":"gigantic"}`))
	loaded = LoadSettings(store)
	if loaded.AutoSaveInterval != 60 || loaded.GridSize != "medium" {
		t.Errorf("normalized settings = %+v, want interval 60 and medium grid", loaded)
	}

	// Corrupt JSON falls back entirely.
	store.Set("settings", []byte("###"))
	if got := LoadSettings(store); !reflect.DeepEqual(got, DefaultSettings()) {
		t.Errorf("corrupt settings loaded as %+v, want defaults", got)
	}
}
