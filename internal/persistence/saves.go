package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
)

// Version is the save format version recorded in every slot. A mismatch on
// load is logged and ignored: loading proceeds leniently.
const Version = "1.0.0"

const (
	slotPrefix = "save-"

	// SlotQuick and SlotAuto are the reserved always-overwritten slots.
	SlotQuick = "quicksave"
	SlotAuto  = "autosave"
)

// exportFormat marks a portable save document so imports can be validated.
const exportFormat = "xenopark-save"

// SaveSlot is one stored save.
type SaveSlot struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Data SavePayload `json:"data"`
}

// SavePayload wraps the game snapshot with versioning metadata.
type SavePayload struct {
	GameState game.Snapshot `json:"gameState"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	PlayTime  uint64        `json:"playTime"`
}

// SaveManager reads and writes save slots against a Store. Every failure is
// caught at this boundary: operations return false or nil, never panic, and
// leave live state untouched.
type SaveManager struct {
	store Store
	defs  *catalog.Catalog
}

// NewSaveManager creates a manager over the given backend.
func NewSaveManager(store Store, defs *catalog.Catalog) *SaveManager {
	return &SaveManager{store: store, defs: defs}
}

// SaveGame snapshots g into the named slot. Reports success.
func (m *SaveManager) SaveGame(g *game.Game, slotID, name string) bool {
	if slotID == "" {
		return false
	}
	if name == "" {
		name = slotID
	}
	slot := SaveSlot{
		ID:   slotID,
		Name: name,
		Data: SavePayload{
			GameState: g.Snapshot(),
			Timestamp: time.Now(),
			Version:   Version,
			PlayTime:  g.PlayTicks(),
		},
	}

	data, err := json.Marshal(slot)
	if err != nil {
		slog.Error("save marshal failed", "slot", slotID, "error", err)
		return false
	}
	if err := m.store.Set(slotPrefix+slotID, data); err != nil {
		slog.Error("save write failed", "slot", slotID, "error", err)
		return false
	}
	slog.Info("game saved", "slot", slotID, "name", name)
	return true
}

// LoadGame reads a slot. The stored snapshot is unmarshaled over fresh
// defaults, so fields missing from older saves fall back to their initial
// values. Returns nil when the slot is absent or corrupt.
func (m *SaveManager) LoadGame(slotID string) *SaveSlot {
	data, ok, err := m.store.Get(slotPrefix + slotID)
	if err != nil {
		slog.Error("save read failed", "slot", slotID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	slot := SaveSlot{
		Data: SavePayload{GameState: game.DefaultSnapshot(m.defs)},
	}
	if err := json.Unmarshal(data, &slot); err != nil {
		slog.Error("save corrupt", "slot", slotID, "error", err)
		return nil
	}

	if slot.Data.Version != Version {
		slog.Warn("save version mismatch, loading anyway",
			"slot", slotID, "save_version", slot.Data.Version, "running_version", Version)
	}
	return &slot
}

// QuickSave writes the reserved quicksave slot.
func (m *SaveManager) QuickSave(g *game.Game) bool {
	return m.SaveGame(g, SlotQuick, "Quick Save")
}

// QuickLoad reads the reserved quicksave slot.
func (m *SaveManager) QuickLoad() *SaveSlot {
	return m.LoadGame(SlotQuick)
}

// AutoSave writes the reserved autosave slot.
func (m *SaveManager) AutoSave(g *game.Game) bool {
	return m.SaveGame(g, SlotAuto, "Auto Save")
}

// DeleteSave removes a slot. Reports success.
func (m *SaveManager) DeleteSave(slotID string) bool {
	if err := m.store.Delete(slotPrefix + slotID); err != nil {
		slog.Error("save delete failed", "slot", slotID, "error", err)
		return false
	}
	return true
}

// ListSaves returns every slot sorted by timestamp, newest first. Corrupt
// slots are skipped.
func (m *SaveManager) ListSaves() []SaveSlot {
	keys, err := m.store.Keys(slotPrefix)
	if err != nil {
		slog.Error("save listing failed", "error", err)
		return nil
	}

	var slots []SaveSlot
	for _, key := range keys {
		id := key[len(slotPrefix):]
		if slot := m.LoadGame(id); slot != nil {
			slots = append(slots, *slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Data.Timestamp.After(slots[j].Data.Timestamp)
	})
	return slots
}

// exportDoc is the portable save document shape.
type exportDoc struct {
	Format  string   `json:"format"`
	Version string   `json:"version"`
	Slot    SaveSlot `json:"slot"`
}

// ExportSave serializes a slot into a portable document.
func (m *SaveManager) ExportSave(slotID string) ([]byte, error) {
	slot := m.LoadGame(slotID)
	if slot == nil {
		return nil, fmt.Errorf("slot %q not found", slotID)
	}
	return json.MarshalIndent(exportDoc{
		Format:  exportFormat,
		Version: Version,
		Slot:    *slot,
	}, "", "  ")
}

// ImportSave validates a portable document and writes it back into its
// slot. Malformed input leaves stored state untouched.
func (m *SaveManager) ImportSave(data []byte) (string, bool) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Error("import parse failed", "error", err)
		return "", false
	}
	if doc.Format != exportFormat || doc.Slot.ID == "" {
		slog.Error("import rejected", "format", doc.Format)
		return "", false
	}
	if doc.Version != Version {
		slog.Warn("import version mismatch, importing anyway",
			"import_version", doc.Version, "running_version", Version)
	}

	raw, err := json.Marshal(doc.Slot)
	if err != nil {
		slog.Error("import marshal failed", "error", err)
		return "", false
	}
	if err := m.store.Set(slotPrefix+doc.Slot.ID, raw); err != nil {
		slog.Error("import write failed", "error", err)
		return "", false
	}
	slog.Info("save imported", "slot", doc.Slot.ID)
	return doc.Slot.ID, true
}
