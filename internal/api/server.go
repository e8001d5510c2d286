// Package api serves the park state over HTTP.
// GET endpoints are public (read-only observation).
// Control-plane POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talgya/xenopark/internal/campaign"
	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/engine"
	"github.com/talgya/xenopark/internal/game"
	"github.com/talgya/xenopark/internal/persistence"
)

const maxImportBytes = 1 << 20

// Server exposes the game over HTTP and websocket.
type Server struct {
	G     *game.Game
	Eval  *campaign.Evaluator
	Eng   *engine.Engine
	Saves *persistence.SaveManager
	Store persistence.Store
	Defs  *catalog.Catalog
	Hub   *Hub

	Port     int
	AdminKey string // Bearer token for control-plane endpoints. Empty = disabled.
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	importLimiter := NewRateLimiter(20, time.Hour)

	mux := http.NewServeMux()

	// Read-only state.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/research", s.handleResearch)
	mux.HandleFunc("/api/v1/scenario", s.handleScenario)
	mux.HandleFunc("/api/v1/achievements", s.handleAchievements)
	mux.HandleFunc("/api/v1/saves", s.handleSaves)

	// Player actions.
	mux.HandleFunc("/api/v1/place/facility", s.handlePlaceFacility)
	mux.HandleFunc("/api/v1/place/creature", s.handlePlaceCreature)
	mux.HandleFunc("/api/v1/remove", s.handleRemove)
	mux.HandleFunc("/api/v1/research/start", s.handleResearchStart)
	mux.HandleFunc("/api/v1/undo", s.handleUndo)
	mux.HandleFunc("/api/v1/redo", s.handleRedo)
	mux.HandleFunc("/api/v1/scenario/start", s.handleScenarioStart)
	mux.HandleFunc("/api/v1/event/resolve", s.handleEventResolve)
	mux.HandleFunc("/api/v1/mode", s.handleMode)
	mux.HandleFunc("/api/v1/pause", s.handlePause)

	// Persistence.
	mux.HandleFunc("/api/v1/save", s.handleSave)
	mux.HandleFunc("/api/v1/load", s.handleLoad)
	mux.HandleFunc("/api/v1/save/delete", s.handleDeleteSave)
	mux.HandleFunc("/api/v1/export/", s.handleExport)
	mux.HandleFunc("/api/v1/import", RateLimitMiddleware(importLimiter, s.handleImport))
	mux.HandleFunc("/api/v1/settings", s.handleSettings)

	// Control plane (POST, bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/campaign/clear", s.adminOnly(s.handleCampaignClear))

	// Real-time push.
	if s.Hub != nil {
		mux.HandleFunc("/ws", s.Hub.ServeWs)
	}

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no XENOPARK_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	wx := s.G.CurrentConditions()

	var pendingID string
	if ev := s.Eval.PendingEvent(); ev != nil {
		pendingID = ev.ID
	}

	writeJSON(w, map[string]any{
		"resources": s.G.Resources(),
		"day":       s.G.Day(),
		"hour":      s.G.Hour(),
		"mode":      string(s.G.Mode()),
		"paused":    s.G.Paused(),
		"speed":     s.Eng.Speed(),
		"ticks":     s.Eng.Ticks(),
		"weather": map[string]any{
			"description":    wx.Description,
			"visitor_factor": wx.VisitorFactor,
			"hazard_risk":    wx.HazardRisk,
		},
		"pending_event": pendingID,
		"can_undo":      s.G.CanUndo(),
		"can_redo":      s.G.CanRedo(),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"facilities": s.G.Facilities(),
		"xenomorphs": s.G.Creatures(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"facilities": s.Defs.Facilities,
		"species":    s.Defs.Species,
		"research":   s.Defs.Research,
		"scenarios":  s.Defs.Scenarios,
	})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"state":     s.G.ResearchView(),
		"available": s.G.AvailableNodes(),
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	active := s.Eval.ActiveScenario()

	resp := map[string]any{
		"active":   active,
		"progress": s.Eval.CampaignProgress(),
	}
	if sc, ok := s.Defs.ScenarioByID(active); ok {
		states := s.Eval.ObjectiveStates()
		type objStatus struct {
			ID          string `json:"id"`
			Description string `json:"description"`
			Required    bool   `json:"required"`
			Complete    bool   `json:"complete"`
		}
		objectives := make([]objStatus, 0, len(sc.Objectives))
		for _, obj := range sc.Objectives {
			objectives = append(objectives, objStatus{
				ID:          obj.ID,
				Description: obj.Description,
				Required:    obj.Required,
				Complete:    states[obj.ID],
			})
		}
		resp["name"] = sc.Name
		resp["objectives"] = objectives
	}
	if ev := s.Eval.PendingEvent(); ev != nil {
		resp["pending_event"] = ev
	}
	writeJSON(w, resp)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	states := s.Eval.Achievements()

	type achView struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Unlocked    bool       `json:"unlocked"`
		UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	}
	var out []achView
	for _, a := range s.Defs.Achievements {
		st := states[a.ID]
		if a.Hidden && !st.Unlocked {
			continue
		}
		out = append(out, achView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Unlocked:    st.Unlocked,
			UnlockedAt:  st.UnlockedAt,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	type slotView struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Timestamp time.Time `json:"timestamp"`
		Day       int       `json:"day"`
	}
	var out []slotView
	for _, slot := range s.Saves.ListSaves() {
		out = append(out, slotView{
			ID:        slot.ID,
			Name:      slot.Name,
			Timestamp: slot.Data.Timestamp,
			Day:       slot.Data.GameState.Day,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handlePlaceFacility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Row  int    `json:"row"`
		Col  int    `json:"col"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	def, ok := s.Defs.FacilityByName(req.Name)
	if !ok {
		writeResult(w, game.Result{Reason: game.ReasonNotFound})
		return
	}
	writeResult(w, s.G.PlaceFacility(def, game.Position{Row: req.Row, Col: req.Col}))
}

func (s *Server) handlePlaceCreature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Species string `json:"species"`
		Row     int    `json:"row"`
		Col     int    `json:"col"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	sp, ok := s.Defs.SpeciesByName(req.Species)
	if !ok {
		writeResult(w, game.Result{Reason: game.ReasonNotFound})
		return
	}
	writeResult(w, s.G.PlaceCreature(sp, game.Position{Row: req.Row, Col: req.Col}))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Kind string `json:"kind"` // "facility" or "creature"
	}
	if !decodePost(w, r, &req) {
		return
	}
	switch req.Kind {
	case "creature":
		writeResult(w, s.G.RemoveCreature(req.ID))
	default:
		writeResult(w, s.G.RemoveFacility(req.ID))
	}
}

func (s *Server) handleResearchStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node string `json:"node"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	writeResult(w, s.G.StartResearch(req.Node))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]bool{"ok": s.G.Undo()})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]bool{"ok": s.G.Redo()})
}

func (s *Server) handleScenarioStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	writeResult(w, s.Eval.StartScenario(req.ID))
}

func (s *Server) handleEventResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event  string `json:"event"`
		Choice string `json:"choice"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	writeResult(w, s.Eval.ResolveEvent(req.Event, req.Choice))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Mode string `json:"mode"`
		}
		if !decodePost(w, r, &req) {
			return
		}
		switch game.Mode(req.Mode) {
		case game.ModePark, game.ModeHorror:
			s.G.SetMode(game.Mode(req.Mode))
		default:
			http.Error(w, "mode must be park or horror", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, map[string]string{"mode": string(s.G.Mode())})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Paused bool `json:"paused"`
		}
		if !decodePost(w, r, &req) {
			return
		}
		s.G.SetPaused(req.Paused)
	}
	writeJSON(w, map[string]bool{"paused": s.G.Paused()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot"`
		Name string `json:"name"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	var ok bool
	if req.Slot == "" || req.Slot == persistence.SlotQuick {
		ok = s.Saves.QuickSave(s.G)
	} else {
		ok = s.Saves.SaveGame(s.G, req.Slot, req.Name)
	}
	writeJSON(w, map[string]bool{"ok": ok})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if req.Slot == "" {
		req.Slot = persistence.SlotQuick
	}
	slot := s.Saves.LoadGame(req.Slot)
	if slot == nil {
		writeJSON(w, map[string]bool{"ok": false})
		return
	}
	s.G.Restore(slot.Data.GameState)
	writeJSON(w, map[string]any{"ok": true, "slot": slot.ID, "day": slot.Data.GameState.Day})
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	writeJSON(w, map[string]bool{"ok": s.Saves.DeleteSave(req.Slot)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	slot := strings.TrimPrefix(r.URL.Path, "/api/v1/export/")
	if slot == "" {
		http.Error(w, "missing slot id", http.StatusBadRequest)
		return
	}
	data, err := s.Saves.ExportSave(slot)
	if err != nil {
		http.Error(w, "export failed", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slot+".json"))
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	slot, ok := s.Saves.ImportSave(data)
	writeJSON(w, map[string]any{"ok": ok, "slot": slot})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var settings persistence.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		settings.Normalize()
		persistence.SaveSettings(s.Store, settings)
		if s.Eng != nil {
			s.Eng.SetAutosaveInterval(autosaveDuration(settings))
		}
	}
	writeJSON(w, persistence.LoadSettings(s.Store))
}

func autosaveDuration(settings persistence.Settings) time.Duration {
	if !settings.AutoSave {
		return 0
	}
	return time.Duration(settings.AutoSaveInterval) * time.Second
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 4 {
			http.Error(w, "speed must be 0-4", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.G.Reset()
	writeJSON(w, map[string]any{"ok": true, "day": s.G.Day()})
}

// handleCampaignClear wipes the campaign namespace, including one-time
// event history. The only path that ever clears that history.
func (s *Server) handleCampaignClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Eval.ClearCampaign()
	writeJSON(w, map[string]bool{"ok": true})
}

// decodePost enforces POST with a JSON body. Writes the error response
// itself and returns false on failure.
func decodePost(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeResult reports a guarded operation's outcome. Rejections are part
// of normal play, so they come back 200 with ok=false.
func writeResult(w http.ResponseWriter, res game.Result) {
	writeJSON(w, map[string]any{"ok": res.OK, "reason": string(res.Reason)})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
