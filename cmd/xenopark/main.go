// Command xenopark runs the park simulation server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/xenopark/internal/api"
	"github.com/talgya/xenopark/internal/campaign"
	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/engine"
	"github.com/talgya/xenopark/internal/game"
	"github.com/talgya/xenopark/internal/persistence"
)

func main() {
	var (
		dbPath     = flag.String("db", "data/xenopark.db", "sqlite database path")
		contentDir = flag.String("content", "", "catalog content directory (default: embedded)")
		apiPort    = flag.Int("port", 8080, "HTTP API port")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "simulation seed")
		resume     = flag.Bool("resume", true, "restore the autosave slot on startup")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("XENOPARK — xenomorph park simulation")

	// ── Content ───────────────────────────────────────────────────────
	var defs *catalog.Catalog
	var err error
	if *contentDir != "" {
		defs, err = catalog.LoadDir(*contentDir)
	} else {
		defs, err = catalog.Default()
	}
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// ── Storage ───────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	store, err := persistence.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database opened", "path", *dbPath)

	settings := persistence.LoadSettings(store)
	saves := persistence.NewSaveManager(store, defs)

	// ── Game ──────────────────────────────────────────────────────────
	hub := api.NewHub()
	go hub.Run()

	bounds := game.BoundsForSize(game.GridSize(settings.GridSize))
	g := game.New(defs, bounds, *seed, hub)

	if *resume {
		if slot := saves.LoadGame(persistence.SlotAuto); slot != nil {
			g.Restore(slot.Data.GameState)
			slog.Info("autosave restored", "day", g.Day())
		}
	}

	eval := campaign.NewEvaluator(defs, store, g, *seed+1, hub)

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New()
	if settings.AutoSave {
		eng.SetAutosaveInterval(time.Duration(settings.AutoSaveInterval) * time.Second)
	}

	lastDay := g.Day()
	eng.OnTick = g.Tick
	eng.OnPoll = func() {
		eval.EvaluateObjectives()
		eval.EvaluateAchievements()
		if ev := eval.CheckForEvents(); ev != nil {
			hub.Push("event", ev)
		}
		if day := g.Day(); day != lastDay {
			lastDay = day
			eval.RecordDay()
		}
	}
	eng.OnAutosave = func() {
		if saves.AutoSave(g) {
			hub.Push("autosave", map[string]int{"day": g.Day()})
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("XENOPARK_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("XENOPARK_ADMIN_KEY not set — control endpoints will be disabled")
	}

	server := &api.Server{
		G:        g,
		Eval:     eval,
		Eng:      eng,
		Saves:    saves,
		Store:    store,
		Defs:     defs,
		Hub:      hub,
		Port:     *apiPort,
		AdminKey: adminKey,
	}
	server.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nPark is open: day %d, %d credits in the ledger.\n",
		g.Day(), g.Resources().Credits)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("final save...")
	if !saves.AutoSave(g) {
		slog.Error("final save failed")
	}
	fmt.Println("Simulation stopped. Park state saved.")
}
