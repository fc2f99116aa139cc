package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/driftworld/core/internal/config"
	"github.com/driftworld/core/internal/core/event"
	coresys "github.com/driftworld/core/internal/core/system"
	"github.com/driftworld/core/internal/data"
	"github.com/driftworld/core/internal/gen"
	"github.com/driftworld/core/internal/persist"
	"github.com/driftworld/core/internal/scripting"
	"github.com/driftworld/core/internal/system"
	"github.com/driftworld/core/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           driftworld  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     streaming procedural world core       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mworld:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ──────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("DRIFTWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Optional run-score store. An empty DSN runs fully in-memory.
	var runRepo *persist.RunRepo
	if cfg.Database.DSN != "" {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		runRepo = persist.NewRunRepo(db)
	}

	// 4. Load level parameters
	printSection("level")

	level, err := data.LoadLevel(cfg.Sim.LevelPath)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	printStat("entity types", len(level.Types))
	printStat("enemy species", len(level.Enemies))
	printStat("render radius", int(level.RenderRadius))

	// 5. Behavior scripts (optional)
	var engine *scripting.Engine
	if cfg.Sim.ScriptsDir != "" {
		engine, err = scripting.NewEngine(cfg.Sim.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		printOK("behavior scripts loaded")
	}
	fmt.Println()

	// 6. Build the world
	generator := gen.New(level, log)

	// The broad phase must cover the largest probe range with one cell ring.
	cellSize := level.CollectRadius
	if level.Magnet.Radius > cellSize {
		cellSize = level.Magnet.Radius
	}
	if cellSize <= 0 {
		cellSize = level.ChunkSize / 4
	}

	bus := event.NewBus()
	grid := world.NewGrid(cellSize, log)
	pool := world.NewPool(poolCaps(level), log)
	chunks := world.NewChunkManager(level.ChunkSize, level.RenderRadius,
		cfg.Sim.OpsBudgetPerTick, generator.Generate, grid, pool, bus, log)
	ws := world.NewState(grid, pool, chunks, bus, log)

	event.Subscribe(bus, func(ev event.ScoreEvent) {
		ws.Score += int64(ev.Value)
		log.Debug("collected", zap.String("type", ev.TypeTag), zap.Int64("score", ws.Score))
	})
	event.Subscribe(bus, func(ev event.CollisionEvent) {
		log.Debug("contact", zap.String("category", ev.Category), zap.String("type", ev.TypeTag))
	})

	// 7. Create systems and register with runner
	runner := coresys.NewRunner()
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewObserverSystem(ws, level.ChunkSize/8))
	runner.Register(system.NewBehaviorSystem(ws, level, engine, cfg.Sim.GroundProbeInterval))
	runner.Register(system.NewCollectSystem(ws, level))
	runner.Register(system.NewStreamSystem(ws))

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate.Duration)
	defer ticker.Stop()

	printSection("world ready")
	printReady(fmt.Sprintf("seed %q → %#x", level.Seed, generator.WorldSeed()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Sim.TickRate.Duration))
	fmt.Println()

	statCounter := 0
	const statInterval = 200 // 200 ticks × 50ms = 10 seconds

	for {
		select {
		case <-ticker.C:
			ws.Tick++
			runner.Tick(cfg.Sim.TickRate.Duration)
			statCounter++
			if statCounter >= statInterval {
				statCounter = 0
				loads, unloads := chunks.Counters()
				log.Info("world status",
					zap.Int64("tick", ws.Tick),
					zap.Int64("score", ws.Score),
					zap.Int("chunks", chunks.ResidentCount()),
					zap.Int("enemies", ws.EnemyCount()),
					zap.Int64("loads", loads),
					zap.Int64("unloads", unloads),
					zap.Int64("gen_skipped", generator.Skipped()))
			}
		case sig := <-shutdownCh:
			log.Info("shutting down", zap.String("signal", sig.String()))
			if runRepo != nil {
				loads, _ := chunks.Counters()
				saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				row := &persist.RunRow{
					LevelName:  level.Name,
					Seed:       level.Seed,
					Score:      ws.Score,
					Ticks:      ws.Tick,
					ChunkLoads: loads,
				}
				if err := runRepo.SaveRun(saveCtx, row); err != nil {
					log.Error("save run failed", zap.Error(err))
				} else {
					log.Info("run saved", zap.Int64("id", row.ID), zap.Int64("score", row.Score))
				}
			}
			return nil
		}
	}
}

func poolCaps(level *data.Level) map[world.Category]int {
	caps := make(map[world.Category]int, len(level.PoolCaps))
	for name, n := range level.PoolCaps {
		if cat, ok := world.CategoryByName(name); ok {
			caps[cat] = n
		}
	}
	return caps
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
