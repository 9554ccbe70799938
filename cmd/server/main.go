package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/kgview/internal/server"
	mid "github.com/OFFIS-RIT/kgview/internal/server/middleware"
	"github.com/OFFIS-RIT/kgview/internal/util"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/leaselock"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/logger/console"
	"github.com/OFFIS-RIT/kgview/pkg/store"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphs, locker, closeStore, err := newGraphStorage(ctx)
	if err != nil {
		logger.Fatal("Failed to open graph storage", "err", err)
	}
	defer closeStore()

	if err := seedDemo(ctx, graphs, locker); err != nil {
		logger.Warn("Failed to seed demo graph", "err", err)
	}

	aiClient, target, err := newAIClient()
	if err != nil {
		logger.Fatal("Failed to create model client", "err", err)
	}

	app := &mid.App{
		Store:       graphs,
		AiClient:    aiClient,
		KGName:      util.GetEnvString("KG_NAME", "Graph Theory KG"),
		ProxyTarget: target,
	}

	server.Init(app, server.Options{
		Port:      util.GetEnvString("PORT", "3000"),
		StaticDir: util.GetEnvString("STATIC_DIR", "public"),
	})
}

// seedDemo stores the demo graph when the storage holds no graphs at all, so
// a deleted demo is not restored next to user graphs. Servers sharing a
// database seed under a lease so only one of them writes.
func seedDemo(ctx context.Context, graphs store.GraphStorage, locker *leaselock.Locker) error {
	seed := func(ctx context.Context) error {
		seeded, err := store.Seed(ctx, graphs, graph.DemoName, graph.DemoDocument())
		if seeded {
			logger.Info("Seeded demo graph", "name", graph.DemoName)
		}
		return err
	}
	if locker == nil {
		return seed(ctx)
	}
	return locker.WithLease(ctx, "seed:"+graph.DemoName, leaselock.Options{
		TTL:  30 * time.Second,
		Wait: true,
	}, seed)
}
