package main

import (
	"log"

	"github.com/dkalmus/zonecount/internal/catalog"
	"github.com/dkalmus/zonecount/internal/config"
	"github.com/dkalmus/zonecount/internal/db"
	"github.com/dkalmus/zonecount/internal/logging"
	"github.com/dkalmus/zonecount/internal/overlay"
	"github.com/dkalmus/zonecount/internal/session"
	"github.com/dkalmus/zonecount/internal/store"
	"github.com/dkalmus/zonecount/internal/web"
	"github.com/dkalmus/zonecount/internal/zonetree"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	siteStore := store.NewSiteStore(database)
	zoneStore := store.NewZoneStore(database)
	itemStore := store.NewItemStore(database)
	assignmentStore := store.NewAssignmentStore(database)
	sessionStore := store.NewSessionStore(database)
	entryStore := store.NewEntryStore(database)

	feed := &catalog.Feed{}
	if cfg.CatalogPath != "" {
		feed, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			logger.Error("failed to load catalog feed", "error", err, "path", cfg.CatalogPath)
			return
		}
		logger.Info("loaded catalog feed", "items", len(feed.Items), "templates", len(feed.ZoneTemplates))
	}

	tree := zonetree.NewTree(zoneStore, assignmentStore, logger)
	sessions := session.NewService(sessionStore, entryStore, assignmentStore, logger)
	seeder := catalog.NewSeeder(feed, itemStore, assignmentStore, logger)

	overlayCfg := overlay.Config{
		GrowDuration:   cfg.GrowDuration,
		ShrinkDuration: cfg.ShrinkDuration,
	}

	server := web.NewServer(siteStore, itemStore, assignmentStore, entryStore, tree, sessions, seeder, overlayCfg, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
