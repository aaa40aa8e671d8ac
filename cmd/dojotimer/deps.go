package main

import (
	"github.com/hammamikhairi/dojotimer/internal/audio"
	"github.com/hammamikhairi/dojotimer/internal/config"
	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/program"
	"github.com/hammamikhairi/dojotimer/internal/storage"
)

// openStore opens the SQLite recent-program store, falling back to memory
// when the database cannot be opened.
func openStore(cfg config.Config, log *logger.Logger) (domain.ProgramStore, func()) {
	path := cfg.DBPath
	if path == "" {
		path = storage.DefaultDBPath()
	}
	db, err := storage.OpenSQLite(path, log)
	if err != nil {
		log.Warn("recent programs kept in memory only: %v", err)
		return storage.NewMemoryStore(log), func() {}
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Warn("closing store: %v", err)
		}
	}
}

// loadCatalog returns the built-in programs plus any found in the
// configured programs directory.
func loadCatalog(cfg config.Config, log *logger.Logger) *program.Catalog {
	catalog := program.NewCatalog(log)
	if cfg.ProgramsDir != "" {
		if _, err := catalog.LoadDir(cfg.ProgramsDir); err != nil {
			log.Warn("programs dir %s: %v", cfg.ProgramsDir, err)
		}
	}
	return catalog
}

// newPlayer builds the oto cue player, or a silent one when audio is
// disabled or the device cannot be opened.
func newPlayer(cfg config.Config, log *logger.Logger) cue.Player {
	if cfg.NoAudio {
		log.Info("audio disabled")
		return audio.NewNoOp(log)
	}
	bank := audio.NewBank(cfg.CueAssets, log)
	if err := bank.Preload(); err != nil {
		log.Warn("preloading cues: %v", err)
	}
	player, err := audio.NewPlayer(bank, log)
	if err != nil {
		log.Error("audio player init failed, cues disabled: %v", err)
		return audio.NewNoOp(log)
	}
	return player
}
