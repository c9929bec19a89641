package main

import (
	"fpchart/config"
	"fpchart/internal/chart/engine"
	"fpchart/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// run chart engine
	if err := engine.StartEngine(cfg, log, nil); err != nil {
		log.Fatal("engine failed", zap.Error(err))
	}

	select {}
}
