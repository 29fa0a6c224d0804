package main

import (
	"flag"
	"log"
	"runtime"

	"wavebg/internal/logger"
	"wavebg/pkg/config"
	"wavebg/pkg/host"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "wavebg.yaml", "Path to configuration file")
	level := flag.String("log", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *level != "" {
		cfg.Log.Level = *level
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting water background...")

	h, err := host.NewHost(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open window: %v", err)
	}

	h.Run()
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	if cfg.File == "" {
		return logger.NewLogger(cfg.Level), nil
	}
	return logger.NewMultiLogger(cfg.Level, cfg.File)
}
