package main

import (
	"flag"
	"log"

	"wavebg/internal/logger"
	"wavebg/pkg/config"
	"wavebg/pkg/snapshot"
)

func main() {
	configPath := flag.String("config", "wavebg.yaml", "Path to configuration file")
	width := flag.Int("width", 0, "Output width in pixels")
	height := flag.Int("height", 0, "Output height in pixels")
	seconds := flag.Float64("time", -1, "Seconds after mount to capture")
	scale := flag.Int("scale", 0, "Render at 1/scale resolution and upsample")
	format := flag.String("format", "", "Output format: png, webp or tga")
	output := flag.String("o", "", "Output file")
	level := flag.String("log", "", "Log level override")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *level != "" {
		cfg.Log.Level = *level
	}

	snap := cfg.Snapshot
	if *width > 0 {
		snap.Width = *width
	}
	if *height > 0 {
		snap.Height = *height
	}
	if *seconds >= 0 {
		snap.Time = *seconds
	}
	if *scale > 0 {
		snap.Scale = *scale
	}
	if *output != "" {
		snap.Output = *output
		if *format == "" {
			snap.Format = snapshot.FormatFromPath(*output, snap.Format)
		}
	}
	if *format != "" {
		snap.Format = *format
	}

	logger := logger.NewLogger(cfg.Log.Level)
	defer logger.Close()

	if err := snapshot.Save(snap, logger); err != nil {
		logger.Fatalf("Snapshot failed: %v", err)
	}
}
