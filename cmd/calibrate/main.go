package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/gesture_detector/internal/app"
	"github.com/relabs-tech/gesture_detector/internal/config"
)

func main() {
	configPath := flag.String("config", "./gesture_config.txt", "path to configuration file")
	outPath := flag.String("out", "", "optional JSON file to write the calibration stats to")
	flag.Parse()

	log.Println("starting gesture-detector calibration check")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunCalibrate(*outPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
