package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/gesture_detector/internal/config"
	"github.com/relabs-tech/gesture_detector/internal/gesture"
	"github.com/relabs-tech/gesture_detector/internal/motion"
	"github.com/relabs-tech/gesture_detector/internal/sensors"
)

// RunCalibrate runs the calibration routine once and prints the per-axis
// statistics, optionally writing them to a JSON file. Useful for checking
// sensor noise levels before a session.
func RunCalibrate(outPath string) error {
	cfg := config.Get()

	var src motion.Source
	if *useMockSensor {
		log.Println("calibrate: using mock accelerometer")
		src = sensors.NewMockSource()
	} else {
		var err error
		src, err = sensors.NewAccelSource()
		if err != nil {
			return fmt.Errorf("sensor init: %w", err)
		}
	}

	log.Printf("calibrate: collecting %d samples at %dms, keep the sensor still",
		cfg.CalSampleCount, cfg.CalSampleInterval)

	start := time.Now()
	stats, err := gesture.Calibrate(src,
		cfg.CalSampleCount,
		time.Duration(cfg.CalSampleInterval)*time.Millisecond,
		time.Duration(cfg.SensorReadyTimeoutMS)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	fmt.Printf("calibration window: %d samples in %s\n", cfg.CalSampleCount, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  mean: x=%9.4f y=%9.4f z=%9.4f\n", stats.Mean[0], stats.Mean[1], stats.Mean[2])
	fmt.Printf("  std:  x=%9.4f y=%9.4f z=%9.4f\n", stats.Std[0], stats.Std[1], stats.Std[2])

	if outPath != "" {
		payload, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		if err := os.WriteFile(outPath, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		log.Printf("calibrate: stats written to %s", outPath)
	}

	return nil
}
