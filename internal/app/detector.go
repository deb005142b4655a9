// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/gesture_detector/internal/config"
	"github.com/relabs-tech/gesture_detector/internal/gesture"
	"github.com/relabs-tech/gesture_detector/internal/motion"
	"github.com/relabs-tech/gesture_detector/internal/notify"
	"github.com/relabs-tech/gesture_detector/internal/sensors"
)

var useMockSensor = flag.Bool("mock", false, "use the mock accelerometer instead of the MPU9250")

// RunDetector runs the device-side pipeline: sensor init, one-time
// calibration, then the connection state machine with the inference loop
// as the body of its Connected state. Startup failures abort with a
// diagnostic; they are never retried.
func RunDetector() error {
	cfg := config.Get()

	// --- Sensor ---
	var src motion.Source
	if *useMockSensor {
		log.Println("detector: using mock accelerometer")
		src = sensors.NewMockSource()
	} else {
		var err error
		src, err = sensors.NewAccelSource()
		if err != nil {
			return fmt.Errorf("sensor init: %w", err)
		}
	}

	// --- Classifier: one owned value for the life of the process ---
	var cls *gesture.Classifier
	var err error
	if cfg.ModelPath != "" {
		cls, err = gesture.LoadClassifier(cfg.ModelPath)
	} else {
		cls, err = gesture.NewClassifier()
	}
	if err != nil {
		return fmt.Errorf("classifier init: %w", err)
	}

	// --- Indicator ---
	var ind gesture.Indicator = notify.NopIndicator{}
	if cfg.LEDPin != "" && !*useMockSensor {
		led, err := notify.NewLED(cfg.LEDPin)
		if err != nil {
			return fmt.Errorf("indicator init: %w", err)
		}
		ind = led
	}

	// --- One-time calibration: the device must rest still ---
	log.Printf("detector: calibrating, keep the sensor still (%d samples at %dms)",
		cfg.CalSampleCount, cfg.CalSampleInterval)
	stats, err := gesture.Calibrate(src,
		cfg.CalSampleCount,
		time.Duration(cfg.CalSampleInterval)*time.Millisecond,
		time.Duration(cfg.SensorReadyTimeoutMS)*time.Millisecond)
	if err != nil {
		if errors.Is(err, gesture.ErrSensorTimeout) {
			return fmt.Errorf("calibration stalled: %w", err)
		}
		return fmt.Errorf("calibration: %w", err)
	}
	log.Printf("detector: calibration done: mean=(%.3f, %.3f, %.3f) std=(%.3f, %.3f, %.3f)",
		stats.Mean[0], stats.Mean[1], stats.Mean[2],
		stats.Std[0], stats.Std[1], stats.Std[2])

	// --- Notification channel ---
	link := notify.NewLink(cfg.MQTTBroker, cfg.MQTTClientIDDetector,
		cfg.DeviceName, cfg.TopicJump, cfg.TopicAnnounce)
	defer link.Close()

	det := gesture.NewDetector(src, cls, stats, link, ind,
		time.Duration(cfg.LoopInterval)*time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = det.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("detector: shutting down")
		return nil
	}
	return err
}
