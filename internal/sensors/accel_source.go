// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/gesture_detector/internal/config"
	"github.com/relabs-tech/gesture_detector/internal/motion"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

type accelSource struct {
	imu *mpu9250.MPU9250
}

// NewAccelSource initializes the MPU9250 over SPI and returns an
// accelerometer-only sample source. Any failure here is a startup abort:
// the detector cannot run without its sensor.
func NewAccelSource() (motion.Source, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	// Apply configured sensor ranges
	if err := imu.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	// Configure sample rate
	if err := imu.SetDLPFMode(cfg.IMUDLPFConfig); err != nil {
		return nil, fmt.Errorf("IMU: set DLPF config: %w", err)
	}
	log.Printf("IMU: DLPF config set to %d", cfg.IMUDLPFConfig)

	if err := imu.SetSampleRateDivider(cfg.IMUSampleRateDiv); err != nil {
		return nil, fmt.Errorf("IMU: set sample rate divider: %w", err)
	}
	internalRate := 1000 // 1kHz for DLPF modes 0-6
	if cfg.IMUDLPFConfig == 7 {
		internalRate = 8000 // 8kHz when DLPF disabled
	}
	outputRate := internalRate / (1 + int(cfg.IMUSampleRateDiv))
	log.Printf("IMU: sample rate divider set to %d (output rate: %d Hz)", cfg.IMUSampleRateDiv, outputRate)

	if err := imu.SetAccelDLPF(cfg.IMUAccelDLPF); err != nil {
		return nil, fmt.Errorf("IMU: set accel DLPF: %w", err)
	}
	log.Printf("IMU: accelerometer DLPF set to %d", cfg.IMUAccelDLPF)

	// Self-test
	testResult, err := imu.SelfTest()
	if err != nil {
		log.Printf("Warning: IMU self-test failed: %v", err)
	} else {
		log.Printf("IMU self-test passed:")
		log.Printf("  Accelerometer deviation: X: %.2f%%, Y: %.2f%%, Z: %.2f%%",
			testResult.AccelDeviation.X, testResult.AccelDeviation.Y, testResult.AccelDeviation.Z)
	}

	// Driver-level bias calibration. The statistical baseline used for
	// normalization is computed separately by the gesture package.
	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU driver calibration complete")
	}

	return &accelSource{imu: imu}, nil
}

// Next reads one raw accelerometer sample from the MPU9250.
func (s *accelSource) Next() (motion.Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	return motion.Sample{
		Ax: float64(ax),
		Ay: float64(ay),
		Az: float64(az),
	}, nil
}
