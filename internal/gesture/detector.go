// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/gesture_detector/internal/motion"
)

// ConnectionState is the detector's position in its connection lifecycle.
// Transitions are driven by link events from the transport, not by the
// application.
type ConnectionState int32

const (
	StateAdvertising ConnectionState = iota
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateAdvertising:
		return "advertising"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Link is the outbound notification channel plus its liveness view.
type Link interface {
	// Advertise makes the device discoverable. Called once at startup and
	// explicitly re-called after every disconnect; discoverability is never
	// left to implicit transport behavior.
	Advertise() error
	Connected() bool
	// NotifyJump writes the single jump byte to the notification channel.
	NotifyJump() error
}

// Indicator is the steady visual signal shown while a central is connected.
type Indicator interface {
	On()
	Off()
}

// Detector runs the normalization + inference loop inside the connection
// state machine. The loop is the body of the Connected state: it executes
// until disconnect on each entry.
type Detector struct {
	src      motion.Source
	scorer   Scorer
	stats    Stats
	link     Link
	ind      Indicator
	interval time.Duration

	state atomic.Int32
}

// NewDetector wires the loop's collaborators. stats must come from a
// completed calibration; it is copied and never recomputed.
func NewDetector(src motion.Source, scorer Scorer, stats Stats, link Link, ind Indicator, interval time.Duration) *Detector {
	return &Detector{
		src:      src,
		scorer:   scorer,
		stats:    stats,
		link:     link,
		ind:      ind,
		interval: interval,
	}
}

// State reports the current connection state.
func (d *Detector) State() ConnectionState {
	return ConnectionState(d.state.Load())
}

// Run drives the state machine until ctx is cancelled. There is no
// terminal state: the detector loops between Advertising and Connected for
// the life of the process.
func (d *Detector) Run(ctx context.Context) error {
	d.state.Store(int32(StateAdvertising))
	if err := d.link.Advertise(); err != nil {
		return fmt.Errorf("begin advertising: %w", err)
	}
	log.Println("detector: advertising")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.link.Connected() {
			sleep(ctx, d.interval)
			continue
		}

		d.state.Store(int32(StateConnected))
		d.ind.On()
		log.Println("detector: central connected, entering inference loop")

		d.runConnected(ctx)

		d.ind.Off()
		d.state.Store(int32(StateAdvertising))
		log.Println("detector: central disconnected")
		if err := d.link.Advertise(); err != nil {
			return fmt.Errorf("resume advertising: %w", err)
		}
		log.Println("detector: advertising")
	}
}

// runConnected is the steady-state loop: one normalization + inference
// pass per interval, at most. Link liveness is checked once per cycle, so
// a disconnect is noticed within one delay bound.
func (d *Detector) runConnected(ctx context.Context) {
	for d.link.Connected() {
		if !sleep(ctx, d.interval) {
			return
		}

		sample, err := d.src.Next()
		if err != nil {
			// No fresh sample this cycle; samples are never queued,
			// last-sample-wins.
			continue
		}

		scores, err := d.scorer.Scores(d.stats.Normalize(sample))
		if err != nil {
			// Recoverable: skip this cycle only. A single bad inference must
			// not drop the link.
			log.Printf("detector: inference failed, cycle skipped: %v", err)
			continue
		}

		if !scores.IsJump() {
			continue
		}
		if err := d.link.NotifyJump(); err != nil {
			log.Printf("detector: jump notification failed: %v", err)
		}
	}
}

// sleep waits for the throttle interval, reporting false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
