// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package relay

import (
	"log"
	"sync/atomic"

	"github.com/relabs-tech/gesture_detector/internal/trigger"
)

// Relay bridges notification payloads into game triggers. It tolerates
// zero or more notifications with no guaranteed interval; subscription
// management (including re-subscribe after reconnection) lives with the
// transport glue in internal/app.
type Relay struct {
	trigger trigger.Trigger
	jumps   atomic.Uint64
}

func New(t trigger.Trigger) *Relay {
	return &Relay{trigger: t}
}

// HandleNotification processes one payload from the notification channel.
// An empty payload carries no signal and is not an error. A payload whose
// first byte is the jump value invokes the game trigger exactly once.
func (r *Relay) HandleNotification(payload []byte) {
	if len(payload) == 0 {
		return
	}
	if payload[0] != 1 {
		log.Printf("relay: ignoring unexpected payload % x", payload)
		return
	}

	if err := r.trigger.Jump(); err != nil {
		log.Printf("relay: game trigger error: %v", err)
		return
	}
	r.jumps.Add(1)
}

// Jumps reports how many jump signals have been forwarded to the game.
func (r *Relay) Jumps() uint64 {
	return r.jumps.Load()
}
