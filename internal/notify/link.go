// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package notify

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// JumpByte is the only value ever written to the notification channel.
// No explicit idle byte exists: the retained value persists until the next
// jump event, so a subscriber joining mid-idle reads a stale 1. Subscribers
// must treat each delivered notification as an edge-triggered jump event.
const JumpByte byte = 1

// Link carries the one-byte jump signal over MQTT. The jump topic is the
// notification characteristic (retained publish reproduces read+notify);
// the announce topic carries the device's discovery name while the link is
// up.
type Link struct {
	client        mqtt.Client
	deviceName    string
	jumpTopic     string
	announceTopic string
}

// NewLink builds the link but does not connect; Advertise does that.
func NewLink(broker, clientID, deviceName, jumpTopic, announceTopic string) *Link {
	l := &Link{
		deviceName:    deviceName,
		jumpTopic:     jumpTopic,
		announceTopic: announceTopic,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(false) // reconnection is the state machine's job
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("link: connection lost: %v", err)
	})

	l.client = mqtt.NewClient(opts)
	return l
}

// Advertise makes the device discoverable: establish the transport session
// if needed and publish the retained discovery name. The detector calls
// this at startup and explicitly after every disconnect.
func (l *Link) Advertise() error {
	if !l.client.IsConnectionOpen() {
		if token := l.client.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("transport connect: %w", token.Error())
		}
	}

	token := l.client.Publish(l.announceTopic, 0, true, []byte(l.deviceName))
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("announce %q: %w", l.deviceName, token.Error())
	}
	log.Printf("link: advertising as %q", l.deviceName)
	return nil
}

// Connected reports transport session liveness.
func (l *Link) Connected() bool {
	return l.client.IsConnectionOpen()
}

// NotifyJump writes the single jump byte, retained.
func (l *Link) NotifyJump() error {
	token := l.client.Publish(l.jumpTopic, 0, true, []byte{JumpByte})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish jump: %w", token.Error())
	}
	return nil
}

// Close tears the transport session down.
func (l *Link) Close() {
	l.client.Disconnect(250)
}
