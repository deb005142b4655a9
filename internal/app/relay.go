package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_detector/internal/config"
	"github.com/relabs-tech/gesture_detector/internal/relay"
	"github.com/relabs-tech/gesture_detector/internal/trigger"
)

// RunRelay runs the host-side signal relay: discover the device by its
// announced name, subscribe to its jump notifications, and forward each
// one into the game trigger. Subscriptions are re-established inside the
// OnConnect handler so every reconnection re-subscribes.
func RunRelay() error {
	cfg := config.Get()

	// --- Game trigger ---
	var t trigger.Trigger
	var err error
	switch cfg.GameTrigger {
	case "serial":
		t, err = trigger.NewSerial(cfg.GameSerialPort, uint(cfg.GameSerialBaud))
	default:
		t, err = trigger.NewWebSocket(cfg.GameWSURL)
	}
	if err != nil {
		return fmt.Errorf("game trigger init: %w", err)
	}

	r := relay.New(t)

	// Subscribe to the jump topic only after the announced device name
	// matches the one we are looking for (exact string match). The flag is
	// reset on connection loss so every new session re-subscribes.
	var (
		subMu      sync.Mutex
		subscribed bool
	)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDRelay)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("relay: connected to MQTT broker at %s, scanning for %q", cfg.MQTTBroker, cfg.DeviceName)

		token := client.Subscribe(cfg.TopicAnnounce, 0, func(client mqtt.Client, msg mqtt.Message) {
			name := string(msg.Payload())
			if name != cfg.DeviceName {
				log.Printf("relay: ignoring device %q", name)
				return
			}
			subMu.Lock()
			defer subMu.Unlock()
			if subscribed {
				return
			}
			log.Printf("relay: found device %q, subscribing to %s", name, cfg.TopicJump)
			// The retained jump value is delivered immediately on
			// subscribe; a device that last jumped before we arrived
			// therefore produces one spurious trigger. Known protocol
			// limitation of the stale-value channel.
			jt := client.Subscribe(cfg.TopicJump, 0, func(_ mqtt.Client, msg mqtt.Message) {
				r.HandleNotification(msg.Payload())
			})
			jt.Wait()
			if jt.Error() != nil {
				log.Printf("relay: jump subscribe error: %v", jt.Error())
				return
			}
			subscribed = true
		})
		token.Wait()
		if token.Error() != nil {
			log.Printf("relay: announce subscribe error: %v", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("relay: connection lost: %v", err)
		subMu.Lock()
		subscribed = false
		subMu.Unlock()
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Printf("relay: shutting down after %d jumps forwarded", r.Jumps())
	client.Disconnect(250)
	return nil
}
