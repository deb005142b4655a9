package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_detector/internal/config"
)

// RunConsole subscribes to the announce and jump topics and prints every
// event, for watching the pipeline without the game attached.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to announcements
	annToken := client.Subscribe(cfg.TopicAnnounce, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Printf("[ANNOUNCE] device %q advertising\n", string(msg.Payload()))
	})
	annToken.Wait()
	if annToken.Error() != nil {
		return annToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAnnounce)

	// Subscribe to jump notifications
	jumpToken := client.Subscribe(cfg.TopicJump, 0, func(_ mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		if len(payload) == 0 {
			fmt.Println("[JUMP ] empty payload (no signal)")
			return
		}
		fmt.Printf("[JUMP ] %s byte=%d retained=%v\n",
			time.Now().Format("15:04:05.000"), payload[0], msg.Retained())
	})
	jumpToken.Wait()
	if jumpToken.Error() != nil {
		return jumpToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicJump)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
