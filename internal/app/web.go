package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gesture_detector/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// jumpEvent is pushed to every websocket client per jump notification.
type jumpEvent struct {
	Time  string `json:"time"`
	Count uint64 `json:"count"`
}

// RunWeb serves a JSON status endpoint and a websocket feed of jump
// events, mirroring what the relay sees on the notification channel.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu        sync.RWMutex
		jumpCount uint64
		lastJump  time.Time
		clients   = make(map[*websocket.Conn]struct{})
	)

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to jump topic; fan each event out to websocket clients
	token := client.Subscribe(cfg.TopicJump, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if len(msg.Payload()) == 0 || msg.Payload()[0] != 1 {
			return
		}

		mu.Lock()
		jumpCount++
		lastJump = time.Now()
		ev := jumpEvent{Time: lastJump.Format(time.RFC3339Nano), Count: jumpCount}
		for conn := range clients {
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("web: websocket write error, dropping client: %v", err)
				conn.Close()
				delete(clients, conn)
			}
		}
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicJump)

	// 3) JSON API endpoint: jump status
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		status := struct {
			Jumps    uint64 `json:"jumps"`
			LastJump string `json:"last_jump,omitempty"`
		}{Jumps: jumpCount}
		if !lastJump.IsZero() {
			status.LastJump = lastJump.Format(time.RFC3339Nano)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket feed of jump events
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		mu.Lock()
		clients[conn] = struct{}{}
		mu.Unlock()
		log.Printf("web: websocket client connected (%s)", r.RemoteAddr)
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
