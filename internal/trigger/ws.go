package trigger

import (
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type wsTrigger struct {
	mu   sync.Mutex
	conn *websocket.Conn
	url  string
}

type wsAction struct {
	Action string `json:"action"`
}

// NewWebSocket connects to the game's control socket and returns a trigger
// that posts a jump action per invocation.
func NewWebSocket(url string) (Trigger, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial game socket %s: %w", url, err)
	}
	log.Printf("trigger: connected to game socket at %s", url)
	return &wsTrigger{conn: conn, url: url}, nil
}

func (t *wsTrigger) Jump() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		if err := t.redial(); err != nil {
			return err
		}
	}
	if err := t.conn.WriteJSON(wsAction{Action: "jump"}); err != nil {
		// Drop the connection; the next jump redials.
		t.conn.Close()
		t.conn = nil
		return fmt.Errorf("game socket write: %w", err)
	}
	return nil
}

func (t *wsTrigger) redial() error {
	conn, _, err := websocket.DefaultDialer.Dial(t.url, nil)
	if err != nil {
		return fmt.Errorf("redial game socket %s: %w", t.url, err)
	}
	log.Printf("trigger: reconnected to game socket at %s", t.url)
	t.conn = conn
	return nil
}
