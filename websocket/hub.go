package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// SubmissionEvent is pushed to every connected admin dashboard when an
// application lands.
type SubmissionEvent struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	ReferralCode string    `json:"referral_code"`
	ReceivedAt   time.Time `json:"received_at"`
}

var clients = make(map[*websocket.Conn]bool)
var clientsMu sync.RWMutex
var Register = make(chan *websocket.Conn)
var Unregister = make(chan *websocket.Conn)
var Broadcast = make(chan SubmissionEvent, 16)

// Publish hands an event to the hub without blocking the submission path.
// The feed is best-effort: if the buffer is full the event is dropped.
func Publish(event SubmissionEvent) {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	select {
	case Broadcast <- event:
	default:
	}
}

func RunHub() {
	for {
		select {
		case conn := <-Register:
			log.Println("Feed client registered")
			clientsMu.Lock()
			clients[conn] = true
			clientsMu.Unlock()
		case conn := <-Unregister:
			log.Println("Feed client unregistered")
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			var dead []*websocket.Conn
			for conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending event to feed client: %v", err)
					conn.Close()
					dead = append(dead, conn)
				}
			}
			clientsMu.RUnlock()
			if len(dead) > 0 {
				clientsMu.Lock()
				for _, conn := range dead {
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// ServeFeed keeps an admin connection registered until the client hangs up.
func ServeFeed(c *websocket.Conn) {
	Register <- c
	defer func() {
		Unregister <- c
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
