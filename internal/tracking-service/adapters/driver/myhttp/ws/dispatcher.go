package ws

import (
	"context"
	"net/http"
	"sync"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/events"

	"github.com/gorilla/websocket"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Dispatcher manages dashboard websocket clients grouped into named rooms
// (parent.<id>, org.<id>, driver.<id>, ops.global). The notifier writes
// broker deliveries into rooms; slow clients are dropped rather than
// blocking the fanout.
type Dispatcher struct {
	rooms map[string]map[*Client]bool
	sync.RWMutex
	log mylogger.Logger
}

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		rooms: make(map[string]map[*Client]bool),
		log:   log,
	}
}

// JoinHandler upgrades the request and subscribes the client to the room
// named in the path.
func (d *Dispatcher) JoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("ws_join")
		room := r.PathValue("room")
		if room == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}
		client := NewClient(context.Background(), conn, d, room)
		d.addClient(room, client)
		go client.ReadMessages()
		go client.WriteMessages()
		log.Info("client joined", "room", room)
	}
}

func (d *Dispatcher) WriteToRoom(room string, event events.Event) {
	d.RLock()
	defer d.RUnlock()

	for client := range d.rooms[room] {
		select {
		case client.egress <- event:
		default:
			d.log.Action("ws_write").Warn("client egress full, dropping event", "room", room)
		}
	}
}

func (d *Dispatcher) RoomCount(room string) int {
	d.RLock()
	defer d.RUnlock()
	return len(d.rooms[room])
}

func (d *Dispatcher) addClient(room string, client *Client) {
	d.Lock()
	defer d.Unlock()

	if d.rooms[room] == nil {
		d.rooms[room] = make(map[*Client]bool)
	}
	d.rooms[room][client] = true
}

func (d *Dispatcher) removeClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if clients, ok := d.rooms[client.room]; ok {
		if _, exists := clients[client]; exists {
			client.conn.Close()
			delete(clients, client)
			if len(clients) == 0 {
				delete(d.rooms, client.room)
			}
		}
	}
}
