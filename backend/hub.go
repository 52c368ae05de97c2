package main

import (
	"encoding/json"
	"sync"
)

// Hub fans game snapshots out to the websocket clients watching each game.
type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan gameBroadcast
}

type Client struct {
	hub    *Hub
	gameID string
	send   chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type gameBroadcast struct {
	gameID  string
	message wsMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan gameBroadcast, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.gameID == msg.gameID {
					client.sendJSON(msg.message)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishState queues a snapshot for gameID. A full queue drops the update;
// the next tick sends a fresher one.
func (h *Hub) PublishState(gameID string, payload gameStatePayload) {
	msg := gameBroadcast{gameID: gameID, message: wsMessage{Type: "state", Payload: mustMarshal(payload)}}
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) PublishDeleted(gameID string) {
	select {
	case h.broadcast <- gameBroadcast{gameID: gameID, message: wsMessage{Type: "deleted"}}:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for client := range h.clients {
		if client.gameID == gameID {
			count++
		}
	}
	return count
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
