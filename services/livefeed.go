package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/muraqib/backend/models"
)

// ViolationSubject is the NATS subject new violations are published on.
const ViolationSubject = "violations.stream"

// LiveFeed fans freshly ingested violations out to dashboard WebSocket
// clients. The ingest handler publishes each stored violation to NATS; the
// feed holds one subscription and broadcasts to every connected client, so
// ingest never blocks on a slow browser.
type LiveFeed struct {
	natsConn *nats.Conn
	natsSub  *nats.Subscription

	clients   map[*FeedClient]bool
	clientsMu sync.RWMutex

	register   chan *FeedClient
	unregister chan *FeedClient
}

// FeedMessage is a message sent to clients.
type FeedMessage struct {
	Type string          `json:"type"` // violation, pong, error
	Data json.RawMessage `json:"data,omitempty"`
}

// NewLiveFeed creates the feed and subscribes to the violation subject.
func NewLiveFeed(natsConn *nats.Conn) (*LiveFeed, error) {
	f := &LiveFeed{
		natsConn:   natsConn,
		clients:    make(map[*FeedClient]bool),
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
	}

	sub, err := natsConn.Subscribe(ViolationSubject, func(msg *nats.Msg) {
		f.broadcast(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	f.natsSub = sub

	return f, nil
}

// Publish pushes a stored violation onto the feed subject.
func (f *LiveFeed) Publish(v *models.Violation) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("⚠️ Failed to encode violation for feed: %v", err)
		return
	}
	if err := f.natsConn.Publish(ViolationSubject, data); err != nil {
		log.Printf("⚠️ Failed to publish violation to feed: %v", err)
	}
}

// Register adds a client to the feed.
func (f *LiveFeed) Register(client *FeedClient) {
	f.register <- client
}

// Run starts the feed's main loop.
func (f *LiveFeed) Run() {
	log.Println("📺 Live violation feed started")

	for {
		select {
		case client := <-f.register:
			f.clientsMu.Lock()
			f.clients[client] = true
			f.clientsMu.Unlock()
			log.Printf("📺 Client connected: %s", client.remoteAddr)

		case client := <-f.unregister:
			f.clientsMu.Lock()
			if _, ok := f.clients[client]; ok {
				delete(f.clients, client)
				close(client.send)
			}
			f.clientsMu.Unlock()
			log.Printf("📺 Client disconnected: %s", client.remoteAddr)
		}
	}
}

// broadcast sends a violation document to every connected client.
func (f *LiveFeed) broadcast(data []byte) {
	msg := FeedMessage{Type: "violation", Data: data}
	msgBytes, _ := json.Marshal(msg)

	f.clientsMu.RLock()
	for client := range f.clients {
		select {
		case client.send <- msgBytes:
		default:
			// Client buffer full, drop the update
		}
	}
	f.clientsMu.RUnlock()
}

// HubStats reports feed statistics.
type HubStats struct {
	Clients int `json:"clients"`
}

func (f *LiveFeed) Stats() HubStats {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()
	return HubStats{Clients: len(f.clients)}
}
