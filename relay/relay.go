// Package relay hosts the shared signaling store endpoint. Every frame a
// client appends is fanned out to every connected client, the sender
// included, so each node's store sees the same record stream.
package relay

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"meshroom/store/ws"
)

// Relay contains the server and configuration.
type Relay struct {
	server   *http.Server
	config   Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// New creates a new instance of Relay.
func New(config Config) *Relay {
	r := &Relay{
		config:  config,
		clients: map[*client]struct{}{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(ws.Path, r.serveStore)
	r.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", config.Port),
		ReadTimeout: 2 * time.Second,
		Handler:     mux,
	}
	return r
}

// Start runs the relay server.
func (r *Relay) Start() error {
	if r.config.CertFile == "" || r.config.KeyFile == "" {
		log.Printf("Starting relay port on %d, without TLS", r.config.Port)
		if err := r.server.ListenAndServe(); err != nil {
			return fmt.Errorf("failed to start relay: %w", err)
		}
		return nil
	}

	log.Printf("Starting relay port on %d, with TLS", r.config.Port)
	if err := r.server.ListenAndServeTLS(r.config.CertFile, r.config.KeyFile); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	return nil
}

// Stop shuts the relay server down and drops every client.
func (r *Relay) Stop() error {
	return r.server.Close()
}

// Handler exposes the relay endpoint for embedding into another server.
func (r *Relay) Handler() http.Handler {
	return http.HandlerFunc(r.serveStore)
}

// ClientCount returns the number of connected clients.
func (r *Relay) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// serveStore upgrades one client connection and pumps its frames to the
// whole fan-out set until it drops.
func (r *Relay) serveStore(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("error occurs in upgrading relay client %v", err)
		return
	}
	c := &client{conn: conn}

	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.clients, c)
		r.mu.Unlock()
		if err := conn.Close(); err != nil {
			log.Printf("error occurs in closing relay client %v", err)
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		r.broadcast(messageType, data)
	}
}

// broadcast fans one frame out to every connected client. A client that
// cannot be written to is left for its own read loop to reap.
func (r *Relay) broadcast(messageType int, data []byte) {
	r.mu.Lock()
	targets := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		targets = append(targets, c)
	}
	r.mu.Unlock()

	for _, c := range targets {
		if err := c.write(messageType, data); err != nil {
			log.Printf("error occurs in relaying frame %v", err)
		}
	}
}
