// Package mesh wires the room directory, the signaling store and the
// metrics server together and hands out room sessions.
package mesh

import (
	"fmt"

	"meshroom/broker"
	"meshroom/directory"
	directorymemory "meshroom/directory/memory"
	"meshroom/media"
	"meshroom/metric"
	"meshroom/session"
	"meshroom/store"
	storememory "meshroom/store/memory"
	"meshroom/store/ws"
)

// Mesh contains the shared collaborators of every session on this node.
type Mesh struct {
	config    Config
	broker    *broker.Broker
	store     store.Store
	directory directory.Directory
	metrics   *metric.Metrics
}

// New creates a new instance of the mesh. With a relay host configured
// the signaling store is the shared relay; otherwise it stays local.
func New(config Config) (*Mesh, error) {
	brk := broker.New()

	var db store.Store
	if config.RelayHost != "" {
		relay, err := ws.Dial(config.RelayHost)
		if err != nil {
			return nil, fmt.Errorf("failed to dial relay %s: %w", config.RelayHost, err)
		}
		db = relay
	} else {
		db = storememory.New(brk)
	}

	return &Mesh{
		config:    config,
		broker:    brk,
		store:     db,
		directory: directorymemory.New(config.Directory, brk),
		metrics:   metric.New(config.Metrics),
	}, nil
}

// Start runs the metrics server and the system gauge updater.
func (m *Mesh) Start() {
	m.metrics.RegisterMetrics()
	m.metrics.Start()
	m.metrics.UpdateSystemMetrics()
}

// Stop shuts the metrics server and the signaling store down.
func (m *Mesh) Stop() error {
	if err := m.metrics.Stop(); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("failed to close signaling store: %w", err)
	}
	return nil
}

// EnsureRoom registers the room if it does not exist yet.
func (m *Mesh) EnsureRoom(roomID string, capacity int) error {
	return m.directory.EnsureRoomInfo(roomID, capacity)
}

// NewSession creates a session for one member of one room. Nothing
// happens until the session joins.
func (m *Mesh) NewSession(roomID, memberID, memberName string) *session.Session {
	config := session.Config{
		RoomID:     roomID,
		MemberID:   memberID,
		MemberName: memberName,
		Peer:       m.config.Peer,
		Signaling:  m.config.Signaling,
	}
	return session.New(config, m.directory, m.store, media.NewStaticSource(memberID), m.metrics)
}
