// Package mesh wires the room directory, the signaling store and the
// metrics server together and hands out room sessions.
package mesh

import (
	"fmt"

	"meshroom/directory"
	"meshroom/metric"
	"meshroom/peer"
	"meshroom/signaling"
)

// Config contains the configuration for the mesh.
type Config struct {
	// RelayHost is the host of a shared signaling relay. When empty the
	// signaling store stays in-process, which only serves a single-node
	// setup and tests.
	RelayHost string

	Directory directory.Config
	Metrics   metric.Config
	Peer      peer.Config
	Signaling signaling.Config
}

// Validate validates the mesh configuration.
func (c Config) Validate() error {
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	return nil
}
