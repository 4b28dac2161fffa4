package session

import (
	"fmt"

	"meshroom/peer"
	"meshroom/signaling"
)

// Default values for session configuration.
const (
	// DefaultMaxChatHistory bounds the in-memory chat log to the most
	// recent messages.
	DefaultMaxChatHistory = 50

	// DefaultEventQueueSize bounds the link event channel drained by the
	// session loop.
	DefaultEventQueueSize = 256

	// DefaultSeenChatLimit bounds the chat dedupe cache. It is kept much
	// larger than the history cap: an ID must outlive the late store
	// echo of its message, not just the message's stay in the log.
	DefaultSeenChatLimit = 1024
)

// Config contains the configuration for one room session.
type Config struct {
	RoomID     string
	MemberID   string
	MemberName string

	MaxChatHistory int
	EventQueueSize int
	SeenChatLimit  int

	Peer      peer.Config
	Signaling signaling.Config
}

// Validate validates the session configuration.
func (c Config) Validate() error {
	if c.RoomID == "" {
		return fmt.Errorf("room ID must be set")
	}
	if c.MemberID == "" {
		return fmt.Errorf("member ID must be set")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxChatHistory <= 0 {
		c.MaxChatHistory = DefaultMaxChatHistory
	}
	if c.EventQueueSize <= 0 {
		c.EventQueueSize = DefaultEventQueueSize
	}
	if c.SeenChatLimit <= 0 {
		c.SeenChatLimit = DefaultSeenChatLimit
	}
	return c
}
