package peer

import "meshroom/types/message"

// Link events reported upward to the session. Links never touch the
// session's link map themselves; they only emit these.

// StateChanged reports a negotiation state transition.
type StateChanged struct {
	RemoteID string
	State    State
}

// TrackReceived reports a remote media track arriving on the link.
type TrackReceived struct {
	RemoteID string
	Track    RemoteTrack
}

// ChatReceived reports a chat message delivered over the reliable channel.
type ChatReceived struct {
	RemoteID string
	Chat     message.Chat
}
