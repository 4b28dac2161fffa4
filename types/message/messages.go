// Package message provides data types for signaling records.
package message

import (
	"encoding/json"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pion/webrtc/v4"
)

// Constants for message kinds
const (
	OFFER  = "OFFER"
	ANSWER = "ANSWER"
	ICE    = "ICE"
	CHAT   = "CHAT"
)

// Envelope is the wire form shared by all signaling records. Payload is
// decoded according to Kind; unknown kinds must be dropped by the reader.
type Envelope struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Offer is data type for an SDP offer addressed to one participant.
type Offer struct {
	From string `json:"from"`
	To   string `json:"to"`
	SDP  string `json:"sdp"`
}

// Answer is data type for an SDP answer addressed to one participant.
type Answer struct {
	From string `json:"from"`
	To   string `json:"to"`
	SDP  string `json:"sdp"`
}

// Ice is data type for one trickled ICE candidate.
type Ice struct {
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// Chat is data type for a broadcast chat message. Chat has no To field:
// it is delivered to every subscriber in the room. ID is carried inside
// the payload so that the copy received over a direct channel and the
// copy replayed from the store can be deduplicated.
type Chat struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}

// Marshal wraps the given payload into an Envelope and returns its JSON form.
func Marshal(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:      shortuuid.New(),
		Kind:    kind,
		Payload: raw,
	})
}
