package peer

// State is the negotiation state of one link. Transitions are strictly
// sequential per link; Closed is terminal and reachable from any state.
type State int

// Negotiation states.
const (
	Idle State = iota
	OfferSent
	OfferReceived
	AnswerSent
	Answered
	Connected
	Closed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case OfferSent:
		return "offer-sent"
	case OfferReceived:
		return "offer-received"
	case AnswerSent:
		return "answer-sent"
	case Answered:
		return "answered"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Live reports whether the link is still negotiating or connected.
func (s State) Live() bool {
	return s != Closed
}
