// Package peer owns the per-remote-participant negotiation state machine.
package peer

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"meshroom/media"
	"meshroom/signaling"
	"meshroom/types/message"
)

const (
	// iceQueueSize bounds locally gathered candidates waiting to be
	// published.
	iceQueueSize = 32

	// closedEmitTimeout bounds the second delivery attempt for a Closed
	// event when the session is not draining.
	closedEmitTimeout = 5 * time.Second
)

// Link is one peer link to a remote participant. All state transitions
// are serialized through one mutex, held only across the transition,
// never across store I/O. Outbound publishes run on their own goroutines
// so negotiation never blocks the session loop.
type Link struct {
	mu sync.Mutex

	config   Config
	localID  string
	remoteID string
	signal   *signaling.Channel
	tracks   *media.Tracks

	state             State
	lastStateChangeAt time.Time
	conn              Conn
	chat              DataChannel
	chatOpen          bool

	// pending holds candidates received before the remote description was
	// applied; they are replayed in arrival order once it is.
	pending       []webrtc.ICECandidateInit
	remoteApplied bool

	iceOut chan webrtc.ICECandidateInit
	done   chan struct{}
	closed bool

	events chan<- any
}

// New creates an idle link to the given remote participant.
func New(config Config, localID, remoteID string, signal *signaling.Channel, tracks *media.Tracks, events chan<- any) *Link {
	l := &Link{
		config:            config,
		localID:           localID,
		remoteID:          remoteID,
		signal:            signal,
		tracks:            tracks,
		state:             Idle,
		lastStateChangeAt: time.Now(),
		iceOut:            make(chan webrtc.ICECandidateInit, iceQueueSize),
		done:              make(chan struct{}),
		events:            events,
	}
	go l.publishCandidates()
	return l
}

// RemoteID returns the remote participant's ID.
func (l *Link) RemoteID() string {
	return l.remoteID
}

// State returns the current negotiation state.
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastStateChangeAt returns when the link last changed state.
func (l *Link) LastStateChangeAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastStateChangeAt
}

// Initiate starts the offer path: create a connection, attach local
// tracks, open the chat channel and publish an SDP offer.
func (l *Link) Initiate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Idle {
		return fmt.Errorf("cannot initiate link to %s in state %s", l.remoteID, l.state)
	}
	if err := l.setupConnLocked(); err != nil {
		l.closeLocked()
		return err
	}

	chat, err := l.conn.CreateDataChannel("chat")
	if err != nil {
		l.closeLocked()
		return fmt.Errorf("failed to open chat channel: %w", err)
	}
	l.attachChatLocked(chat)

	sdp, err := l.conn.CreateOffer()
	if err != nil {
		l.closeLocked()
		return fmt.Errorf("failed to create offer for %s: %w", l.remoteID, err)
	}
	l.setStateLocked(OfferSent)

	go func() {
		if err := l.signal.PublishOffer(l.remoteID, sdp); err != nil {
			log.Printf("error occurs in publishing offer to %s %v", l.remoteID, err)
			l.Close()
		}
	}()
	return nil
}

// HandleOffer reacts to an offer from the remote side. In Idle this is
// the answer path. When a local offer is already in flight the glare rule
// applies: the lexicographically smaller participant ID keeps its offer,
// the larger side abandons its pending connection and answers instead.
func (l *Link) HandleOffer(offer message.Offer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Idle:
		return l.answerLocked(offer)
	case OfferSent:
		if l.localID < l.remoteID {
			// Our offer wins; the remote will abandon its own and answer.
			return nil
		}
		l.abandonLocked()
		return l.answerLocked(offer)
	case Closed:
		return nil
	default:
		// Duplicate delivery of an offer already being answered.
		log.Printf("discarding offer from %s in state %s", offer.From, l.state)
		return nil
	}
}

// HandleAnswer applies the remote answer to a pending local offer.
// Answers with no matching offer in flight are duplicates or strays and
// are discarded.
func (l *Link) HandleAnswer(answer message.Answer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != OfferSent {
		log.Printf("discarding answer from %s in state %s", answer.From, l.state)
		return nil
	}
	if err := l.conn.SetRemoteDescription(webrtc.SDPTypeAnswer, answer.SDP); err != nil {
		l.closeLocked()
		return fmt.Errorf("failed to apply answer from %s: %w", answer.From, err)
	}
	l.remoteApplied = true
	l.setStateLocked(Answered)
	return l.flushPendingLocked()
}

// HandleCandidate feeds a remote candidate into the connection, buffering
// it while no remote description has been applied yet.
func (l *Link) HandleCandidate(ice message.Ice) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Idle, Closed:
		log.Printf("discarding candidate from %s in state %s", ice.From, l.state)
		return nil
	default:
	}
	if !l.remoteApplied {
		l.pending = append(l.pending, ice.Candidate)
		return nil
	}
	if err := l.conn.AddICECandidate(ice.Candidate); err != nil {
		return fmt.Errorf("failed to add candidate from %s: %w", ice.From, err)
	}
	return nil
}

// SendChat delivers a chat message over the reliable channel. The caller
// keeps the persisted broadcast as the fallback, so an unconnected link
// simply reports an error.
func (l *Link) SendChat(chat message.Chat) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Connected || l.chat == nil || !l.chatOpen {
		return fmt.Errorf("no open chat channel to %s", l.remoteID)
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	if err := l.chat.Send(data); err != nil {
		return fmt.Errorf("failed to send chat to %s: %w", l.remoteID, err)
	}
	return nil
}

// Close tears the link down. Idempotent; the session is notified once.
func (l *Link) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

// answerLocked runs the answer path for an incoming offer.
func (l *Link) answerLocked(offer message.Offer) error {
	if err := l.setupConnLocked(); err != nil {
		l.closeLocked()
		return err
	}
	l.setStateLocked(OfferReceived)

	if err := l.conn.SetRemoteDescription(webrtc.SDPTypeOffer, offer.SDP); err != nil {
		l.closeLocked()
		return fmt.Errorf("failed to apply offer from %s: %w", offer.From, err)
	}
	l.remoteApplied = true
	if err := l.flushPendingLocked(); err != nil {
		l.closeLocked()
		return err
	}

	sdp, err := l.conn.CreateAnswer()
	if err != nil {
		l.closeLocked()
		return fmt.Errorf("failed to create answer for %s: %w", offer.From, err)
	}
	l.setStateLocked(AnswerSent)

	go func() {
		if err := l.signal.PublishAnswer(l.remoteID, sdp); err != nil {
			log.Printf("error occurs in publishing answer to %s %v", l.remoteID, err)
			l.Close()
		}
	}()
	return nil
}

// abandonLocked discards the pending local offer and its connection so
// the incoming offer can be answered from a clean slate.
func (l *Link) abandonLocked() {
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Printf("error occurs in closing abandoned connection to %s %v", l.remoteID, err)
		}
	}
	l.conn = nil
	l.chat = nil
	l.chatOpen = false
	l.remoteApplied = false
	l.pending = nil
	l.setStateLocked(Idle)

	// Candidates gathered for the abandoned connection are useless to the
	// remote; drop whatever is still queued.
	for {
		select {
		case <-l.iceOut:
		default:
			return
		}
	}
}

// setupConnLocked creates the connection, wires its callbacks and
// attaches the local tracks. Every callback is bound to its own
// connection: an abandoned connection keeps firing after Close (pion
// reports its final Closed state on a fresh goroutine), and those late
// events must not touch whatever connection replaced it.
func (l *Link) setupConnLocked() error {
	conn, err := l.config.factory()()
	if err != nil {
		return fmt.Errorf("failed to create connection to %s: %w", l.remoteID, err)
	}
	l.conn = conn

	conn.OnICECandidate(func(candidate webrtc.ICECandidateInit) {
		if l.stale(conn) {
			return
		}
		select {
		case l.iceOut <- candidate:
		default:
			log.Printf("dropping local candidate for %s: queue full", l.remoteID)
		}
	})
	conn.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		l.handleConnState(conn, state)
	})
	conn.OnTrack(func(track RemoteTrack) {
		if l.stale(conn) {
			return
		}
		l.emit(TrackReceived{RemoteID: l.remoteID, Track: track})
	})
	conn.OnDataChannel(func(dc DataChannel) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed || l.conn != conn {
			return
		}
		l.attachChatLocked(dc)
	})

	if l.tracks != nil {
		for _, track := range l.tracks.All() {
			if err := conn.AddTrack(track.Local()); err != nil {
				return fmt.Errorf("failed to attach %s track: %w", track.Kind(), err)
			}
		}
	}
	return nil
}

// attachChatLocked wires one reliable channel as the link's chat channel.
func (l *Link) attachChatLocked(dc DataChannel) {
	l.chat = dc
	l.chatOpen = false
	dc.OnOpen(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed || l.chat != dc {
			return
		}
		l.chatOpen = true
	})
	dc.OnMessage(func(data []byte) {
		var chat message.Chat
		if err := json.Unmarshal(data, &chat); err != nil {
			log.Printf("error occurs in decoding chat from %s %v", l.remoteID, err)
			return
		}
		l.mu.Lock()
		stale := l.closed
		l.mu.Unlock()
		if stale {
			return
		}
		l.emit(ChatReceived{RemoteID: l.remoteID, Chat: chat})
	})
}

// stale reports whether conn is no longer the link's connection.
func (l *Link) stale(conn Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed || l.conn != conn
}

// handleConnState reacts to transport state changes. Any terminal signal
// closes the link; recovery from transient disconnects is not attempted.
// Events from a connection the link no longer owns are ignored.
func (l *Link) handleConnState(conn Conn, state webrtc.PeerConnectionState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.conn != conn {
		return
	}
	switch state {
	case webrtc.PeerConnectionStateConnected:
		if l.state != Connected {
			l.setStateLocked(Connected)
		}
	case webrtc.PeerConnectionStateFailed,
		webrtc.PeerConnectionStateDisconnected,
		webrtc.PeerConnectionStateClosed:
		l.closeLocked()
	default:
	}
}

// flushPendingLocked replays buffered candidates in arrival order.
func (l *Link) flushPendingLocked() error {
	for _, candidate := range l.pending {
		if err := l.conn.AddICECandidate(candidate); err != nil {
			return fmt.Errorf("failed to replay candidate for %s: %w", l.remoteID, err)
		}
	}
	l.pending = nil
	return nil
}

// closeLocked releases the connection and reports Closed exactly once.
func (l *Link) closeLocked() {
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
	l.pending = nil
	l.chat = nil
	l.chatOpen = false
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Printf("error occurs in closing connection to %s %v", l.remoteID, err)
		}
		l.conn = nil
	}
	l.setStateLocked(Closed)
}

// setStateLocked applies one transition and reports it upward.
func (l *Link) setStateLocked(state State) {
	l.state = state
	l.lastStateChangeAt = time.Now()
	l.emit(StateChanged{RemoteID: l.remoteID, State: state})
}

// emit delivers an event without blocking the transition in flight.
// A lost Closed would strand the link in the session's map until the
// next roster change, so that one event gets a bounded second attempt
// off the transition path.
func (l *Link) emit(event any) {
	select {
	case l.events <- event:
		return
	default:
	}
	if changed, ok := event.(StateChanged); ok && changed.State == Closed {
		go func() {
			select {
			case l.events <- event:
			case <-time.After(closedEmitTimeout):
				log.Printf("dropping closed event for %s: session not draining", l.remoteID)
			}
		}()
		return
	}
	log.Printf("dropping link event for %s: session not draining", l.remoteID)
}

// publishCandidates forwards locally gathered candidates one at a time so
// the store observes them in gathering order even across retries.
func (l *Link) publishCandidates() {
	for {
		select {
		case <-l.done:
			return
		case candidate := <-l.iceOut:
			if err := l.signal.PublishIce(l.remoteID, candidate); err != nil {
				log.Printf("error occurs in publishing candidate to %s %v", l.remoteID, err)
			}
		}
	}
}
