// Package session coordinates a full mesh of peer links for one room:
// it reacts to roster changes, routes signaling messages to the right
// link and aggregates remote media and chat into one outward-facing API.
package session

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"meshroom/broker/subscription"
	"meshroom/directory"
	"meshroom/media"
	"meshroom/metric"
	"meshroom/peer"
	"meshroom/signaling"
	"meshroom/store"
	"meshroom/types/message"
)

// Session owns every peer link of one participant in one room. All
// shared state is guarded by one mutex; the event loop is the only
// long-lived goroutine and applies roster, signaling and link events
// one at a time.
type Session struct {
	config    Config
	directory directory.Directory
	source    media.Source
	signal    *signaling.Channel
	metrics   *metric.Metrics

	mu           sync.Mutex
	joined       bool
	left         bool
	live         bool
	tracks       *media.Tracks
	links        map[string]*peer.Link
	states       map[string]peer.State
	remoteTracks map[string][]peer.RemoteTrack
	chatLog      []message.Chat
	seenChat     map[string]struct{}
	seenOrder    []string

	events    chan any
	rosterSub *subscription.Subscription
	offerSub  *subscription.Subscription
	answerSub *subscription.Subscription
	iceSub    *subscription.Subscription
	chatSub   *subscription.Subscription
	quit      chan struct{}
	loopDone  chan struct{}
}

// New creates a session for the configured room and member. Nothing is
// acquired or subscribed until Join.
func New(config Config, dir directory.Directory, db store.Store, source media.Source, metrics *metric.Metrics) *Session {
	config = config.withDefaults()
	return &Session{
		config:       config,
		directory:    dir,
		source:       source,
		signal:       signaling.New(config.Signaling, db, config.RoomID, config.MemberID),
		metrics:      metrics,
		links:        map[string]*peer.Link{},
		states:       map[string]peer.State{},
		remoteTracks: map[string][]peer.RemoteTrack{},
		seenChat:     map[string]struct{}{},
		events:       make(chan any, config.EventQueueSize),
	}
}

// Join acquires local media, registers membership, subscribes to the
// roster and every signaling stream, starts the event loop and opens
// links to the members already present. Any failure rolls the partial
// join back and is returned to the caller.
func (s *Session) Join() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.joined || s.left {
		return fmt.Errorf("session for room %s already used", s.config.RoomID)
	}

	tracks, err := s.source.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire local media: %w", err)
	}
	s.tracks = tracks

	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.tracks = nil
		s.source.Release()
	}

	if _, err := s.directory.FindRoomInfoByID(s.config.RoomID); err != nil {
		rollback()
		return fmt.Errorf("failed to find room %s: %w", s.config.RoomID, err)
	}

	// Subscriptions open before membership is announced: a remote that
	// reacts to our join instantly must not publish into a tail we are
	// not yet following.
	subs := []struct {
		open func() (*subscription.Subscription, error)
		dst  **subscription.Subscription
	}{
		{s.signal.SubscribeOffers, &s.offerSub},
		{s.signal.SubscribeAnswers, &s.answerSub},
		{s.signal.SubscribeIce, &s.iceSub},
		{s.signal.SubscribeChat, &s.chatSub},
	}
	for _, sub := range subs {
		opened, err := sub.open()
		if err != nil {
			s.signal.Close()
			rollback()
			return fmt.Errorf("failed to subscribe to signaling: %w", err)
		}
		*sub.dst = opened
	}
	if s.metrics != nil {
		for i := 0; i < 4; i++ {
			s.metrics.IncrementSubscriptions()
		}
	}
	undo = append(undo, func() {
		s.signal.Close()
		if s.metrics != nil {
			for i := 0; i < 4; i++ {
				s.metrics.DecrementSubscriptions()
			}
		}
	})

	s.rosterSub = s.directory.SubscribeRoster(s.config.RoomID)
	undo = append(undo, func() {
		if err := s.directory.UnsubscribeRoster(s.config.RoomID, s.rosterSub); err != nil {
			log.Printf("error occurs in unsubscribing roster %v", err)
		}
	})

	if _, err := s.directory.CreateMemberInfo(s.config.RoomID, s.config.MemberID, s.config.MemberName); err != nil {
		rollback()
		return fmt.Errorf("failed to register member %s: %w", s.config.MemberID, err)
	}

	s.joined = true
	s.live = true
	s.quit = make(chan struct{})
	s.loopDone = make(chan struct{})
	go s.loop()

	members, err := s.directory.FindMemberInfoByRoomID(s.config.RoomID)
	if err != nil {
		log.Printf("error occurs in listing members of %s %v", s.config.RoomID, err)
		return nil
	}
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	s.reconcileLocked(ids)
	return nil
}

// Leave tears the session down: the loop stops, every link closes,
// membership is removed and local media is released. Safe to call
// repeatedly and after a failed Join.
func (s *Session) Leave() error {
	s.mu.Lock()
	if !s.joined {
		s.mu.Unlock()
		return nil
	}
	s.joined = false
	s.left = true
	s.live = false
	quit, loopDone := s.quit, s.loopDone
	s.mu.Unlock()

	close(quit)
	<-loopDone

	s.mu.Lock()
	links := make([]*peer.Link, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	s.links = map[string]*peer.Link{}
	s.states = map[string]peer.State{}
	s.remoteTracks = map[string][]peer.RemoteTrack{}
	s.mu.Unlock()

	for _, link := range links {
		link.Close()
		if s.metrics != nil {
			s.metrics.DecrementPeerLinks()
		}
	}

	s.signal.Close()
	if s.metrics != nil {
		for i := 0; i < 4; i++ {
			s.metrics.DecrementSubscriptions()
		}
	}
	if err := s.directory.UnsubscribeRoster(s.config.RoomID, s.rosterSub); err != nil {
		log.Printf("error occurs in unsubscribing roster %v", err)
	}
	if err := s.directory.DeleteMemberInfoByID(s.config.RoomID, s.config.MemberID); err != nil {
		log.Printf("error occurs in removing member %s %v", s.config.MemberID, err)
	}
	s.source.Release()
	return nil
}

// ToggleAudio flips the local audio mute flag and returns the new
// enabled state.
func (s *Session) ToggleAudio() (bool, error) {
	return s.toggle(media.AudioKind)
}

// ToggleVideo flips the local video mute flag and returns the new
// enabled state.
func (s *Session) ToggleVideo() (bool, error) {
	return s.toggle(media.VideoKind)
}

func (s *Session) toggle(kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.joined || s.tracks == nil {
		return false, fmt.Errorf("no active session for room %s", s.config.RoomID)
	}
	track := s.tracks.Audio
	if kind == media.VideoKind {
		track = s.tracks.Video
	}
	enabled := !track.Enabled()
	track.SetEnabled(enabled)
	return enabled, nil
}

// SendChat appends the message to the local log, delivers it over every
// connected direct channel and persists the room broadcast. Recipients
// with no connected link rely on the broadcast alone.
func (s *Session) SendChat(text string) error {
	s.mu.Lock()
	if !s.joined {
		s.mu.Unlock()
		return fmt.Errorf("no active session for room %s", s.config.RoomID)
	}
	chat := message.Chat{
		ID:         shortuuid.New(),
		From:       s.config.MemberID,
		SenderName: s.config.MemberName,
		Text:       text,
		SentAt:     time.Now(),
	}
	s.appendChatLocked(chat)
	links := make([]*peer.Link, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	s.mu.Unlock()

	for _, link := range links {
		if err := link.SendChat(chat); err != nil {
			// The persisted broadcast below covers this recipient.
			continue
		}
	}
	if s.metrics != nil {
		s.metrics.CountChatMessage("sent")
	}
	if err := s.signal.PublishChat(chat); err != nil {
		return fmt.Errorf("failed to broadcast chat: %w", err)
	}
	return nil
}

// Messages returns the retained chat log, oldest first.
func (s *Session) Messages() []message.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]message.Chat, len(s.chatLog))
	copy(out, s.chatLog)
	return out
}

// PeerStates returns the last observed negotiation state per remote
// participant, including Closed entries not yet re-reconciled.
func (s *Session) PeerStates() map[string]peer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]peer.State, len(s.states))
	for id, state := range s.states {
		out[id] = state
	}
	return out
}

// RemoteTracks returns the media tracks received so far per remote
// participant.
func (s *Session) RemoteTracks() map[string][]peer.RemoteTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]peer.RemoteTrack, len(s.remoteTracks))
	for id, tracks := range s.remoteTracks {
		copied := make([]peer.RemoteTrack, len(tracks))
		copy(copied, tracks)
		out[id] = copied
	}
	return out
}

// LinkIDs returns the remote IDs with a live link, sorted.
func (s *Session) LinkIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.links))
	for id := range s.links {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// loop is the single consumer of every subscription and link event.
func (s *Session) loop() {
	defer close(s.loopDone)

	roster := s.rosterSub.Receive()
	offers := s.offerSub.Receive()
	answers := s.answerSub.Receive()
	ice := s.iceSub.Receive()
	chat := s.chatSub.Receive()

	for {
		select {
		case <-s.quit:
			return
		case msg, ok := <-roster:
			if !ok {
				roster = nil
				continue
			}
			s.handleRoster(msg)
		case msg, ok := <-offers:
			if !ok {
				offers = nil
				continue
			}
			s.handleOffer(msg)
		case msg, ok := <-answers:
			if !ok {
				answers = nil
				continue
			}
			s.handleAnswer(msg)
		case msg, ok := <-ice:
			if !ok {
				ice = nil
				continue
			}
			s.handleIce(msg)
		case msg, ok := <-chat:
			if !ok {
				chat = nil
				continue
			}
			s.handleChat(msg)
		case event := <-s.events:
			s.handleLinkEvent(event)
		}
	}
}

func (s *Session) handleRoster(msg any) {
	roster, ok := msg.(directory.Roster)
	if !ok {
		log.Printf("unexpected roster message type %T", msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	s.reconcileLocked(roster.MemberIDs)
}

// reconcileLocked diffs the live link set against the roster minus the
// local member. Running it again on an unchanged roster is a no-op.
func (s *Session) reconcileLocked(memberIDs []string) {
	want := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if id == s.config.MemberID {
			continue
		}
		want[id] = struct{}{}
	}

	for id, link := range s.links {
		if _, keep := want[id]; keep {
			continue
		}
		delete(s.links, id)
		delete(s.remoteTracks, id)
		link.Close()
		if s.metrics != nil {
			s.metrics.DecrementPeerLinks()
		}
	}

	for id := range want {
		if _, exists := s.links[id]; exists {
			continue
		}
		link := s.newLinkLocked(id)
		// The smaller ID offers; the other side waits for that offer.
		if s.config.MemberID < id {
			if err := link.Initiate(); err != nil {
				log.Printf("error occurs in initiating link to %s %v", id, err)
			} else if s.metrics != nil {
				s.metrics.CountSignalingMessage("offer", "sent")
			}
		}
	}
}

func (s *Session) newLinkLocked(remoteID string) *peer.Link {
	link := peer.New(s.config.Peer, s.config.MemberID, remoteID, s.signal, s.tracks, s.events)
	s.links[remoteID] = link
	s.states[remoteID] = peer.Idle
	if s.metrics != nil {
		s.metrics.IncrementPeerLinks()
	}
	return link
}

func (s *Session) handleOffer(msg any) {
	offer, ok := msg.(message.Offer)
	if !ok {
		log.Printf("unexpected offer message type %T", msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	if s.metrics != nil {
		s.metrics.CountSignalingMessage("offer", "received")
	}
	link, exists := s.links[offer.From]
	if !exists {
		// The roster snapshot may still be in flight; the offer proves
		// membership, so open the answering side now.
		link = s.newLinkLocked(offer.From)
	}
	if link.State() == peer.OfferSent && s.metrics != nil {
		s.metrics.CountGlareResolution()
	}
	if err := link.HandleOffer(offer); err != nil {
		log.Printf("error occurs in handling offer from %s %v", offer.From, err)
	}
}

func (s *Session) handleAnswer(msg any) {
	answer, ok := msg.(message.Answer)
	if !ok {
		log.Printf("unexpected answer message type %T", msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	if s.metrics != nil {
		s.metrics.CountSignalingMessage("answer", "received")
	}
	link, exists := s.links[answer.From]
	if !exists {
		log.Printf("discarding answer from %s: no link", answer.From)
		return
	}
	if err := link.HandleAnswer(answer); err != nil {
		log.Printf("error occurs in handling answer from %s %v", answer.From, err)
	}
}

func (s *Session) handleIce(msg any) {
	ice, ok := msg.(message.Ice)
	if !ok {
		log.Printf("unexpected candidate message type %T", msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	if s.metrics != nil {
		s.metrics.CountSignalingMessage("candidate", "received")
	}
	link, exists := s.links[ice.From]
	if !exists {
		log.Printf("discarding candidate from %s: no link", ice.From)
		return
	}
	if err := link.HandleCandidate(ice); err != nil {
		log.Printf("error occurs in handling candidate from %s %v", ice.From, err)
	}
}

func (s *Session) handleChat(msg any) {
	chat, ok := msg.(message.Chat)
	if !ok {
		log.Printf("unexpected chat message type %T", msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	// Our own broadcast comes back on the unfiltered chat stream; the
	// optimistic append at send time already logged it.
	if chat.From == s.config.MemberID {
		return
	}
	s.appendChatLocked(chat)
}

func (s *Session) handleLinkEvent(event any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	switch e := event.(type) {
	case peer.StateChanged:
		s.states[e.RemoteID] = e.State
		if e.State != peer.Closed {
			return
		}
		if _, exists := s.links[e.RemoteID]; exists {
			delete(s.links, e.RemoteID)
			delete(s.remoteTracks, e.RemoteID)
			if s.metrics != nil {
				s.metrics.DecrementPeerLinks()
			}
		}
	case peer.TrackReceived:
		s.remoteTracks[e.RemoteID] = append(s.remoteTracks[e.RemoteID], e.Track)
	case peer.ChatReceived:
		s.appendChatLocked(e.Chat)
	default:
		log.Printf("unexpected link event type %T", event)
	}
}

// appendChatLocked appends one chat message, deduplicating the direct
// and broadcast copies of the same message by ID and trimming the log to
// the configured history size. The dedupe cache is bounded on its own
// FIFO, sized so an ID outlives any late echo of its message.
func (s *Session) appendChatLocked(chat message.Chat) {
	if _, duplicate := s.seenChat[chat.ID]; duplicate {
		return
	}
	s.seenChat[chat.ID] = struct{}{}
	s.seenOrder = append(s.seenOrder, chat.ID)
	if len(s.seenOrder) > s.config.SeenChatLimit {
		evicted := s.seenOrder[:len(s.seenOrder)-s.config.SeenChatLimit]
		for _, old := range evicted {
			delete(s.seenChat, old)
		}
		kept := s.seenOrder[len(s.seenOrder)-s.config.SeenChatLimit:]
		s.seenOrder = make([]string, len(kept))
		copy(s.seenOrder, kept)
	}

	if chat.From != s.config.MemberID && s.metrics != nil {
		s.metrics.CountChatMessage("received")
	}
	s.chatLog = append(s.chatLog, chat)
	if len(s.chatLog) > s.config.MaxChatHistory {
		trimmed := s.chatLog[len(s.chatLog)-s.config.MaxChatHistory:]
		s.chatLog = make([]message.Chat, len(trimmed))
		copy(s.chatLog, trimmed)
	}
}
