package countsync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxLive caps how many events one connection may hold live count
// subscriptions for. Events beyond the cap still get counts, but only as
// one-shot snapshots refreshed on the next visibility update.
const DefaultMaxLive = 8

// CountFetcher resolves the current unified roster count for a batch of
// events in one shot.
type CountFetcher interface {
	FetchCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// Broadcaster pushes a fresh count to every live subscriber of an event
type Broadcaster interface {
	BroadcastCount(eventID int64, count int)
}

// Subscriber is one connection's handle on the live feed. Subscribe and
// Unsubscribe bind the connection to an event's broadcast channel.
type Subscriber interface {
	Subscribe(eventID int64)
	Unsubscribe(eventID int64)
}

// Tracker is the server-side hub of the live count feed. Participation writes
// call EventCountChanged; the tracker re-reads the unified count and fans it
// out to whoever is watching that event.
type Tracker struct {
	fetcher     CountFetcher
	broadcaster Broadcaster
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewTracker creates a Tracker
func NewTracker(fetcher CountFetcher, broadcaster Broadcaster, logger zerolog.Logger) *Tracker {
	return &Tracker{
		fetcher:     fetcher,
		broadcaster: broadcaster,
		timeout:     5 * time.Second,
		logger:      logger,
	}
}

// EventCountChanged re-reads the event's unified count and broadcasts it.
// Failures are logged and dropped; the next write or visibility refresh
// self-heals the displayed value.
func (t *Tracker) EventCountChanged(eventID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	counts, err := t.fetcher.FetchCounts(ctx, []int64{eventID})
	if err != nil {
		t.logger.Error().Err(err).Int64("eventId", eventID).Msg("Failed to refresh event count")
		return
	}
	t.broadcaster.BroadcastCount(eventID, counts[eventID])
}

// Session tracks which events a single connection is watching. The first
// DefaultMaxLive visible events get live subscriptions; the rest only receive
// the snapshot returned by SetVisible. Changing the visible set tears down
// subscriptions that fell out of view before adding new ones.
type Session struct {
	mu         sync.Mutex
	fetcher    CountFetcher
	subscriber Subscriber
	maxLive    int
	live       map[int64]struct{}
	closed     bool
}

// NewSession creates a Session bound to one connection's subscriber
func NewSession(fetcher CountFetcher, subscriber Subscriber) *Session {
	return &Session{
		fetcher:    fetcher,
		subscriber: subscriber,
		maxLive:    DefaultMaxLive,
		live:       make(map[int64]struct{}),
	}
}

// SetVisible replaces the session's watched set with the given event ids, in
// the order the client sees them. It returns a fresh count snapshot for every
// id, live or not.
func (s *Session) SetVisible(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, context.Canceled
	}

	seen := make(map[int64]struct{}, len(eventIDs))
	unique := make([]int64, 0, len(eventIDs))
	for _, id := range eventIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	nextLive := make(map[int64]struct{}, s.maxLive)
	for _, id := range unique {
		if len(nextLive) == s.maxLive {
			break
		}
		nextLive[id] = struct{}{}
	}

	for id := range s.live {
		if _, keep := nextLive[id]; !keep {
			s.subscriber.Unsubscribe(id)
		}
	}
	for id := range nextLive {
		if _, had := s.live[id]; !had {
			s.subscriber.Subscribe(id)
		}
	}
	s.live = nextLive

	return s.fetcher.FetchCounts(ctx, unique)
}

// LiveCount reports how many live subscriptions the session currently holds
func (s *Session) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// IsLive reports whether an event currently has a live subscription
func (s *Session) IsLive(eventID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[eventID]
	return ok
}

// Close tears down every live subscription. Further SetVisible calls fail.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id := range s.live {
		s.subscriber.Unsubscribe(id)
	}
	s.live = make(map[int64]struct{})
}
