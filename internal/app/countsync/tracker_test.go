package countsync

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeFetcher struct {
	counts  map[int64]int
	err     error
	lastIDs []int64
	calls   int
}

func (f *fakeFetcher) FetchCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	f.calls++
	f.lastIDs = append([]int64(nil), eventIDs...)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]int, len(eventIDs))
	for _, id := range eventIDs {
		out[id] = f.counts[id]
	}
	return out, nil
}

type fakeBroadcaster struct {
	eventIDs []int64
	counts   []int
}

func (b *fakeBroadcaster) BroadcastCount(eventID int64, count int) {
	b.eventIDs = append(b.eventIDs, eventID)
	b.counts = append(b.counts, count)
}

type fakeSubscriber struct {
	subscribed   map[int64]int
	unsubscribed map[int64]int
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		subscribed:   make(map[int64]int),
		unsubscribed: make(map[int64]int),
	}
}

func (s *fakeSubscriber) Subscribe(eventID int64)   { s.subscribed[eventID]++ }
func (s *fakeSubscriber) Unsubscribe(eventID int64) { s.unsubscribed[eventID]++ }

func TestTrackerEventCountChangedBroadcasts(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[int64]int{42: 7}}
	broadcaster := &fakeBroadcaster{}
	tracker := NewTracker(fetcher, broadcaster, zerolog.Nop())

	tracker.EventCountChanged(42)

	if len(broadcaster.eventIDs) != 1 || broadcaster.eventIDs[0] != 42 {
		t.Fatalf("expected broadcast for event 42, got %v", broadcaster.eventIDs)
	}
	if broadcaster.counts[0] != 7 {
		t.Fatalf("expected count 7, got %d", broadcaster.counts[0])
	}
}

func TestTrackerEventCountChangedSwallowsFetchErrors(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("db down")}
	broadcaster := &fakeBroadcaster{}
	tracker := NewTracker(fetcher, broadcaster, zerolog.Nop())

	tracker.EventCountChanged(42)

	if len(broadcaster.eventIDs) != 0 {
		t.Fatalf("no broadcast expected on fetch failure, got %v", broadcaster.eventIDs)
	}
}

func TestSessionSetVisibleCapsLiveSubscriptions(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[int64]int{}}
	sub := newFakeSubscriber()
	session := NewSession(fetcher, sub)

	ids := make([]int64, 0, DefaultMaxLive+3)
	for i := int64(1); i <= int64(DefaultMaxLive+3); i++ {
		ids = append(ids, i)
	}

	snapshot, err := session.SetVisible(context.Background(), ids)
	if err != nil {
		t.Fatalf("set visible: %v", err)
	}

	if got := session.LiveCount(); got != DefaultMaxLive {
		t.Fatalf("expected %d live subscriptions, got %d", DefaultMaxLive, got)
	}
	// The first ids in view order get the live slots
	for i := int64(1); i <= int64(DefaultMaxLive); i++ {
		if !session.IsLive(i) {
			t.Fatalf("expected event %d to be live", i)
		}
	}
	if session.IsLive(int64(DefaultMaxLive + 1)) {
		t.Fatalf("event past the cap must not hold a live subscription")
	}
	// Everyone gets a snapshot, live or not
	if len(snapshot) != DefaultMaxLive+3 {
		t.Fatalf("expected snapshot for all %d events, got %d", DefaultMaxLive+3, len(snapshot))
	}
}

func TestSessionSetVisibleDeduplicates(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[int64]int{}}
	sub := newFakeSubscriber()
	session := NewSession(fetcher, sub)

	if _, err := session.SetVisible(context.Background(), []int64{5, 5, 6, 5}); err != nil {
		t.Fatalf("set visible: %v", err)
	}

	if session.LiveCount() != 2 {
		t.Fatalf("expected 2 live subscriptions, got %d", session.LiveCount())
	}
	if sub.subscribed[5] != 1 {
		t.Fatalf("duplicate ids must subscribe once, got %d", sub.subscribed[5])
	}
	if len(fetcher.lastIDs) != 2 {
		t.Fatalf("fetch should see the deduplicated set, got %v", fetcher.lastIDs)
	}
}

func TestSessionSetVisibleTearsDownDroppedSubscriptions(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[int64]int{}}
	sub := newFakeSubscriber()
	session := NewSession(fetcher, sub)

	if _, err := session.SetVisible(context.Background(), []int64{1, 2, 3}); err != nil {
		t.Fatalf("set visible: %v", err)
	}
	if _, err := session.SetVisible(context.Background(), []int64{2, 4}); err != nil {
		t.Fatalf("set visible: %v", err)
	}

	if sub.unsubscribed[1] != 1 || sub.unsubscribed[3] != 1 {
		t.Fatalf("events out of view must be unsubscribed, got %v", sub.unsubscribed)
	}
	if sub.unsubscribed[2] != 0 {
		t.Fatalf("event still in view must stay subscribed")
	}
	if sub.subscribed[2] != 1 {
		t.Fatalf("kept event must not resubscribe, got %d", sub.subscribed[2])
	}
	if !session.IsLive(4) || session.IsLive(1) {
		t.Fatalf("live set not updated: %v", sub.subscribed)
	}
}

func TestSessionCloseUnsubscribesEverything(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[int64]int{}}
	sub := newFakeSubscriber()
	session := NewSession(fetcher, sub)

	if _, err := session.SetVisible(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("set visible: %v", err)
	}

	session.Close()
	session.Close() // idempotent

	if sub.unsubscribed[1] != 1 || sub.unsubscribed[2] != 1 {
		t.Fatalf("close must unsubscribe all live events once, got %v", sub.unsubscribed)
	}
	if session.LiveCount() != 0 {
		t.Fatalf("expected no live subscriptions after close")
	}

	if _, err := session.SetVisible(context.Background(), []int64{3}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled after close, got %v", err)
	}
}

func TestRepoFetcherSumsBothSources(t *testing.T) {
	participants := countsByIDFunc(func(ctx context.Context, ids []int64) (map[int64]int, error) {
		return map[int64]int{1: 3, 2: 1}, nil
	})
	manual := countsByIDFunc(func(ctx context.Context, ids []int64) (map[int64]int, error) {
		return map[int64]int{1: 2, 3: 4}, nil
	})

	fetcher := NewRepoFetcher(participantCounterFunc(participants), manualCounterFunc(manual))
	counts, err := fetcher.FetchCounts(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("fetch counts: %v", err)
	}

	want := map[int64]int{1: 5, 2: 1, 3: 4}
	for id, n := range want {
		if counts[id] != n {
			t.Fatalf("event %d: expected %d, got %d", id, n, counts[id])
		}
	}
}

type countsByIDFunc func(ctx context.Context, ids []int64) (map[int64]int, error)

type participantCounterFunc countsByIDFunc

func (f participantCounterFunc) CountByEventIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	return f(ctx, ids)
}

type manualCounterFunc countsByIDFunc

func (f manualCounterFunc) GetManualCounts(ctx context.Context, ids []int64) (map[int64]int, error) {
	return f(ctx, ids)
}
