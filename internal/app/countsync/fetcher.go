package countsync

import "context"

// participantCounter is the slice of the participant repository the fetcher
// needs: self-registered counts batched by event id.
type participantCounter interface {
	CountByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// manualCounter is the slice of the event repository the fetcher needs:
// embedded manual entry counts batched by event id.
type manualCounter interface {
	GetManualCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// RepoFetcher computes unified counts by summing the two participant sources.
// Events missing from both maps report zero.
type RepoFetcher struct {
	participants participantCounter
	manual       manualCounter
}

// NewRepoFetcher creates a RepoFetcher
func NewRepoFetcher(participants participantCounter, manual manualCounter) *RepoFetcher {
	return &RepoFetcher{participants: participants, manual: manual}
}

// FetchCounts implements CountFetcher
func (f *RepoFetcher) FetchCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	selfCounts, err := f.participants.CountByEventIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	manualCounts, err := f.manual.GetManualCounts(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(eventIDs))
	for _, id := range eventIDs {
		counts[id] = selfCounts[id] + manualCounts[id]
	}
	return counts, nil
}
