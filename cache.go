package hirewise

import (
	"context"
	"sync"
)

// HistoryFetcher loads the server-authoritative message history for a
// conversation. *APIClient implements it.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, conversationID int64) ([]Message, error)
}

// HistoryCache owns the canonical client-side message list per
// conversation. Entries are fetched once per selection and replaced
// wholesale on Refresh — the cache never merges or deduplicates, so after
// every refetch settles the cached list equals the server's history.
type HistoryCache struct {
	fetcher HistoryFetcher

	mu      sync.RWMutex
	entries map[int64][]Message
}

// NewHistoryCache creates an empty cache over the given fetcher.
func NewHistoryCache(fetcher HistoryFetcher) *HistoryCache {
	return &HistoryCache{
		fetcher: fetcher,
		entries: make(map[int64][]Message),
	}
}

// Load returns the history for a conversation, fetching it on first use.
// It is not re-polled on a timer; refreshes happen only through Refresh.
func (h *HistoryCache) Load(ctx context.Context, conversationID int64) ([]Message, error) {
	h.mu.RLock()
	msgs, ok := h.entries[conversationID]
	h.mu.RUnlock()
	if ok {
		return msgs, nil
	}
	return h.Refresh(ctx, conversationID)
}

// Refresh invalidates the entry and refetches it from the server,
// replacing the cached list wholesale.
func (h *HistoryCache) Refresh(ctx context.Context, conversationID int64) ([]Message, error) {
	msgs, err := h.fetcher.FetchHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.entries[conversationID] = msgs
	h.mu.Unlock()
	return msgs, nil
}

// Messages returns the cached list without fetching.
func (h *HistoryCache) Messages(conversationID int64) ([]Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs, ok := h.entries[conversationID]
	return msgs, ok
}

// Invalidate drops the entry so the next Load refetches.
func (h *HistoryCache) Invalidate(conversationID int64) {
	h.mu.Lock()
	delete(h.entries, conversationID)
	h.mu.Unlock()
}

// Reset drops every entry. Called on sign-out together with AuthStore.Clear.
func (h *HistoryCache) Reset() {
	h.mu.Lock()
	h.entries = make(map[int64][]Message)
	h.mu.Unlock()
}
