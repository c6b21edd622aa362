package ws

import "sync"

// Activity is a user's last self-reported UI state. It steers notification
// suppression only and never drives delivery.
type Activity struct {
	Page                 string
	ActiveConversationID uint
}

// ActivityTracker keeps per-user activity hints. Entries are overwritten on
// every report and never removed; a stale entry for an offline user is
// harmless because presence is always checked first.
type ActivityTracker struct {
	mu      sync.RWMutex
	entries map[uint]Activity
}

func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{entries: make(map[uint]Activity)}
}

func (t *ActivityTracker) SetPage(userID uint, page string) {
	if userID == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := t.entries[userID]
	entry.Page = page
	t.entries[userID] = entry
}

// SetActiveConversation records which conversation the user is viewing.
// Zero clears the marker (the user left the conversation view).
func (t *ActivityTracker) SetActiveConversation(userID, conversationID uint) {
	if userID == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := t.entries[userID]
	entry.ActiveConversationID = conversationID
	t.entries[userID] = entry
}

// Snapshot returns the last reported activity. Missing users yield the zero
// Activity, which reads as "not on any tracked page".
func (t *ActivityTracker) Snapshot(userID uint) Activity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[userID]
}
