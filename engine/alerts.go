package engine

import (
	"sync"
	"time"
)

// DefaultAlertCapacity matches the console's four notification slots.
const DefaultAlertCapacity = 4

// AlertKind distinguishes zone entry from zone exit events.
type AlertKind string

const (
	AlertEnter AlertKind = "ENTER"
	AlertExit  AlertKind = "EXIT"
)

// Alert is an immutable geofence event notification.
type Alert struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Kind      AlertKind `json:"kind"`
}

// AlertFeed is a bounded, most-recent-first event log. Retention is purely
// count-based; the timestamp is informational only.
type AlertFeed struct {
	mu       sync.RWMutex
	capacity int
	alerts   []Alert
	lastID   int64
}

// NewAlertFeed creates a feed keeping the capacity most recent alerts.
// Non-positive capacity falls back to DefaultAlertCapacity.
func NewAlertFeed(capacity int) *AlertFeed {
	if capacity <= 0 {
		capacity = DefaultAlertCapacity
	}
	return &AlertFeed{capacity: capacity}
}

// Push prepends an alert and truncates to capacity, evicting the oldest.
// A zero ID is assigned from a millisecond clock, bumped on collision so ids
// stay strictly monotonic; a zero timestamp is set to now. The stored alert
// is returned.
func (f *AlertFeed) Push(a Alert) Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		a.ID = time.Now().UnixMilli()
	}
	if a.ID <= f.lastID {
		a.ID = f.lastID + 1
	}
	f.lastID = a.ID
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	f.alerts = append([]Alert{a}, f.alerts...)
	if len(f.alerts) > f.capacity {
		f.alerts = f.alerts[:f.capacity]
	}
	return a
}

// Dismiss removes the alert with the given id regardless of its position.
func (f *AlertFeed) Dismiss(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alerts {
		if a.ID == id {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Alerts returns a copy, most recent first.
func (f *AlertFeed) Alerts() []Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

func (f *AlertFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.alerts)
}
