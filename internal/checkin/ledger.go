package checkin

import (
	"sync"
	"time"
)

// Ledger owns the per-event attendance state: eventID -> participant key ->
// record. Records transition absent -> on-time|late; a re-check-in for the
// same key replaces the record outright (duplicates are rejected upstream).
type Ledger struct {
	mu     sync.RWMutex
	events map[int]*recordMap
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{events: make(map[int]*recordMap)}
}

// Seed creates the attendance map for an event with one absent record per
// roster name. Runs once per event, right after the registry creates it.
func (l *Ledger) Seed(eventID int, rosterNames []string) {
	rm := newRecordMap()
	for _, name := range rosterNames {
		rm.Set(name, AttendanceRecord{
			Key:    name,
			Name:   name,
			Status: StatusAbsent,
			Role:   RoleMember,
		})
	}
	l.mu.Lock()
	l.events[eventID] = rm
	l.mu.Unlock()
}

// Update classifies a check-in against the event's cutoff and upserts the
// record for key. Returns false when the event has no seeded map.
func (l *Ledger) Update(event Event, key, displayName string, checkIn time.Time, role string, tags []string) (AttendanceRecord, bool) {
	l.mu.RLock()
	rm, ok := l.events[event.ID]
	l.mu.RUnlock()
	if !ok {
		return AttendanceRecord{}, false
	}

	status, err := Classify(checkIn, event.OnTimeCutoff)
	if err != nil {
		// Unparseable cutoff never rejects a check-in; the arrival is
		// still recorded, just not on time.
		status = StatusLate
	}
	rec := AttendanceRecord{
		Key:         key,
		Name:        displayName,
		Status:      status,
		CheckInTime: checkIn.Format("15:04:05"),
		Role:        role,
		Tags:        tags,
	}
	rm.Set(key, rec)
	return rec, true
}

// Snapshot returns a copy of every record for the event.
func (l *Ledger) Snapshot(eventID int) ([]AttendanceRecord, bool) {
	l.mu.RLock()
	rm, ok := l.events[eventID]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return rm.Snapshot(), true
}

// Size reports the record count for the event, zero when unseeded.
func (l *Ledger) Size(eventID int) int {
	l.mu.RLock()
	rm, ok := l.events[eventID]
	l.mu.RUnlock()
	if !ok {
		return 0
	}
	return rm.Len()
}

// ClearAll drops every event's attendance map.
func (l *Ledger) ClearAll() {
	l.mu.Lock()
	l.events = make(map[int]*recordMap)
	l.mu.Unlock()
}
