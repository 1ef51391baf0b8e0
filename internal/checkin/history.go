package checkin

import (
	"strings"
	"sync"
)

// History keeps the long-term attendance trail across events: a per-date
// roster of scans and a per-member list of meetings attended. Separate from
// the event-scoped ledger, which only covers the current event.
type History struct {
	mu       sync.RWMutex
	byDate   map[string][]EventAttendance
	byMember map[string][]MemberAttendance
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{
		byDate:   make(map[string][]EventAttendance),
		byMember: make(map[string][]MemberAttendance),
	}
}

// RecordVisit logs a verified scan under both indexes.
func (h *History) RecordVisit(date, eventName, memberName string, membershipID *string, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byDate[date] = append(h.byDate[date], EventAttendance{
		MemberName:   memberName,
		MembershipID: membershipID,
		Status:       status,
	})
	key := strings.ToLower(memberName)
	h.byMember[key] = append(h.byMember[key], MemberAttendance{
		EventName: eventName,
		EventDate: date,
		Status:    status,
	})
}

// SearchMember returns history rows for members whose lowercased name
// contains the search term.
func (h *History) SearchMember(name string) []MemberAttendance {
	term := strings.ToLower(name)
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []MemberAttendance
	for key, rows := range h.byMember {
		if strings.Contains(key, term) {
			out = append(out, rows...)
		}
	}
	return out
}

// ByDate returns the roster recorded for a given date.
func (h *History) ByDate(date string) []EventAttendance {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rows := h.byDate[date]
	out := make([]EventAttendance, len(rows))
	copy(out, rows)
	return out
}

// Clear drops all history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byDate = make(map[string][]EventAttendance)
	h.byMember = make(map[string][]MemberAttendance)
}
