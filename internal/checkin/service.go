package checkin

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Change event kinds pushed to connected observers.
const (
	EventNewCheckIn        = "new_checkin"
	EventRecordDeleted     = "record_deleted"
	EventRecordsCleared    = "records_cleared"
	EventCreated           = "event_created"
	EventAttendanceUpdated = "attendance_updated"
	EventAllCleared        = "all_cleared"
)

// Notifier fans a change event out to connected observers. Delivery is
// best-effort and must never block the check-in path.
type Notifier interface {
	Publish(eventType string, data any)
}

// Service owns the check-in flow: duplicate check, log append, ledger
// update, broadcast, in that order, so an observer that sees the broadcast
// sees consistent log and ledger state.
type Service struct {
	roster   Roster
	log      *Log
	registry *Registry
	ledger   *Ledger
	history  *History
	insights *insightCache
	notifier Notifier

	meetingName string
	now         func() time.Time
	logger      *logrus.Logger
}

// NewService wires the stores together. meetingName labels history rows for
// the recurring meeting.
func NewService(roster Roster, notifier Notifier, meetingName string, logger *logrus.Logger) *Service {
	return &Service{
		roster:      roster,
		log:         NewLog(),
		registry:    NewRegistry(),
		ledger:      NewLedger(),
		history:     NewHistory(),
		insights:    newInsightCache(),
		notifier:    notifier,
		meetingName: meetingName,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func resolveRole(participantType, requested string) string {
	if participantType == TypeMember {
		return RoleMember
	}
	up := strings.ToUpper(requested)
	if up == RoleVIP || up == RoleSpeaker {
		return up
	}
	return RoleGuest
}

// RecordCheckIn validates, dedupes, appends, classifies, and broadcasts one
// check-in. Members key the ledger by plain name; guests, VIPs, and speakers
// get a role-qualified composite key.
func (s *Service) RecordCheckIn(req CheckInRequest) (Entry, error) {
	participantType := strings.ToLower(req.Type)
	if participantType != TypeMember && participantType != TypeGuest {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	domain := req.Domain
	referrer := req.Referrer
	if participantType == TypeMember {
		if domain == "" {
			if profile, ok := s.roster.Lookup(req.Name); ok {
				domain = profile.Domain
			}
		}
	} else if guests, ok := s.roster.(GuestDirectory); ok {
		if profession, ref, found := guests.GuestProfile(req.Name); found {
			if domain == "" {
				domain = profession
			}
			if referrer == "" {
				referrer = ref
			}
		}
	}

	now := s.now()
	clientTime := ParseClientTime(req.CurrentTime, now)
	role := resolveRole(participantType, req.Role)

	entry := Entry{
		Name:       req.Name,
		Type:       participantType,
		Domain:     domain,
		Timestamp:  req.CurrentTime,
		ReceivedAt: now.Format(time.RFC3339),
		Role:       role,
		Tags:       req.Tags,
		Referrer:   referrer,
	}
	if err := s.log.Append(entry); err != nil {
		return Entry{}, err
	}

	key := req.Name
	if participantType != TypeMember {
		key = GuestKey(req.Name, role)
	}
	s.UpdateAttendance(key, req.Name, clientTime, role, req.Tags)

	s.notifier.Publish(EventNewCheckIn, entry)
	s.logger.WithFields(logrus.Fields{
		"name": req.Name,
		"type": participantType,
		"role": role,
	}).Info("check-in recorded")
	return entry, nil
}

// UpdateAttendance classifies against the current event's cutoff and upserts
// the ledger record for key. A missing current event or unseeded ledger is a
// no-op returning false, never a failure.
func (s *Service) UpdateAttendance(key, displayName string, checkIn time.Time, role string, tags []string) (AttendanceRecord, bool) {
	event, ok := s.registry.Current()
	if !ok {
		return AttendanceRecord{}, false
	}
	rec, ok := s.ledger.Update(event, key, displayName, checkIn, role, tags)
	if !ok {
		return AttendanceRecord{}, false
	}
	s.notifier.Publish(EventAttendanceUpdated, rec)
	return rec, true
}

// RecordScan verifies a QR payload against the roster and logs the visit in
// the long-term history. Returns the confirmation message.
func (s *Service) RecordScan(payload string) (string, error) {
	data, err := ParseQRPayload(payload)
	if err != nil {
		return "", err
	}

	var membershipID *string
	switch data.Type {
	case TypeMember:
		profile, ok := s.roster.Lookup(data.Name)
		if !ok || profile.MembershipID != data.MembershipID {
			return "", fmt.Errorf("%w: invalid member or membership id", ErrMalformed)
		}
		id := data.MembershipID
		membershipID = &id
	case TypeGuest:
		if _, ok := s.roster.Lookup(data.Referrer); !ok {
			return "", fmt.Errorf("%w: invalid referrer for guest", ErrMalformed)
		}
	}

	date := s.now().Format("2006-01-02")
	s.history.RecordVisit(date, s.meetingName, data.Name, membershipID, "Present")

	label := strings.ToUpper(data.Type[:1]) + data.Type[1:]
	return fmt.Sprintf("Attendance recorded successfully for %s (%s).", data.Name, label), nil
}

// Records returns the check-in log snapshot in insertion order.
func (s *Service) Records() []Entry {
	return s.log.List()
}

// DeleteRecord removes the log entry at index and broadcasts the deletion.
func (s *Service) DeleteRecord(index int) (Entry, error) {
	removed, err := s.log.RemoveAt(index)
	if err != nil {
		return Entry{}, err
	}
	s.notifier.Publish(EventRecordDeleted, removed)
	return removed, nil
}

// ClearRecords empties the check-in log.
func (s *Service) ClearRecords() {
	s.log.Clear()
	s.notifier.Publish(EventRecordsCleared, nil)
}

// CreateEvent registers a new current event and seeds its ledger with one
// absent record per roster member.
func (s *Service) CreateEvent(spec EventSpec) Event {
	event := s.registry.Create(spec, s.now())
	s.ledger.Seed(event.ID, s.roster.AllNames())
	s.notifier.Publish(EventCreated, event)
	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"date":     event.Date,
		"cutoff":   event.OnTimeCutoff,
	}).Info("event created")
	return event
}

// CurrentEvent returns the active event, if any.
func (s *Service) CurrentEvent() (Event, bool) {
	return s.registry.Current()
}

// Report recomputes the live roster view for the current event.
func (s *Service) Report() (ReportData, error) {
	event, ok := s.registry.Current()
	if !ok {
		return ReportData{}, fmt.Errorf("no current event: %w", ErrNotFound)
	}
	records, ok := s.ledger.Snapshot(event.ID)
	if !ok {
		return ReportData{}, fmt.Errorf("event %d has no attendance: %w", event.ID, ErrNotFound)
	}
	return BuildReport(event, records), nil
}

// SearchMemberHistory returns history for members matching a partial name.
func (s *Service) SearchMemberHistory(name string) []MemberAttendance {
	return s.history.SearchMember(name)
}

// HistoryByDate returns the scan roster recorded on a date.
func (s *Service) HistoryByDate(date string) []EventAttendance {
	return s.history.ByDate(date)
}

// ClearAll resets every store: events, ledger, log, history, insights. A subsequent
// report request returns not-found.
func (s *Service) ClearAll() {
	s.registry.ClearAll()
	s.ledger.ClearAll()
	s.log.Clear()
	s.history.Clear()
	s.insights.clear()
	s.notifier.Publish(EventAllCleared, nil)
	s.logger.Info("all events and attendance cleared")
}
