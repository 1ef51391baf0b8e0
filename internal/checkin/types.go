package checkin

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Participant types accepted at check-in.
const (
	TypeMember = "member"
	TypeGuest  = "guest"
)

// Roles assigned to attendance records.
const (
	RoleMember  = "MEMBER"
	RoleGuest   = "GUEST"
	RoleVIP     = "VIP"
	RoleSpeaker = "SPEAKER"
)

// Attendance statuses.
const (
	StatusAbsent = "absent"
	StatusOnTime = "on-time"
	StatusLate   = "late"
)

// RosterProfile is one pre-registered participant from the roster file.
// Immutable once loaded.
type RosterProfile struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Type         string `json:"type"`
	MembershipID string `json:"membershipId,omitempty"`
	Referrer     string `json:"referrer,omitempty"`
}

// Roster is the bootstrap name->profile lookup loaded once at startup.
type Roster interface {
	Lookup(name string) (RosterProfile, bool)
	AllNames() []string
}

// GuestDirectory is implemented by rosters that also carry pre-registered
// guest profiles; check-ins for known guests are enriched from it.
type GuestDirectory interface {
	GuestProfile(name string) (profession, referrer string, ok bool)
}

// Entry is a raw check-in row in the append-only log.
type Entry struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Domain     string   `json:"domain"`
	Timestamp  string   `json:"timestamp"`
	ReceivedAt string   `json:"receivedAt"`
	Role       string   `json:"role"`
	Tags       []string `json:"tags"`
	Referrer   string   `json:"referrer,omitempty"`
}

// Event is immutable once created. Times are wall-clock strings as supplied
// by the organizer (date "2006-01-02", times "15:04" or "15:04:05").
type Event struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	Date                  string `json:"date"`
	StartTime             string `json:"startTime"`
	EndTime               string `json:"endTime"`
	RegistrationStartTime string `json:"registrationStartTime"`
	OnTimeCutoff          string `json:"onTimeCutoff"`
	CreatedAt             string `json:"createdAt"`
}

// EventSpec is the organizer-supplied portion of a new event.
type EventSpec struct {
	Name                  string `json:"name" binding:"required"`
	Date                  string `json:"date" binding:"required"`
	StartTime             string `json:"startTime"`
	EndTime               string `json:"endTime"`
	RegistrationStartTime string `json:"registrationStartTime"`
	OnTimeCutoff          string `json:"onTimeCutoff" binding:"required"`
}

// AttendanceRecord tracks one participant key within one event.
// CheckInTime is empty while the participant is absent.
type AttendanceRecord struct {
	Key         string   `json:"-"`
	Name        string   `json:"memberName"`
	Status      string   `json:"status"`
	CheckInTime string   `json:"checkInTime,omitempty"`
	Role        string   `json:"role"`
	Tags        []string `json:"tags"`
}

// ReportStats is recomputed on every report request, never stored.
type ReportStats struct {
	TotalAttendees  int `json:"totalAttendees"`
	OnTimeCount     int `json:"onTimeCount"`
	LateCount       int `json:"lateCount"`
	AbsentCount     int `json:"absentCount"`
	GuestCount      int `json:"guestCount"`
	VIPCount        int `json:"vipCount"`
	VIPArrivedCount int `json:"vipArrivedCount"`
	SpeakerCount    int `json:"speakerCount"`
}

// ReportData is the live roster view for the current event.
type ReportData struct {
	EventID      int                `json:"eventId"`
	EventName    string             `json:"eventName"`
	EventDate    string             `json:"eventDate"`
	OnTimeCutoff string             `json:"onTimeCutoff"`
	Attendees    []AttendanceRecord `json:"attendees"`
	Absentees    []AttendanceRecord `json:"absentees"`
	Stats        ReportStats        `json:"stats"`
}

// CheckInRequest is the transport-level check-in submission.
type CheckInRequest struct {
	Name        string   `json:"name" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	CurrentTime string   `json:"currentTime" binding:"required"`
	Domain      string   `json:"domain"`
	Role        string   `json:"role"`
	Tags        []string `json:"tags"`
	Referrer    string   `json:"referrer"`
}

// MemberAttendance is one row of a member's attendance history.
type MemberAttendance struct {
	EventName string `json:"eventName"`
	EventDate string `json:"eventDate"`
	Status    string `json:"status"`
}

// EventAttendance is one row of a dated event's attendance roster.
type EventAttendance struct {
	MemberName   string  `json:"memberName"`
	MembershipID *string `json:"membershipId"`
	Status       string  `json:"status"`
}

// QRData is the decoded QR payload, a tagged union on the "type" field.
type QRData struct {
	Type         string
	Name         string
	Time         string
	MembershipID string // member variant
	Domain       string // guest variant
	Referrer     string // guest variant
}

type memberQR struct {
	Name         string `json:"name"`
	Time         string `json:"time"`
	MembershipID string `json:"membershipId"`
}

type guestQR struct {
	Name     string `json:"name"`
	Time     string `json:"time"`
	Domain   string `json:"domain"`
	Referrer string `json:"referrer"`
}

// ParseQRPayload decodes a QR payload, dispatching on the explicit
// discriminator rather than shape-sniffing the fields.
func ParseQRPayload(payload string) (QRData, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return QRData{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch strings.ToLower(envelope.Type) {
	case TypeMember:
		var m memberQR
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return QRData{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.Name == "" || m.MembershipID == "" {
			return QRData{}, fmt.Errorf("%w: member payload missing name or membership id", ErrMalformed)
		}
		return QRData{Type: TypeMember, Name: m.Name, Time: m.Time, MembershipID: m.MembershipID}, nil
	case TypeGuest:
		var g guestQR
		if err := json.Unmarshal([]byte(payload), &g); err != nil {
			return QRData{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if g.Name == "" {
			return QRData{}, fmt.Errorf("%w: guest payload missing name", ErrMalformed)
		}
		return QRData{Type: TypeGuest, Name: g.Name, Time: g.Time, Domain: g.Domain, Referrer: g.Referrer}, nil
	default:
		return QRData{}, fmt.Errorf("%w: unknown payload type %q", ErrMalformed, envelope.Type)
	}
}

// GuestKey builds the composite ledger key for non-member participants, so a
// guest and a member sharing a display name stay independent.
func GuestKey(name, role string) string {
	return "guest_" + name + "_" + role
}

// ParseClientTime parses the client-declared check-in timestamp. Accepts ISO
// timestamps with or without zone; falls back to the supplied server time.
func ParseClientTime(raw string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	trimmed := strings.TrimSuffix(raw, "Z")
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return fallback
}

// ParseTimeOfDay parses "15:04" or "15:04:05" clock strings.
func ParseTimeOfDay(raw string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q", raw)
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// Classify compares a check-in moment against the cutoff using time-of-day
// only; the date part is discarded. Equal-to-cutoff counts as late. Callers
// must supply times already normalized to the event's local day.
func Classify(checkIn time.Time, onTimeCutoff string) (string, error) {
	cutoff, err := ParseTimeOfDay(onTimeCutoff)
	if err != nil {
		return "", err
	}
	if secondsOfDay(checkIn) < secondsOfDay(cutoff) {
		return StatusOnTime, nil
	}
	return StatusLate, nil
}
