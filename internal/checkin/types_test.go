package checkin

import (
	"errors"
	"testing"
	"time"
)

func TestParseClientTimeFormats(t *testing.T) {
	fallback := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		raw      string
		wantHour int
		wantMin  int
	}{
		{"2025-12-03T13:09:09Z", 13, 9},
		{"2025-12-03T13:09:09.000Z", 13, 9},
		{"2025-12-03T13:09:09+08:00", 13, 9},
		{"2025-12-03T13:09:09", 13, 9},
		{"garbage", 8, 0}, // falls back to server time
	}
	for _, tc := range cases {
		got := ParseClientTime(tc.raw, fallback)
		if got.Hour() != tc.wantHour || got.Minute() != tc.wantMin {
			t.Fatalf("%q: got %02d:%02d, want %02d:%02d",
				tc.raw, got.Hour(), got.Minute(), tc.wantHour, tc.wantMin)
		}
	}
}

func TestClassifyUsesTimeOfDayOnly(t *testing.T) {
	// Dates differ wildly; only the clock matters.
	early := time.Date(1999, 6, 15, 6, 59, 0, 0, time.UTC)
	status, err := Classify(early, "07:01")
	if err != nil || status != StatusOnTime {
		t.Fatalf("expected on-time, got %s err=%v", status, err)
	}
	late := time.Date(2030, 2, 1, 7, 1, 0, 0, time.UTC)
	status, err = Classify(late, "07:01")
	if err != nil || status != StatusLate {
		t.Fatalf("expected late, got %s err=%v", status, err)
	}
}

func TestClassifyAcceptsSecondsInCutoff(t *testing.T) {
	at := time.Date(2025, 1, 1, 7, 0, 30, 0, time.UTC)
	status, err := Classify(at, "07:00:31")
	if err != nil || status != StatusOnTime {
		t.Fatalf("expected on-time against 07:00:31, got %s err=%v", status, err)
	}
}

func TestClassifyBadCutoff(t *testing.T) {
	if _, err := Classify(time.Now(), "25:99"); err == nil {
		t.Fatal("expected error for invalid cutoff")
	}
}

func TestParseQRPayloadMember(t *testing.T) {
	data, err := ParseQRPayload(`{"type":"member","name":"Alice","membershipId":"M-1","time":"2025-01-01T06:55:00"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if data.Type != TypeMember || data.Name != "Alice" || data.MembershipID != "M-1" {
		t.Fatalf("unexpected payload %+v", data)
	}
}

func TestParseQRPayloadGuest(t *testing.T) {
	data, err := ParseQRPayload(`{"type":"guest","name":"Gina","domain":"Law","referrer":"Alice"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if data.Type != TypeGuest || data.Referrer != "Alice" || data.Domain != "Law" {
		t.Fatalf("unexpected payload %+v", data)
	}
}

func TestParseQRPayloadRejectsBadInput(t *testing.T) {
	cases := []string{
		"{",
		`{"type":"member","name":"Alice"}`, // missing membership id
		`{"type":"guest"}`,                 // missing name
		`{"type":"droid","name":"R2"}`,
	}
	for _, payload := range cases {
		if _, err := ParseQRPayload(payload); !errors.Is(err, ErrMalformed) {
			t.Fatalf("payload %q: expected ErrMalformed, got %v", payload, err)
		}
	}
}

func TestGuestKeyDisambiguates(t *testing.T) {
	if GuestKey("Alice", RoleVIP) == GuestKey("Alice", RoleGuest) {
		t.Fatal("role must be part of the guest key")
	}
	if GuestKey("Alice", RoleVIP) == "Alice" {
		t.Fatal("guest key must differ from the plain member key")
	}
}
