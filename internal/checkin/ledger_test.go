package checkin

import (
	"testing"
	"time"
)

func dayAt(clock string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", "2025-01-01T"+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func seededLedger(t *testing.T, names ...string) (*Ledger, Event) {
	t.Helper()
	l := NewLedger()
	event := Event{ID: 1, Name: "Meeting", Date: "2025-01-01", OnTimeCutoff: "07:01"}
	l.Seed(event.ID, names)
	return l, event
}

func TestSeedCreatesAbsentRecordPerName(t *testing.T) {
	l, event := seededLedger(t, "Alice", "Bob", "Carol")
	records, ok := l.Snapshot(event.ID)
	if !ok {
		t.Fatal("expected snapshot for seeded event")
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status != StatusAbsent {
			t.Fatalf("%s: expected absent, got %s", rec.Name, rec.Status)
		}
		if rec.CheckInTime != "" {
			t.Fatalf("%s: absent record must have empty check-in time, got %q", rec.Name, rec.CheckInTime)
		}
	}
}

func TestCutoffBoundaryIsStrict(t *testing.T) {
	cases := []struct {
		clock string
		want  string
	}{
		{"06:55:00", StatusOnTime},
		{"07:00:59", StatusOnTime},
		{"07:01:00", StatusLate},
		{"07:01:01", StatusLate},
		{"07:10:00", StatusLate},
	}
	for _, tc := range cases {
		l, event := seededLedger(t, "Alice")
		rec, ok := l.Update(event, "Alice", "Alice", dayAt(tc.clock), RoleMember, nil)
		if !ok {
			t.Fatalf("%s: update failed", tc.clock)
		}
		if rec.Status != tc.want {
			t.Fatalf("check-in at %s: expected %s, got %s", tc.clock, tc.want, rec.Status)
		}
		if rec.CheckInTime != tc.clock {
			t.Fatalf("check-in at %s: recorded time %s", tc.clock, rec.CheckInTime)
		}
	}
}

func TestUpdateReplacesRecordForSameKey(t *testing.T) {
	l, event := seededLedger(t, "Alice")
	if _, ok := l.Update(event, "Alice", "Alice", dayAt("06:55:00"), RoleMember, nil); !ok {
		t.Fatal("first update failed")
	}
	if _, ok := l.Update(event, "Alice", "Alice", dayAt("07:30:00"), RoleMember, nil); !ok {
		t.Fatal("second update failed")
	}

	records, _ := l.Snapshot(event.ID)
	if len(records) != 1 {
		t.Fatalf("ledger must hold one record per key, got %d", len(records))
	}
	if records[0].Status != StatusLate || records[0].CheckInTime != "07:30:00" {
		t.Fatalf("expected replaced late record, got %+v", records[0])
	}
}

func TestUpdateUnknownEventIsNoOp(t *testing.T) {
	l := NewLedger()
	event := Event{ID: 42, OnTimeCutoff: "07:01"}
	if _, ok := l.Update(event, "Alice", "Alice", dayAt("06:55:00"), RoleMember, nil); ok {
		t.Fatal("update against unseeded event must report not found")
	}
}

func TestGuestAndMemberKeysStayIndependent(t *testing.T) {
	l, event := seededLedger(t, "Alice")
	if _, ok := l.Update(event, "Alice", "Alice", dayAt("06:50:00"), RoleMember, nil); !ok {
		t.Fatal("member update failed")
	}
	if _, ok := l.Update(event, GuestKey("Alice", RoleVIP), "Alice", dayAt("07:20:00"), RoleVIP, nil); !ok {
		t.Fatal("guest update failed")
	}

	records, _ := l.Snapshot(event.ID)
	if len(records) != 2 {
		t.Fatalf("expected independent member and guest records, got %d", len(records))
	}
}

func TestLedgerClearAll(t *testing.T) {
	l, event := seededLedger(t, "Alice")
	l.ClearAll()
	if _, ok := l.Snapshot(event.ID); ok {
		t.Fatal("expected no snapshot after clear")
	}
}
