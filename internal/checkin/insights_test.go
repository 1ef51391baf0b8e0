package checkin

import (
	"testing"
)

func seedInsightEvent(t *testing.T, svc *Service) Event {
	t.Helper()
	event := svc.CreateEvent(EventSpec{Name: "Weekly", Date: "2025-01-01", OnTimeCutoff: "07:00"})
	checkIns := []CheckInRequest{
		{Name: "Alice", Type: "member", CurrentTime: "2025-01-01T06:45:00Z"},
		{Name: "Bob", Type: "member", CurrentTime: "2025-01-01T07:20:00Z"},
		{Name: "Gina", Type: "guest", Role: "VIP", CurrentTime: "2025-01-01T06:50:00Z"},
	}
	for _, req := range checkIns {
		if _, err := svc.RecordCheckIn(req); err != nil {
			t.Fatalf("check-in %s: %v", req.Name, err)
		}
	}
	return event
}

func TestGenerateInsightsInterest(t *testing.T) {
	svc, _ := newTestService("Alice", "Bob", "Carol")
	event := seedInsightEvent(t, svc)

	report := svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: AnalysisInterest})
	if report.EventID != event.ID || report.AnalysisType != AnalysisInterest {
		t.Fatalf("report header = %+v", report)
	}
	if len(report.Insights) != 2 || len(report.Recommendations) != 2 {
		t.Fatalf("got %d insights, %d recommendations", len(report.Insights), len(report.Recommendations))
	}

	// 4 records: Alice on-time, Bob late, Carol absent, Gina (VIP) on-time.
	points := report.Insights[0].DataPoints
	if points["total_registered"] != 4 || points["attended"] != 3 {
		t.Fatalf("interest data points = %#v", points)
	}
	roles := report.Insights[1].DataPoints
	if roles["vip_count"] != 1 || roles["guest_count"] != 0 {
		t.Fatalf("role data points = %#v", roles)
	}
}

func TestGenerateInsightsTargetAudience(t *testing.T) {
	svc, _ := newTestService("Alice", "Bob")
	event := seedInsightEvent(t, svc)

	report := svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: AnalysisTargetAudience})
	if len(report.Insights) != 1 {
		t.Fatalf("got %d insights", len(report.Insights))
	}
	points := report.Insights[0].DataPoints
	if points["high_engagement_count"] != 2 {
		t.Fatalf("expected 2 on-time participants, got %#v", points)
	}
}

func TestGenerateInsightsUnknownTypeIsEmpty(t *testing.T) {
	svc, _ := newTestService("Alice")
	event := seedInsightEvent(t, svc)

	report := svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: "astrology"})
	if report.Insights == nil || len(report.Insights) != 0 {
		t.Fatalf("insights = %#v", report.Insights)
	}
	if report.Recommendations == nil || len(report.Recommendations) != 0 {
		t.Fatalf("recommendations = %#v", report.Recommendations)
	}
}

func TestEventInsightsReturnsCachedReports(t *testing.T) {
	svc, _ := newTestService("Alice")
	event := seedInsightEvent(t, svc)

	if got := svc.EventInsights(event.ID); len(got) != 0 {
		t.Fatalf("expected empty cache, got %d", len(got))
	}
	svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: AnalysisInterest})
	svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: AnalysisRetention})

	got := svc.EventInsights(event.ID)
	if len(got) != 2 {
		t.Fatalf("cached %d reports, want 2", len(got))
	}
	if got[0].AnalysisType != AnalysisInterest || got[1].AnalysisType != AnalysisRetention {
		t.Fatalf("cache order = %q, %q", got[0].AnalysisType, got[1].AnalysisType)
	}
	if got := svc.EventInsights(event.ID + 100); len(got) != 0 {
		t.Fatalf("unknown event returned %d reports", len(got))
	}
}

func TestExportAnalysisData(t *testing.T) {
	svc, _ := newTestService("Alice", "Bob", "Carol")
	event := seedInsightEvent(t, svc)

	data, ok := svc.ExportAnalysisData(event.ID)
	if !ok {
		t.Fatal("export returned not-found for a live event")
	}
	if data.EventID != event.ID || data.EventName != "Weekly" || data.EventDate != "2025-01-01" {
		t.Fatalf("export header = %+v", data)
	}
	if len(data.AttendanceRecords) != 4 {
		t.Fatalf("exported %d records, want 4", len(data.AttendanceRecords))
	}
	want := AnalysisSummary{Total: 4, Attended: 3, OnTime: 2, Late: 1, Absent: 1, VIP: 1, Guests: 0}
	if data.Summary != want {
		t.Fatalf("summary = %+v, want %+v", data.Summary, want)
	}
}

func TestExportAnalysisDataUnknownEvent(t *testing.T) {
	svc, _ := newTestService("Alice")
	seedInsightEvent(t, svc)

	if _, ok := svc.ExportAnalysisData(42); ok {
		t.Fatal("expected not-found for unknown event id")
	}
}

func TestClearAllDropsInsights(t *testing.T) {
	svc, _ := newTestService("Alice")
	event := seedInsightEvent(t, svc)
	svc.GenerateInsights(InsightRequest{EventID: event.ID, AnalysisType: AnalysisInterest})

	svc.ClearAll()
	if got := svc.EventInsights(event.ID); len(got) != 0 {
		t.Fatalf("insights survived clear-all: %d", len(got))
	}
}
