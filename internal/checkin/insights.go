package checkin

import (
	"fmt"
	"sync"
	"time"
)

// Analysis types accepted by insight generation.
const (
	AnalysisInterest       = "interest"
	AnalysisRetention      = "retention"
	AnalysisTargetAudience = "target_audience"
)

// InsightRequest asks for one analysis pass over an event's attendance.
type InsightRequest struct {
	EventID      int    `json:"eventId" binding:"required"`
	AnalysisType string `json:"analysisType" binding:"required"`
}

// InsightItem is one finding with its supporting numbers.
type InsightItem struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Confidence  float64        `json:"confidence"`
	DataPoints  map[string]any `json:"dataPoints"`
}

// InsightReport is one generated analysis, kept per event until clear-all.
type InsightReport struct {
	EventID         int           `json:"eventId"`
	AnalysisType    string        `json:"analysisType"`
	GeneratedAt     string        `json:"generatedAt"`
	Insights        []InsightItem `json:"insights"`
	Recommendations []string      `json:"recommendations"`
}

// AnalysisRecord is one attendance row in the machine-readable export.
type AnalysisRecord struct {
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	CheckInTime string   `json:"checkInTime"`
	Role        string   `json:"role"`
	Tags        []string `json:"tags"`
}

// AnalysisSummary totals the exported rows by status and role.
type AnalysisSummary struct {
	Total    int `json:"total"`
	Attended int `json:"attended"`
	OnTime   int `json:"onTime"`
	Late     int `json:"late"`
	Absent   int `json:"absent"`
	VIP      int `json:"vip"`
	Guests   int `json:"guests"`
}

// AnalysisExport is the machine-readable dump of one event's attendance,
// intended for downstream processing outside this service.
type AnalysisExport struct {
	EventID           int              `json:"eventId"`
	EventName         string           `json:"eventName"`
	EventDate         string           `json:"eventDate"`
	ExportedAt        string           `json:"exportedAt"`
	AttendanceRecords []AnalysisRecord `json:"attendanceRecords"`
	Summary           AnalysisSummary  `json:"summary"`
}

// insightCache keeps generated reports per event id.
type insightCache struct {
	mu      sync.RWMutex
	byEvent map[int][]InsightReport
}

func newInsightCache() *insightCache {
	return &insightCache{byEvent: make(map[int][]InsightReport)}
}

func (c *insightCache) add(report InsightReport) {
	c.mu.Lock()
	c.byEvent[report.EventID] = append(c.byEvent[report.EventID], report)
	c.mu.Unlock()
}

func (c *insightCache) list(eventID int) []InsightReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]InsightReport, len(c.byEvent[eventID]))
	copy(out, c.byEvent[eventID])
	return out
}

func (c *insightCache) clear() {
	c.mu.Lock()
	c.byEvent = make(map[int][]InsightReport)
	c.mu.Unlock()
}

// GenerateInsights runs the requested local analysis over the event's ledger
// and caches the report. An event with no attendance yields an empty insight
// list, not an error.
func (s *Service) GenerateInsights(req InsightRequest) InsightReport {
	records, _ := s.ledger.Snapshot(req.EventID)

	var insights []InsightItem
	var recommendations []string
	switch req.AnalysisType {
	case AnalysisInterest:
		insights = interestInsights(records)
		recommendations = []string{
			"Attendance data suggests the next session should focus on high-interaction topics",
			"VIP guests lean toward professional deep-dive sessions",
		}
	case AnalysisRetention:
		insights = retentionInsights(records)
		recommendations = []string{
			"Members above 80% attendance are the core promotion audience",
			"Follow up with members who have missed consecutive sessions",
		}
	case AnalysisTargetAudience:
		insights = targetAudienceInsights(records)
		recommendations = []string{
			"High-potential returning guests are flagged; invite them first",
			"New-visitor conversion is strongest for domain-sharing sessions",
		}
	}

	if insights == nil {
		insights = []InsightItem{}
	}
	if recommendations == nil {
		recommendations = []string{}
	}
	report := InsightReport{
		EventID:         req.EventID,
		AnalysisType:    req.AnalysisType,
		GeneratedAt:     s.now().Format(time.RFC3339),
		Insights:        insights,
		Recommendations: recommendations,
	}
	s.insights.add(report)
	return report
}

func interestInsights(records []AttendanceRecord) []InsightItem {
	if records == nil {
		return nil
	}
	total := len(records)
	attended := 0
	var vips, guests, speakers int
	for _, rec := range records {
		if rec.Status != StatusAbsent {
			attended++
		}
		switch rec.Role {
		case RoleVIP:
			vips++
		case RoleGuest:
			guests++
		case RoleSpeaker:
			speakers++
		}
	}
	denom := total
	if denom == 0 {
		denom = 1
	}
	return []InsightItem{
		{
			Title:       "Visitor interest",
			Description: fmt.Sprintf("%d%% of registered participants completed check-in", attended*100/denom),
			Confidence:  0.85,
			DataPoints: map[string]any{
				"total_registered": total,
				"attended":         attended,
				"attendance_rate":  float64(attended) / float64(denom),
			},
		},
		{
			Title:       "Guest engagement",
			Description: "Participation split across VIPs, guests, and speakers",
			Confidence:  0.78,
			DataPoints: map[string]any{
				"vip_count":     vips,
				"guest_count":   guests,
				"speaker_count": speakers,
			},
		},
	}
}

func retentionInsights(records []AttendanceRecord) []InsightItem {
	if records == nil {
		return nil
	}
	onTime := 0
	for _, rec := range records {
		if rec.Status == StatusOnTime {
			onTime++
		}
	}
	denom := len(records)
	if denom == 0 {
		denom = 1
	}
	return []InsightItem{
		{
			Title:       "Retention outlook",
			Description: "Arrival-time spread suggests adjusting the session schedule",
			Confidence:  0.82,
			DataPoints: map[string]any{
				"on_time_rate":             float64(onTime) / float64(denom),
				"suggested_start_time":     "07:00",
				"optimal_duration_minutes": 120,
			},
		},
	}
}

func targetAudienceInsights(records []AttendanceRecord) []InsightItem {
	if records == nil {
		return nil
	}
	var highEngagement []string
	for _, rec := range records {
		if rec.Status == StatusOnTime {
			highEngagement = append(highEngagement, rec.Name)
		}
	}
	names := highEngagement
	if len(names) > 10 {
		names = names[:10]
	}
	return []InsightItem{
		{
			Title:       "Outreach shortlist",
			Description: fmt.Sprintf("Identified %d high-engagement participants", len(highEngagement)),
			Confidence:  0.90,
			DataPoints: map[string]any{
				"high_engagement_count": len(highEngagement),
				"target_names":          names,
			},
		},
	}
}

// EventInsights returns the cached reports for an event, oldest first.
func (s *Service) EventInsights(eventID int) []InsightReport {
	return s.insights.list(eventID)
}

// ExportAnalysisData dumps one event's attendance in the machine-readable
// shape downstream analysis expects. Returns false when the event id is
// unknown or has no seeded attendance.
func (s *Service) ExportAnalysisData(eventID int) (AnalysisExport, bool) {
	event, ok := s.registry.Find(eventID)
	if !ok {
		return AnalysisExport{}, false
	}
	records, ok := s.ledger.Snapshot(eventID)
	if !ok {
		return AnalysisExport{}, false
	}

	rows := make([]AnalysisRecord, 0, s.ledger.Size(eventID))
	summary := AnalysisSummary{}
	for _, rec := range records {
		rows = append(rows, AnalysisRecord{
			Name:        rec.Name,
			Status:      rec.Status,
			CheckInTime: rec.CheckInTime,
			Role:        rec.Role,
			Tags:        rec.Tags,
		})
		summary.Total++
		switch rec.Status {
		case StatusOnTime:
			summary.Attended++
			summary.OnTime++
		case StatusLate:
			summary.Attended++
			summary.Late++
		default:
			summary.Absent++
		}
		switch rec.Role {
		case RoleVIP:
			summary.VIP++
		case RoleGuest:
			summary.Guests++
		}
	}

	return AnalysisExport{
		EventID:           event.ID,
		EventName:         event.Name,
		EventDate:         event.Date,
		ExportedAt:        s.now().Format(time.RFC3339),
		AttendanceRecords: rows,
		Summary:           summary,
	}, true
}
