package checkin

import "sort"

// BuildReport partitions a ledger snapshot into the live roster view.
// Attendees sort by check-in time descending (most recent first), absentees
// by participant key ascending. Stats count over the full record set;
// vipArrivedCount counts VIPs among attendees only.
func BuildReport(event Event, records []AttendanceRecord) ReportData {
	var attendees, absentees []AttendanceRecord
	for _, rec := range records {
		if rec.Status == StatusOnTime || rec.Status == StatusLate {
			attendees = append(attendees, rec)
		} else {
			absentees = append(absentees, rec)
		}
	}
	// "15:04:05" strings order lexicographically the same as the times
	// they format, so a plain string compare is enough.
	sort.SliceStable(attendees, func(i, j int) bool {
		return attendees[i].CheckInTime > attendees[j].CheckInTime
	})
	sort.SliceStable(absentees, func(i, j int) bool {
		return absentees[i].Key < absentees[j].Key
	})

	stats := ReportStats{
		TotalAttendees: len(attendees),
		AbsentCount:    len(absentees),
	}
	for _, rec := range records {
		switch rec.Role {
		case RoleGuest:
			stats.GuestCount++
		case RoleVIP:
			stats.VIPCount++
		case RoleSpeaker:
			stats.SpeakerCount++
		}
	}
	for _, rec := range attendees {
		switch rec.Status {
		case StatusOnTime:
			stats.OnTimeCount++
		case StatusLate:
			stats.LateCount++
		}
		if rec.Role == RoleVIP {
			stats.VIPArrivedCount++
		}
	}

	return ReportData{
		EventID:      event.ID,
		EventName:    event.Name,
		EventDate:    event.Date,
		OnTimeCutoff: event.OnTimeCutoff,
		Attendees:    attendees,
		Absentees:    absentees,
		Stats:        stats,
	}
}
