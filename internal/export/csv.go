// Package export renders the attendance roster as CSV for download.
package export

import (
	"encoding/csv"
	"io"
	"regexp"

	"checkin/internal/checkin"
)

// utf8BOM keeps spreadsheet apps from misreading the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var timeOfDayPattern = regexp.MustCompile(`T?(\d{2}:\d{2}:\d{2})`)

// GuestStatus re-derives on-time/late for a guest from its raw timestamp
// string, best-effort: the first HH:MM:SS substring is compared against the
// cutoff with the same strict-less-than rule the ledger uses. Anything
// unparseable degrades to "checked-in".
func GuestStatus(timestamp, onTimeCutoff string) string {
	m := timeOfDayPattern.FindStringSubmatch(timestamp)
	if m == nil {
		return "checked-in"
	}
	t, err := checkin.ParseTimeOfDay(m[1])
	if err != nil {
		return "checked-in"
	}
	status, err := checkin.Classify(t, onTimeCutoff)
	if err != nil {
		return "checked-in"
	}
	return status
}

// WriteAttendance writes the roster CSV: member rows from the current
// event's report, guest rows re-derived from the raw check-in log. With no
// current event it falls back to dumping the raw log.
func WriteAttendance(w io.Writer, report *checkin.ReportData, records []checkin.Entry, domainFor func(name string) string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "domain", "category", "status", "check-in-time"}); err != nil {
		return err
	}

	if report == nil {
		for _, rec := range records {
			if err := cw.Write([]string{rec.Name, rec.Domain, rec.Type, "checked-in", rec.Timestamp}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	for _, attendee := range report.Attendees {
		if attendee.Role != checkin.RoleMember {
			continue
		}
		row := []string{attendee.Name, domainFor(attendee.Name), "member", attendee.Status, attendee.CheckInTime}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, absentee := range report.Absentees {
		row := []string{absentee.Name, domainFor(absentee.Name), "member", checkin.StatusAbsent, ""}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if rec.Type != checkin.TypeGuest {
			continue
		}
		row := []string{rec.Name, rec.Domain, "guest", GuestStatus(rec.Timestamp, report.OnTimeCutoff), rec.Timestamp}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
