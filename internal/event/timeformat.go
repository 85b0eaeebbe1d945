package event

import (
	"fmt"
	"strings"
	"time"
)

// Database column formats for dates and clock times.
const (
	dateLayout = "2006-01-02"
)

// ParseClockTime converts a database time column value (HH:MM:SS, optionally
// with a +HH or -HH zone suffix) into a 12-hour display string like
// "10:27 AM". Unparseable input degrades to an empty string.
func ParseClockTime(timeStr string) string {
	if timeStr == "" {
		return ""
	}

	// Strip a trailing zone offset: "10:27:08+00" -> "10:27:08".
	clean := timeStr
	if i := strings.IndexAny(clean, "+"); i >= 0 {
		clean = clean[:i]
	} else if i := strings.LastIndex(clean, "-"); i > 0 {
		clean = clean[:i]
	}

	var hours, minutes, seconds int
	n, err := fmt.Sscanf(clean, "%d:%d:%d", &hours, &minutes, &seconds)
	if err != nil && n < 2 {
		return ""
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return ""
	}

	t := time.Date(0, time.January, 1, hours, minutes, 0, 0, time.UTC)
	// time.Format pads the hour with a space for "3:04"; no padding wanted.
	return t.Format("3:04 PM")
}

// FormatTimeRange joins a start and end time into "10:00 AM - 6:00 PM".
// With no end time it returns just the start; with no start it returns "".
func FormatTimeRange(startTime, endTime string) string {
	start := ParseClockTime(startTime)
	end := ParseClockTime(endTime)

	if start == "" {
		return ""
	}
	if end == "" {
		return start
	}
	return start + " - " + end
}

// FormatDate converts a YYYY-MM-DD date column value into "Nov 12, 2025".
// Missing or unparseable input degrades to "TBD".
func FormatDate(dateStr string) string {
	if dateStr == "" {
		return "TBD"
	}
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return "TBD"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateRange renders the scheduling window of an event. Multi-day
// events with an end date render as "Nov 12, 2025 - Nov 15, 2025";
// everything else renders the start date alone.
func FormatDateRange(startDate, endDate string, isMultiDay bool) string {
	if startDate == "" {
		return "TBD"
	}

	start := FormatDate(startDate)
	if isMultiDay && endDate != "" {
		return start + " - " + FormatDate(endDate)
	}
	return start
}

// FormatAgendaDate renders an agenda item date without the year, like
// "Nov 15". Missing or unparseable input degrades to an empty string.
func FormatAgendaDate(dateStr string) string {
	if dateStr == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2")
}
