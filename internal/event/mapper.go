package event

import "fmt"

// Default display values supplied when a raw record omits a field.
const (
	DefaultTitle            = "Untitled Event"
	DefaultPrice            = "Free"
	DefaultTime             = "Time TBD"
	DefaultDescription      = "No description available."
	DefaultLocationName     = "Unknown Location"
	DefaultHowToFindUs      = "No directions provided. Please contact the organizer for details."
	DefaultRefundPolicy     = "No refund policy specified. Please contact the organizer for details."
	DefaultRegistrationInfo = "Details not available."
)

// Agenda item type marking a headline act.
const itemTypeHeadliner = "headliner"

// MapToDisplay transforms a raw backend record into a display-ready
// CandidateEvent. It is pure and deterministic: no I/O, no clock reads,
// and every optional field is replaced by a concrete default so the same
// input always yields the same output.
func MapToDisplay(rec RawEventRecord) CandidateEvent {
	timeDisplay := FormatTimeRange(deref(rec.StartTime), deref(rec.EndTime))
	if timeDisplay == "" {
		timeDisplay = DefaultTime
	}

	price := DefaultPrice
	if rec.Cost != nil {
		price = fmt.Sprintf("$%.2f", *rec.Cost)
	}

	title := deref(rec.Title)
	if title == "" {
		title = DefaultTitle
	}

	refund := deref(rec.RefundPolicy)
	if refund == "" {
		if link := deref(rec.RefundPolicyLink); link != "" {
			refund = "View refund policy: " + link
		} else {
			refund = DefaultRefundPolicy
		}
	}

	registration := DefaultRegistrationInfo
	if link := deref(rec.TicketLink); link != "" {
		registration = "Register at: " + link
	}

	howToFindUs := deref(rec.HowToFindUs)
	if howToFindUs == "" {
		howToFindUs = DefaultHowToFindUs
	}

	return CandidateEvent{
		ID:               rec.ID,
		Title:            title,
		Images:           orEmpty(rec.ImageURLs),
		Tags:             orEmpty(rec.Tags),
		Date:             FormatDateRange(deref(rec.StartDate), deref(rec.EndDate), rec.IsMultiDay),
		Time:             timeDisplay,
		IsMultiDay:       rec.IsMultiDay,
		PriceRange:       price,
		Description:      orDefault(deref(rec.ShortDescription), DefaultDescription),
		FullDescription:  orDefault(deref(rec.Description), DefaultDescription),
		Location:         mapLocation(rec.Location),
		Lineup:           mapLineup(rec.AgendaItems),
		HowToFindUs:      howToFindUs,
		RefundPolicy:     refund,
		RegistrationInfo: registration,
	}
}

// mapLocation converts a nested location row, falling back to a placeholder
// location when the post has none.
func mapLocation(loc *RawLocation) Location {
	if loc == nil {
		return Location{Name: DefaultLocationName}
	}

	name := deref(loc.Name)
	if name == "" {
		name = DefaultLocationName
	}

	coords := Coordinates{}
	if loc.Latitude != nil {
		coords.Latitude = *loc.Latitude
	}
	if loc.Longitude != nil {
		coords.Longitude = *loc.Longitude
	}

	return Location{
		Name:        name,
		Address:     deref(loc.Address),
		Coordinates: coords,
	}
}

// mapLineup converts agenda rows into display lineup entries, preserving
// the source ordering (scheduled_date, start_time).
func mapLineup(items []RawAgendaItem) []LineupEntry {
	if len(items) == 0 {
		return []LineupEntry{}
	}

	entries := make([]LineupEntry, 0, len(items))
	for _, item := range items {
		entryTime := FormatTimeRange(deref(item.StartTime), deref(item.EndTime))
		if entryTime == "" {
			entryTime = "TBD"
		}

		itemType := deref(item.ItemType)
		entries = append(entries, LineupEntry{
			Time:        entryTime,
			Date:        FormatAgendaDate(deref(item.ScheduledDate)),
			Artist:      item.Title,
			Stage:       itemType,
			IsHeadliner: itemType == itemTypeHeadliner,
		})
	}
	return entries
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
