// Package event provides the candidate event display model and the pure
// mapping from raw backend records into it.
package event

// RawLocation is the nested location row attached to a raw post record.
type RawLocation struct {
	ID        string   `json:"id"`
	Name      *string  `json:"name,omitempty"`
	Address   *string  `json:"address,omitempty"`
	City      *string  `json:"city,omitempty"`
	State     *string  `json:"state,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// RawAgendaItem is a single agenda/lineup row attached to a raw post record.
type RawAgendaItem struct {
	ID                 string  `json:"id"`
	DayNumber          *int    `json:"day_number,omitempty"`
	ScheduledDate      *string `json:"scheduled_date,omitempty"`
	StartTime          *string `json:"start_time,omitempty"`
	EndTime            *string `json:"end_time,omitempty"`
	Title              string  `json:"title"`
	Description        *string `json:"description,omitempty"`
	ItemType           *string `json:"item_type,omitempty"`
	SpeakerOrPerformer *string `json:"speaker_or_performer,omitempty"`
}

// RawEventRecord is a post row enriched with its location and agenda items,
// exactly as the candidate source hands it to the mapper. All optional
// columns are pointers so absence is distinguishable from zero values.
type RawEventRecord struct {
	ID               string         `json:"id"`
	Title            *string        `json:"title,omitempty"`
	ShortDescription *string        `json:"short_description,omitempty"`
	Description      *string        `json:"description,omitempty"`
	HowToFindUs      *string        `json:"how_to_find_us,omitempty"`
	StartDate        *string        `json:"start_date,omitempty"`
	EndDate          *string        `json:"end_date,omitempty"`
	StartTime        *string        `json:"start_time,omitempty"`
	EndTime          *string        `json:"end_time,omitempty"`
	IsMultiDay       bool           `json:"is_multi_day"`
	PricingType      *string        `json:"pricing_type,omitempty"`
	Cost             *float64       `json:"cost,omitempty"`
	TicketLink       *string        `json:"ticket_link,omitempty"`
	RefundPolicy     *string        `json:"refund_policy,omitempty"`
	RefundPolicyLink *string        `json:"refund_policy_link,omitempty"`
	ImageURLs        []string       `json:"image_urls,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	Location         *RawLocation   `json:"location,omitempty"`
	AgendaItems      []RawAgendaItem `json:"agenda_items,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is the display-ready location on a candidate event.
type Location struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

// LineupEntry is one display-ready agenda entry on a candidate event.
type LineupEntry struct {
	Time        string `json:"time"`
	Date        string `json:"date"`
	Artist      string `json:"artist"`
	Stage       string `json:"stage"`
	IsHeadliner bool   `json:"is_headliner"`
}

// CandidateEvent is the display-ready view of an event awaiting a swipe
// decision. Every field is populated with a default when the raw record
// omits it, so rendering never branches on absence.
type CandidateEvent struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Images           []string      `json:"images"`
	Tags             []string      `json:"tags"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	IsMultiDay       bool          `json:"is_multi_day"`
	PriceRange       string        `json:"price_range"`
	Description      string        `json:"description"`
	FullDescription  string        `json:"full_description"`
	Location         Location      `json:"location"`
	Lineup           []LineupEntry `json:"lineup"`
	HowToFindUs      string        `json:"how_to_find_us"`
	RefundPolicy     string        `json:"refund_policy"`
	RegistrationInfo string        `json:"registration_info"`
}
