package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/driftwood-collective/driftdeck/internal/event"
)

// PostgresSource implements Source over the posts, locations, and
// agenda_items tables.
type PostgresSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSource creates a new PostgresSource.
func NewPostgresSource(db *sql.DB, logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{
		db:     db,
		logger: logger,
	}
}

// FetchCandidates returns up to limit posts whose IDs are not in exclude,
// newest first, each enriched with its location and agenda items. The full
// exclusion set is always passed down; trimming a degenerate NOT-IN filter
// is the database's concern, not ours.
func (s *PostgresSource) FetchCandidates(ctx context.Context, exclude []string, limit int) ([]event.RawEventRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, short_description, description, how_to_find_us,
		       start_date::text, end_date::text, start_time::text, end_time::text,
		       COALESCE(is_multi_day, FALSE), pricing_type, cost, ticket_link,
		       refund_policy, refund_policy_link, image_urls, tags, location_id
		FROM posts
		WHERE NOT (id = ANY($1))
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`, pq.Array(exclude), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	type postRow struct {
		record     event.RawEventRecord
		locationID *string
	}

	var posts []postRow
	for rows.Next() {
		var p postRow
		var imageURLs, tags pq.StringArray
		if err := rows.Scan(
			&p.record.ID, &p.record.Title, &p.record.ShortDescription,
			&p.record.Description, &p.record.HowToFindUs,
			&p.record.StartDate, &p.record.EndDate,
			&p.record.StartTime, &p.record.EndTime,
			&p.record.IsMultiDay, &p.record.PricingType, &p.record.Cost,
			&p.record.TicketLink, &p.record.RefundPolicy, &p.record.RefundPolicyLink,
			&imageURLs, &tags, &p.locationID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.record.ImageURLs = imageURLs
		p.record.Tags = tags
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	results := make([]event.RawEventRecord, 0, len(posts))
	for _, p := range posts {
		s.enrich(ctx, &p.record, p.locationID)
		results = append(results, p.record)
	}
	return results, nil
}

// FetchByID returns the single post with the given ID, enriched the same
// way as a candidate batch, or ErrNotFound when no such post exists.
func (s *PostgresSource) FetchByID(ctx context.Context, id string) (*event.RawEventRecord, error) {
	var rec event.RawEventRecord
	var imageURLs, tags pq.StringArray
	var locationID *string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, short_description, description, how_to_find_us,
		       start_date::text, end_date::text, start_time::text, end_time::text,
		       COALESCE(is_multi_day, FALSE), pricing_type, cost, ticket_link,
		       refund_policy, refund_policy_link, image_urls, tags, location_id
		FROM posts
		WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.Title, &rec.ShortDescription,
		&rec.Description, &rec.HowToFindUs,
		&rec.StartDate, &rec.EndDate,
		&rec.StartTime, &rec.EndTime,
		&rec.IsMultiDay, &rec.PricingType, &rec.Cost,
		&rec.TicketLink, &rec.RefundPolicy, &rec.RefundPolicyLink,
		&imageURLs, &tags, &locationID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	rec.ImageURLs = imageURLs
	rec.Tags = tags

	s.enrich(ctx, &rec, locationID)
	return &rec, nil
}

// enrich attaches the location and agenda rows to a scanned post. Lookup
// failures degrade to the mapper's placeholders; the post itself is still
// a valid candidate.
func (s *PostgresSource) enrich(ctx context.Context, rec *event.RawEventRecord, locationID *string) {
	if locationID != nil {
		loc, err := s.fetchLocation(ctx, *locationID)
		if err != nil {
			s.logger.Warn("failed to load post location",
				"error", err, "post_id", rec.ID, "location_id", *locationID)
		} else {
			rec.Location = loc
		}
	}

	agenda, err := s.fetchAgendaItems(ctx, rec.ID)
	if err != nil {
		s.logger.Warn("failed to load agenda items",
			"error", err, "post_id", rec.ID)
	} else {
		rec.AgendaItems = agenda
	}
}

// fetchLocation loads a single location row.
func (s *PostgresSource) fetchLocation(ctx context.Context, locationID string) (*event.RawLocation, error) {
	loc := &event.RawLocation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, state, latitude, longitude
		FROM locations
		WHERE id = $1
	`, locationID).Scan(
		&loc.ID, &loc.Name, &loc.Address, &loc.City, &loc.State,
		&loc.Latitude, &loc.Longitude,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}
	return loc, nil
}

// fetchAgendaItems loads the ordered agenda for a post.
func (s *PostgresSource) fetchAgendaItems(ctx context.Context, postID string) ([]event.RawAgendaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day_number, scheduled_date::text, start_time::text, end_time::text,
		       title, description, item_type, speaker_or_performer
		FROM agenda_items
		WHERE post_id = $1
		ORDER BY scheduled_date ASC, start_time ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agenda items: %w", err)
	}
	defer rows.Close()

	var items []event.RawAgendaItem
	for rows.Next() {
		var item event.RawAgendaItem
		if err := rows.Scan(
			&item.ID, &item.DayNumber, &item.ScheduledDate,
			&item.StartTime, &item.EndTime, &item.Title,
			&item.Description, &item.ItemType, &item.SpeakerOrPerformer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agenda items: %w", err)
	}
	return items, nil
}
