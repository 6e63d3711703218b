package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

var eventColumns = []string{
	"id", "title", "description", "kind", "meeting_point", "starts_at",
	"max_participants", "status", "extra_services", "manual_participants",
	"trek_details", "trip_details", "track_file_url", "created_by",
	"created_at", "updated_at",
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	var extraServices, manualParticipants, trekDetails, tripDetails []byte

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Kind,
		&event.MeetingPoint,
		&event.StartsAt,
		&event.MaxParticipants,
		&event.Status,
		&extraServices,
		&manualParticipants,
		&trekDetails,
		&tripDetails,
		&event.TrackFileURL,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error scanning event row: %w", err)
	}

	if err := decodeEventJSON(&event, extraServices, manualParticipants, trekDetails, tripDetails); err != nil {
		return nil, err
	}
	return &event, nil
}

func decodeEventJSON(event *models.Event, extraServices, manualParticipants, trekDetails, tripDetails []byte) error {
	event.ExtraServices = models.ExtraServices{}
	if len(extraServices) > 0 {
		if err := json.Unmarshal(extraServices, &event.ExtraServices); err != nil {
			return fmt.Errorf("error decoding extra services: %w", err)
		}
	}
	event.ManualParticipants = []models.ManualParticipant{}
	if len(manualParticipants) > 0 {
		if err := json.Unmarshal(manualParticipants, &event.ManualParticipants); err != nil {
			return fmt.Errorf("error decoding manual participants: %w", err)
		}
	}
	if len(trekDetails) > 0 {
		event.TrekDetails = &models.TrekDetails{}
		if err := json.Unmarshal(trekDetails, event.TrekDetails); err != nil {
			return fmt.Errorf("error decoding trek details: %w", err)
		}
	}
	if len(tripDetails) > 0 {
		event.TripDetails = &models.TripDetails{}
		if err := json.Unmarshal(tripDetails, event.TripDetails); err != nil {
			return fmt.Errorf("error decoding trip details: %w", err)
		}
	}
	return nil
}

func encodeOrNil(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Create inserts a new event and returns its id
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (int64, error) {
	extraServices, err := json.Marshal(event.ExtraServices)
	if err != nil {
		return 0, fmt.Errorf("error encoding extra services: %w", err)
	}
	manualParticipants, err := json.Marshal(event.ManualParticipants)
	if err != nil {
		return 0, fmt.Errorf("error encoding manual participants: %w", err)
	}
	var trekDetails, tripDetails []byte
	if event.TrekDetails != nil {
		if trekDetails, err = encodeOrNil(event.TrekDetails); err != nil {
			return 0, fmt.Errorf("error encoding trek details: %w", err)
		}
	}
	if event.TripDetails != nil {
		if tripDetails, err = encodeOrNil(event.TripDetails); err != nil {
			return 0, fmt.Errorf("error encoding trip details: %w", err)
		}
	}

	query := squirrel.Insert("events").
		Columns("title", "description", "kind", "meeting_point", "starts_at",
			"max_participants", "status", "extra_services", "manual_participants",
			"trek_details", "trip_details", "created_by").
		Values(event.Title, event.Description, event.Kind, event.MeetingPoint, event.StartsAt,
			event.MaxParticipants, event.Status, extraServices, manualParticipants,
			trekDetails, tripDetails, event.CreatedBy).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := squirrel.Select(eventColumns...).
		From("events").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanEvent(r.db.QueryRow(ctx, sql, args...))
}

// GetAll retrieves events with filtering and pagination, soonest first
func (r *EventRepository) GetAll(ctx context.Context, status *string, kind *string, from *time.Time, offset uint64, limit int) ([]*models.Event, int64, error) {
	base := squirrel.Select(eventColumns...).
		Column("COUNT(*) OVER() AS total_count").
		From("events").
		PlaceholderFormat(squirrel.Dollar)

	if status != nil {
		base = base.Where("status = ?", *status)
	}
	if kind != nil {
		base = base.Where("kind = ?", *kind)
	}
	if from != nil {
		base = base.Where("starts_at >= ?", *from)
	}

	base = base.OrderBy("starts_at ASC").Offset(offset).Limit(uint64(limit))

	sql, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	var total int64
	for rows.Next() {
		var event models.Event
		var extraServices, manualParticipants, trekDetails, tripDetails []byte
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Kind,
			&event.MeetingPoint,
			&event.StartsAt,
			&event.MaxParticipants,
			&event.Status,
			&extraServices,
			&manualParticipants,
			&trekDetails,
			&tripDetails,
			&event.TrackFileURL,
			&event.CreatedBy,
			&event.CreatedAt,
			&event.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		if err := decodeEventJSON(&event, extraServices, manualParticipants, trekDetails, tripDetails); err != nil {
			return nil, 0, err
		}
		events = append(events, &event)
	}

	return events, total, nil
}

// Update persists the editable event fields (not status, not manual participants)
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	extraServices, err := json.Marshal(event.ExtraServices)
	if err != nil {
		return fmt.Errorf("error encoding extra services: %w", err)
	}
	var trekDetails, tripDetails []byte
	if event.TrekDetails != nil {
		if trekDetails, err = encodeOrNil(event.TrekDetails); err != nil {
			return fmt.Errorf("error encoding trek details: %w", err)
		}
	}
	if event.TripDetails != nil {
		if tripDetails, err = encodeOrNil(event.TripDetails); err != nil {
			return fmt.Errorf("error encoding trip details: %w", err)
		}
	}

	query := squirrel.Update("events").
		Set("title", event.Title).
		Set("description", event.Description).
		Set("meeting_point", event.MeetingPoint).
		Set("starts_at", event.StartsAt).
		Set("max_participants", event.MaxParticipants).
		Set("extra_services", extraServices).
		Set("trek_details", trekDetails).
		Set("trip_details", tripDetails).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", event.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// UpdateStatus changes the lifecycle status of an event
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// UpdateTrackFile stores the uploaded GPX track URL on the event
func (r *EventRepository) UpdateTrackFile(ctx context.Context, id int64, url *string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE events SET track_file_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// GetManualParticipantsForUpdate reads the embedded manual participants inside
// a transaction with a row lock, so concurrent admins cannot clobber each
// other's removals with stale array snapshots.
func (r *EventRepository) GetManualParticipantsForUpdate(ctx context.Context, tx pgx.Tx, eventID int64) ([]models.ManualParticipant, error) {
	var raw []byte
	err := tx.QueryRow(ctx,
		`SELECT manual_participants FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	participants := []models.ManualParticipant{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &participants); err != nil {
			return nil, fmt.Errorf("error decoding manual participants: %w", err)
		}
	}
	return participants, nil
}

// SetManualParticipants writes the full manual participants array inside the
// same transaction that read it.
func (r *EventRepository) SetManualParticipants(ctx context.Context, tx pgx.Tx, eventID int64, participants []models.ManualParticipant) error {
	raw, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("error encoding manual participants: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE events SET manual_participants = $1, updated_at = NOW() WHERE id = $2`, raw, eventID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// GetManualCounts returns the embedded manual participant count for each of
// the given events. Manual entries never show up in the participants table, so
// list counts add this to the aggregate query result.
func (r *EventRepository) GetManualCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	if len(eventIDs) == 0 {
		return make(map[int64]int), nil
	}

	query := squirrel.Select("id", "jsonb_array_length(manual_participants)").
		From("events").
		Where(squirrel.Eq{"id": eventIDs}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[id] = count
	}
	return counts, nil
}
