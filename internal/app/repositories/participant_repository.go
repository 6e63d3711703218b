package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/matteo/veloclub/internal/pkg/dberrors"
)

// ParticipantRepository handles database operations for self-registered
// event participants
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	var services []byte
	err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.DisplayName, &p.Note, &services, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("error scanning participant row: %w", err)
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &p.Services); err != nil {
			return nil, fmt.Errorf("error decoding service choices: %w", err)
		}
	}
	return &p, nil
}

// GetByEventID retrieves every self-registered participant of an event in
// join order. Rows without a join timestamp sort first.
func (r *ParticipantRepository) GetByEventID(ctx context.Context, eventID int64) ([]*models.Participant, error) {
	query := squirrel.Select("id", "event_id", "user_id", "display_name", "note", "services", "joined_at").
		From("event_participants").
		Where("event_id = ?", eventID).
		OrderBy("joined_at ASC NULLS FIRST", "id ASC").
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

	var participants []*models.Participant
	for rows.Next() {
		var p models.Participant
		var services []byte
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.DisplayName, &p.Note, &services, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if len(services) > 0 {
			if err := json.Unmarshal(services, &p.Services); err != nil {
				return nil, fmt.Errorf("error decoding service choices: %w", err)
			}
		}
		participants = append(participants, &p)
	}

	return participants, nil
}

// GetByEventAndUser retrieves a user's participation in an event
func (r *ParticipantRepository) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*models.Participant, error) {
	query := squirrel.Select("id", "event_id", "user_id", "display_name", "note", "services", "joined_at").
		From("event_participants").
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanParticipant(r.db.QueryRow(ctx, sql, args...))
}

// Add inserts a participation row. The unique (event_id, user_id) constraint
// keeps double joins out even under concurrent requests.
func (r *ParticipantRepository) Add(ctx context.Context, p *models.Participant) (int64, error) {
	services, err := json.Marshal(p.Services)
	if err != nil {
		return 0, fmt.Errorf("error encoding service choices: %w", err)
	}

	query := squirrel.Insert("event_participants").
		Columns("event_id", "user_id", "display_name", "note", "services").
		Values(p.EventID, p.UserID, p.DisplayName, p.Note, services).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrAlreadyJoined
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// Update overwrites a participant's note and service choices
func (r *ParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	services, err := json.Marshal(p.Services)
	if err != nil {
		return fmt.Errorf("error encoding service choices: %w", err)
	}

	query := squirrel.Update("event_participants").
		Set("note", p.Note).
		Set("services", services).
		Where("event_id = ?", p.EventID).
		Where("user_id = ?", p.UserID).
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
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// Remove deletes a user's participation row
func (r *ParticipantRepository) Remove(ctx context.Context, eventID, userID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// CountByEventID returns the number of self-registered participants
func (r *ParticipantRepository) CountByEventID(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// CountByEventIDs returns self-registered counts for a batch of events in a
// single aggregate query. Events with zero rows are absent from the map.
func (r *ParticipantRepository) CountByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	if len(eventIDs) == 0 {
		return make(map[int64]int), nil
	}

	query := squirrel.Select("event_id", "COUNT(*)").
		From("event_participants").
		Where(squirrel.Eq{"event_id": eventIDs}).
		GroupBy("event_id").
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
		var eventID int64
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[eventID] = count
	}
	return counts, nil
}

// GetEventIDsByUser lists the ids of events the user has joined
func (r *ParticipantRepository) GetEventIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id FROM event_participants WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
