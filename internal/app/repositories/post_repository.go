package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

// PostRepository handles database operations for board posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post and returns its id
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := squirrel.Insert("posts").
		Columns("title", "body", "author_id", "pinned").
		Values(post.Title, post.Body, post.AuthorID, post.Pinned).
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

// GetByID retrieves a post by id
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := squirrel.Select("id", "title", "body", "author_id", "pinned", "created_at", "updated_at").
		From("posts").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var post models.Post
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.Pinned, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &post, nil
}

// GetAll retrieves posts with pagination, pinned posts first then newest first
func (r *PostRepository) GetAll(ctx context.Context, offset uint64, limit int) ([]*models.Post, int64, error) {
	query := squirrel.Select("id", "title", "body", "author_id", "pinned", "created_at", "updated_at").
		Column("COUNT(*) OVER() AS total_count").
		From("posts").
		OrderBy("pinned DESC", "created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	var total int64
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.Pinned,
			&post.CreatedAt, &post.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		posts = append(posts, &post)
	}

	return posts, total, nil
}

// Update persists the editable post fields
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	query := squirrel.Update("posts").
		Set("title", post.Title).
		Set("body", post.Body).
		Set("pinned", post.Pinned).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", post.ID).
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
		return apperrors.ErrPostNotFound
	}
	return nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}
