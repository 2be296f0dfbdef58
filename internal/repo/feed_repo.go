package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// FeedRepo — репозиторий для работы с определениями фидов.
type FeedRepo struct {
	pool *pgxpool.Pool
}

// NewFeedRepo создаёт новый FeedRepo.
func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// Create создаёт новый фид.
// Возвращает ErrAlreadyExists, если фид с таким именем уже есть.
func (r *FeedRepo) Create(ctx context.Context, feed *domain.Feed) error {
	paramsJSON, err := json.Marshal(feed.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `
		INSERT INTO feeds (id, name, params, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		feed.ID,
		feed.Name,
		paramsJSON,
		feed.CreatedAt,
		feed.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert feed: %w", err)
	}
	return nil
}

// GetByID возвращает фид по ID.
func (r *FeedRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
	query := `
		SELECT id, name, params, created_at, updated_at
		FROM feeds
		WHERE id = $1
	`
	return r.scanFeed(r.pool.QueryRow(ctx, query, id))
}

// List возвращает фиды, отсортированные по имени.
func (r *FeedRepo) List(ctx context.Context, limit, offset int) ([]domain.Feed, error) {
	query := `
		SELECT id, name, params, created_at, updated_at
		FROM feeds
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []domain.Feed
	for rows.Next() {
		feed, err := r.scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

// Update обновляет имя и параметры фида.
func (r *FeedRepo) Update(ctx context.Context, feed *domain.Feed) error {
	paramsJSON, err := json.Marshal(feed.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE feeds SET name = $2, params = $3, updated_at = $4 WHERE id = $1
	`, feed.ID, feed.Name, paramsJSON, feed.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update feed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет фид (schedules и runs удаляются каскадно).
func (r *FeedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FeedRepo) scanFeed(row pgx.Row) (*domain.Feed, error) {
	var f domain.Feed
	var paramsJSON []byte

	err := row.Scan(&f.ID, &f.Name, &paramsJSON, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan feed: %w", err)
	}

	f.Params = domain.DefaultFeedParams()
	if paramsJSON != nil {
		if err := json.Unmarshal(paramsJSON, &f.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
	}

	return &f, nil
}
