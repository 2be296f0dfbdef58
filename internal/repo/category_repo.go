package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// contentExtension — расширение CMS, которому принадлежат категории материалов.
const contentExtension = "com_content"

// CategoryRepo — чтение категорий материалов из БД CMS.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

// NewCategoryRepo создаёт новый CategoryRepo.
func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

const categoryColumns = `
	id, parent_id, level, title, alias, path, COALESCE(description, ''), published = 1
`

// ListAll возвращает все не удалённые категории материалов в порядке дерева.
// Неопубликованные категории тоже возвращаются: они нужны для связей
// родитель — потомок, фильтрация выполняется при раскрытии дерева.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE extension = $1 AND published >= 0
		ORDER BY lft ASC
	`
	rows, err := r.pool.Query(ctx, query, contentExtension)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID возвращает категорию по ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND extension = $2
	`
	var c domain.Category
	err := scanCategory(r.pool.QueryRow(ctx, query, id, contentExtension), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCategory(row pgx.Row, c *domain.Category) error {
	err := row.Scan(
		&c.ID,
		&c.ParentID,
		&c.Level,
		&c.Title,
		&c.Alias,
		&c.Path,
		&c.Description,
		&c.Published,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan category: %w", err)
	}
	return nil
}
