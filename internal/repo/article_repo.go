package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// fieldContext — контекст пользовательских полей материалов.
const fieldContext = "com_content.article"

// publishedState — состояние опубликованного материала.
const publishedState = 1

// ArticleQuery — параметры выборки материалов.
type ArticleQuery struct {
	// CategoryIDs — фильтр по категориям (пустой — без фильтра).
	CategoryIDs []int64

	// CategoryInclude — true: только CategoryIDs, false: все кроме них.
	CategoryInclude bool

	// ArticleIDs — фильтр по материалам (пустой — без фильтра).
	ArticleIDs []int64

	// ArticleInclude — true: только ArticleIDs, false: все кроме них.
	ArticleInclude bool

	// Limit — максимальное число материалов (0 — без ограничения).
	Limit int
}

// ArticleRepo — чтение материалов из БД CMS.
type ArticleRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewArticleRepo создаёт новый ArticleRepo.
func NewArticleRepo(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool, now: time.Now}
}

// List возвращает опубликованные материалы по запросу q
// вместе с рейтингом и значениями пользовательских полей.
func (r *ArticleRepo) List(ctx context.Context, q ArticleQuery) ([]domain.Article, error) {
	query, args := buildArticleQuery(q, r.now())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		var imagesJSON *string

		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Alias,
			&a.CatID,
			&a.CategoryRoute,
			&a.IntroText,
			&a.MetaDesc,
			&imagesJSON,
			&a.Author,
			&a.Rating,
			&a.RatingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		if imagesJSON != nil && *imagesJSON != "" {
			if err := json.Unmarshal([]byte(*imagesJSON), &a.Images); err != nil {
				return nil, fmt.Errorf("unmarshal images of article %d: %w", a.ID, err)
			}
		}

		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachFields(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// attachFields загружает опубликованные пользовательские поля материалов.
func (r *ArticleRepo) attachFields(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	// item_id в CMS хранится строкой
	ids := make([]string, len(articles))
	index := make(map[int64]int, len(articles))
	for i := range articles {
		ids[i] = strconv.FormatInt(articles[i].ID, 10)
		index[articles[i].ID] = i
	}

	query := `
		SELECT v.item_id, f.name, COALESCE(v.value, ''), COALESCE(f.note, '')
		FROM fields_values v
		JOIN fields f ON f.id = v.field_id
		WHERE f.context = $1 AND f.state = 1 AND v.item_id = ANY($2)
		ORDER BY f.ordering ASC
	`
	rows, err := r.pool.Query(ctx, query, fieldContext, ids)
	if err != nil {
		return fmt.Errorf("list field values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, name string
		var value domain.FieldValue
		if err := rows.Scan(&itemID, &name, &value.Value, &value.Note); err != nil {
			return fmt.Errorf("scan field value: %w", err)
		}

		id, err := strconv.ParseInt(itemID, 10, 64)
		if err != nil {
			continue
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if articles[i].Fields == nil {
			articles[i].Fields = make(map[string]domain.FieldValue)
		}
		articles[i].Fields[name] = value
	}
	return rows.Err()
}

// buildArticleQuery строит SQL и аргументы для выборки материалов.
func buildArticleQuery(q ArticleQuery, now time.Time) (string, []any) {
	var sb strings.Builder
	args := []any{publishedState, now}

	sb.WriteString(`
		SELECT a.id, a.title, a.alias, a.catid, c.path,
		       COALESCE(a.introtext, ''), COALESCE(a.metadesc, ''), a.images,
		       COALESCE(NULLIF(a.created_by_alias, ''), u.name, ''),
		       COALESCE(r.rating_sum::float8 / NULLIF(r.rating_count, 0), 0),
		       COALESCE(r.rating_count, 0)
		FROM content a
		JOIN categories c ON c.id = a.catid
		LEFT JOIN users u ON u.id = a.created_by
		LEFT JOIN content_rating r ON r.content_id = a.id
		WHERE a.state = $1
		  AND c.published = 1
		  AND (a.publish_up IS NULL OR a.publish_up <= $2)
		  AND (a.publish_down IS NULL OR a.publish_down > $2)`)

	if len(q.CategoryIDs) > 0 {
		args = append(args, q.CategoryIDs)
		if q.CategoryInclude {
			fmt.Fprintf(&sb, "\n\t\t  AND a.catid = ANY($%d)", len(args))
		} else {
			fmt.Fprintf(&sb, "\n\t\t  AND a.catid <> ALL($%d)", len(args))
		}
	}

	if len(q.ArticleIDs) > 0 {
		args = append(args, q.ArticleIDs)
		if q.ArticleInclude {
			fmt.Fprintf(&sb, "\n\t\t  AND a.id = ANY($%d)", len(args))
		} else {
			fmt.Fprintf(&sb, "\n\t\t  AND a.id <> ALL($%d)", len(args))
		}
	}

	sb.WriteString("\n\t\tORDER BY a.ordering ASC, a.id ASC")

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, "\n\t\tLIMIT $%d", len(args))
	}

	return sb.String(), args
}
