package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/ymlfeed/internal/catalog"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/storage"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

// CategorySource — источник категорий CMS.
type CategorySource interface {
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// ArticleSource — источник материалов CMS.
type ArticleSource interface {
	List(ctx context.Context, q repo.ArticleQuery) ([]domain.Article, error)
}

// Result — результат генерации фида.
type Result struct {
	// OffersCount — число предложений в фиде.
	OffersCount int

	// Location — куда записан фид (пусто для Preview).
	Location string

	// Bytes — размер документа.
	Bytes int

	// Body — документ (заполняется только Preview).
	Body []byte

	// Duration — время генерации.
	Duration time.Duration
}

// Generator — конвейер генерации фида.
type Generator struct {
	categories CategorySource
	articles   ArticleSource
	renderer   *Renderer
	sink       storage.Sink
	logger     *slog.Logger
}

// NewGenerator создаёт Generator. sink может быть nil, тогда доступен
// только Preview.
func NewGenerator(categories CategorySource, articles ArticleSource, renderer *Renderer, sink storage.Sink, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		categories: categories,
		articles:   articles,
		renderer:   renderer,
		sink:       sink,
		logger:     logger,
	}
}

// Generate строит фид и записывает его в sink.
func (g *Generator) Generate(ctx context.Context, f *domain.Feed) (*Result, error) {
	if g.sink == nil {
		return nil, fmt.Errorf("generate feed %s: no sink configured", f.ID)
	}

	start := time.Now()
	body, offers, primary, err := g.render(ctx, f)
	if err != nil {
		return nil, err
	}

	location, err := g.sink.Write(ctx, storage.FileName(primary.Alias), body)
	if err != nil {
		return nil, fmt.Errorf("write feed %s: %w", f.ID, err)
	}

	result := &Result{
		OffersCount: offers,
		Location:    location,
		Bytes:       len(body),
		Duration:    time.Since(start),
	}

	g.loggerFrom(ctx).Info("feed generated",
		slog.String("feed_id", f.ID.String()),
		slog.Int("offers", result.OffersCount),
		slog.Int("bytes", result.Bytes),
		slog.String("location", result.Location),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// loggerFrom предпочитает логгер запроса из контекста.
func (g *Generator) loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(telemetry.CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return g.logger
}

// Preview строит фид без записи.
func (g *Generator) Preview(ctx context.Context, f *domain.Feed) (*Result, error) {
	start := time.Now()
	body, offers, _, err := g.render(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Result{
		OffersCount: offers,
		Bytes:       len(body),
		Body:        body,
		Duration:    time.Since(start),
	}, nil
}

// render выполняет конвейер до сериализации включительно.
func (g *Generator) render(ctx context.Context, f *domain.Feed) ([]byte, int, *domain.Category, error) {
	params := &f.Params
	if err := params.Validate(); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	categories, err := g.categories.ListAll(ctx)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load categories: %w", err)
	}

	tree, err := catalog.BuildTree(categories)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("build category tree: %w", err)
	}

	primary, err := tree.Get(params.PrimaryCatID())
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrPrimaryCategory, err)
	}

	catIDs := ResolveCategories(params, tree)
	query := BuildQuery(params, catIDs)

	articles, err := g.articles.List(ctx, query)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load articles: %w", err)
	}

	g.loggerFrom(ctx).Debug("feed articles loaded",
		slog.String("feed_id", f.ID.String()),
		slog.Int("categories", len(catIDs)),
		slog.Int("articles", len(articles)),
	)

	body, offers, err := g.renderer.Render(Input{
		Params:   params,
		Tree:     tree,
		CatIDs:   catIDs,
		Articles: articles,
	})
	if err != nil {
		return nil, 0, nil, err
	}

	return body, offers, primary, nil
}
