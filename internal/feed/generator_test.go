package feed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

// --- Fakes ---

type fakeCategories struct {
	categories []domain.Category
	err        error
}

func (f *fakeCategories) ListAll(ctx context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

type fakeArticles struct {
	articles []domain.Article
	err      error
	query    *repo.ArticleQuery
}

func (f *fakeArticles) List(ctx context.Context, q repo.ArticleQuery) ([]domain.Article, error) {
	f.query = &q
	return f.articles, f.err
}

type fakeSink struct {
	name  string
	body  []byte
	calls int
	err   error
}

func (f *fakeSink) Write(ctx context.Context, name string, body []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.name = name
	f.body = body
	return "/var/www/yandex/" + name, nil
}

func newTestGenerator(articles *fakeArticles, sink *fakeSink) *Generator {
	return NewGenerator(
		&fakeCategories{categories: testCategories()},
		articles,
		testRenderer(),
		sink,
		nil,
	)
}

func testFeed() *domain.Feed {
	return &domain.Feed{ID: uuid.New(), Name: "repair", Params: testParams()}
}

// --- Tests ---

func TestGenerator_Generate(t *testing.T) {
	articles := &fakeArticles{articles: []domain.Article{testArticle()}}
	sink := &fakeSink{}
	f := testFeed()
	f.Params.Count = 50
	f.Params.ExcludedArticles = []int64{99}

	result, err := newTestGenerator(articles, sink).Generate(context.Background(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink.name != "repair.feed.xml" {
		t.Errorf("expected file repair.feed.xml, got %q", sink.name)
	}
	if result.Location != "/var/www/yandex/repair.feed.xml" {
		t.Errorf("unexpected location %q", result.Location)
	}
	if result.OffersCount != 1 {
		t.Errorf("expected 1 offer, got %d", result.OffersCount)
	}
	if result.Bytes != len(sink.body) {
		t.Errorf("expected %d bytes, got %d", len(sink.body), result.Bytes)
	}
	if result.Body != nil {
		t.Error("Generate should not return body")
	}
	if !strings.Contains(string(sink.body), `<offer id="10">`) {
		t.Error("written feed should contain the offer")
	}

	wantQuery := repo.ArticleQuery{
		CategoryIDs:     []int64{3, 5},
		CategoryInclude: true,
		ArticleIDs:      []int64{99},
		Limit:           50,
	}
	if diff := cmp.Diff(&wantQuery, articles.query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_Preview(t *testing.T) {
	sink := &fakeSink{}
	g := newTestGenerator(&fakeArticles{articles: []domain.Article{testArticle()}}, sink)

	result, err := g.Preview(context.Background(), testFeed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.calls != 0 {
		t.Errorf("Preview should not write, got %d writes", sink.calls)
	}
	if result.Location != "" {
		t.Errorf("expected empty location, got %q", result.Location)
	}
	if len(result.Body) == 0 || result.Bytes != len(result.Body) {
		t.Errorf("unexpected body size %d / %d", len(result.Body), result.Bytes)
	}
}

func TestGenerator_Errors(t *testing.T) {
	dbErr := errors.New("connection refused")
	writeErr := errors.New("disk full")

	tests := []struct {
		name       string
		mutate     func(f *domain.Feed)
		categories *fakeCategories
		articles   *fakeArticles
		sinkErr    error
		wantErr    error
	}{
		{
			name:    "no categories selected",
			mutate:  func(f *domain.Feed) { f.Params.CatIDs = nil },
			wantErr: ErrInvalidParams,
		},
		{
			name:    "negative count",
			mutate:  func(f *domain.Feed) { f.Params.Count = -1 },
			wantErr: ErrInvalidParams,
		},
		{
			name:    "primary category missing",
			mutate:  func(f *domain.Feed) { f.Params.CatIDs = []int64{404, 3} },
			wantErr: ErrPrimaryCategory,
		},
		{
			name:       "categories error",
			categories: &fakeCategories{err: dbErr},
			wantErr:    dbErr,
		},
		{
			name:     "articles error",
			articles: &fakeArticles{err: dbErr},
			wantErr:  dbErr,
		},
		{
			name:    "sink error",
			sinkErr: writeErr,
			wantErr: writeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories := tt.categories
			if categories == nil {
				categories = &fakeCategories{categories: testCategories()}
			}
			articles := tt.articles
			if articles == nil {
				articles = &fakeArticles{}
			}
			sink := &fakeSink{err: tt.sinkErr}

			f := testFeed()
			if tt.mutate != nil {
				tt.mutate(f)
			}

			g := NewGenerator(categories, articles, testRenderer(), sink, nil)
			_, err := g.Generate(context.Background(), f)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.sinkErr == nil && sink.calls != 0 {
				t.Errorf("nothing should be written on error, got %d writes", sink.calls)
			}
		})
	}
}

func TestGenerator_NoSink(t *testing.T) {
	g := NewGenerator(&fakeCategories{categories: testCategories()}, &fakeArticles{}, testRenderer(), nil, nil)

	if _, err := g.Generate(context.Background(), testFeed()); err == nil {
		t.Error("expected error without sink")
	}
	if _, err := g.Preview(context.Background(), testFeed()); err != nil {
		t.Errorf("Preview should work without sink: %v", err)
	}
}

func TestGenerator_ContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("run_id", "r-1")
	ctx := telemetry.WithLogger(context.Background(), logger)

	g := newTestGenerator(&fakeArticles{articles: []domain.Article{testArticle()}}, &fakeSink{})
	if _, err := g.Generate(ctx, testFeed()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `"run_id":"r-1"`) {
		t.Errorf("expected context logger to be used, got %q", buf.String())
	}
}
