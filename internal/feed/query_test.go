package feed

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shaiso/ymlfeed/internal/catalog"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
)

// testCategories — дерево:
//
//	root(1)
//	├── services(2)
//	│   └── repair(3)
//	│       └── plumbing(5)
//	│           └── pipes(7)
//	└── blog(8)
func testCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, ParentID: 0, Level: 0, Alias: "root", Published: true},
		{ID: 2, ParentID: 1, Level: 1, Alias: "services", Title: "Services", Published: true},
		{ID: 3, ParentID: 2, Level: 2, Alias: "repair", Title: "Repair",
			Description: "<p>Ремонт&nbsp;квартир</p>", Published: true},
		{ID: 5, ParentID: 3, Level: 3, Alias: "plumbing", Title: "Plumbing", Published: true},
		{ID: 7, ParentID: 5, Level: 4, Alias: "pipes", Title: "Pipes", Published: true},
		{ID: 8, ParentID: 1, Level: 1, Alias: "blog", Title: "Blog", Published: true},
	}
}

func testTree(t *testing.T) *catalog.Tree {
	t.Helper()
	tree, err := catalog.BuildTree(testCategories())
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func TestResolveCategories(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		name   string
		params domain.FeedParams
		want   []int64
	}{
		{
			name:   "children disabled",
			params: domain.FeedParams{CatIDs: []int64{3}, Levels: 2},
			want:   []int64{3},
		},
		{
			name:   "levels zero keeps selection",
			params: domain.FeedParams{CatIDs: []int64{3, 3, 8}, ShowChildCategoryArticles: true},
			want:   []int64{3, 8},
		},
		{
			name:   "one level",
			params: domain.FeedParams{CatIDs: []int64{3}, ShowChildCategoryArticles: true, Levels: 1},
			want:   []int64{3, 5},
		},
		{
			name:   "deep",
			params: domain.FeedParams{CatIDs: []int64{2, 8}, ShowChildCategoryArticles: true, Levels: 5},
			want:   []int64{2, 8, 3, 5, 7},
		},
		{
			name:   "no categories",
			params: domain.FeedParams{ShowChildCategoryArticles: true, Levels: 1},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCategories(&tt.params, tree)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		params domain.FeedParams
		catIDs []int64
		want   repo.ArticleQuery
	}{
		{
			name: "include categories, exclude articles",
			params: domain.FeedParams{
				Count:                 10,
				CategoryFilteringType: domain.CategoryFilterInclude,
				ArticleFilterMode:     domain.ArticleFilterExclude,
				ExcludedArticles:      []int64{4, 4, 9},
			},
			catIDs: []int64{3, 5},
			want: repo.ArticleQuery{
				CategoryIDs:     []int64{3, 5},
				CategoryInclude: true,
				ArticleIDs:      []int64{4, 9},
				ArticleInclude:  false,
				Limit:           10,
			},
		},
		{
			name: "exclude categories, include articles",
			params: domain.FeedParams{
				CategoryFilteringType: domain.CategoryFilterExclude,
				ArticleFilterMode:     domain.ArticleFilterInclude,
				IncludedArticles:      []int64{11, 12},
				ExcludedArticles:      []int64{99},
			},
			catIDs: []int64{8},
			want: repo.ArticleQuery{
				CategoryIDs:     []int64{8},
				CategoryInclude: false,
				ArticleIDs:      []int64{11, 12},
				ArticleInclude:  true,
			},
		},
		{
			name: "include mode with empty list drops filter",
			params: domain.FeedParams{
				CategoryFilteringType: domain.CategoryFilterInclude,
				ArticleFilterMode:     domain.ArticleFilterInclude,
				ExcludedArticles:      []int64{99},
			},
			catIDs: []int64{3},
			want: repo.ArticleQuery{
				CategoryIDs:     []int64{3},
				CategoryInclude: true,
			},
		},
		{
			name: "exclude mode with empty list",
			params: domain.FeedParams{
				CategoryFilteringType: domain.CategoryFilterInclude,
				ArticleFilterMode:     domain.ArticleFilterExclude,
				IncludedArticles:      []int64{1},
			},
			catIDs: []int64{3},
			want: repo.ArticleQuery{
				CategoryIDs:     []int64{3},
				CategoryInclude: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(&tt.params, tt.catIDs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
