package feed

import (
	"github.com/shaiso/ymlfeed/internal/catalog"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
)

// ResolveCategories возвращает категории фида.
//
// Дочерние категории добавляются, только если включён
// ShowChildCategoryArticles и задано Levels > 0.
func ResolveCategories(params *domain.FeedParams, tree *catalog.Tree) []int64 {
	if len(params.CatIDs) == 0 {
		return nil
	}
	if !params.ShowChildCategoryArticles || params.Levels <= 0 || tree == nil {
		return dedup(params.CatIDs)
	}
	return tree.Expand(params.CatIDs, params.Levels)
}

// BuildQuery строит запрос материалов для фида.
//
// Фильтр материалов:
//   - режим исключения: исключаются ExcludedArticles;
//   - режим включения: только IncludedArticles; если список пуст,
//     фильтр не применяется;
//   - пустой список — без фильтра.
func BuildQuery(params *domain.FeedParams, catIDs []int64) repo.ArticleQuery {
	q := repo.ArticleQuery{
		CategoryIDs:     catIDs,
		CategoryInclude: params.CategoryFilteringType != domain.CategoryFilterExclude,
		Limit:           params.Count,
	}

	switch params.ArticleFilterMode {
	case domain.ArticleFilterInclude:
		if len(params.IncludedArticles) > 0 {
			q.ArticleIDs = dedup(params.IncludedArticles)
			q.ArticleInclude = true
		}
	default:
		if len(params.ExcludedArticles) > 0 {
			q.ArticleIDs = dedup(params.ExcludedArticles)
			q.ArticleInclude = false
		}
	}

	return q
}

// dedup убирает дубликаты, сохраняя порядок.
func dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
