// Package catalog строит дерево категорий CMS и раскрывает выбранные
// категории в список с дочерними категориями.
//
// Дерево строится из плоского списка категорий (связи через ParentID):
//
//	tree, err := catalog.BuildTree(categories)
//	ids := tree.Expand([]int64{8, 12}, 2)
//
// Expand сохраняет порядок: сначала выбранные категории, затем
// их потомки в порядке обхода в ширину, без дубликатов.
package catalog
