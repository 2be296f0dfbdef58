package catalog

import "errors"

// Ошибки построения дерева категорий.
var (
	// ErrDuplicateCategory — несколько категорий с одинаковым ID.
	ErrDuplicateCategory = errors.New("duplicate category id")

	// ErrCyclicParent — категория оказалась собственным предком.
	ErrCyclicParent = errors.New("cyclic category parent")

	// ErrCategoryNotFound — категории нет в дереве.
	ErrCategoryNotFound = errors.New("category not found")
)
