package catalog

import (
	"fmt"

	"github.com/shaiso/ymlfeed/internal/domain"
)

// Node — узел дерева категорий.
type Node struct {
	// Category — категория CMS.
	Category *domain.Category

	// Parent — родительский узел (nil для категорий, чей родитель — корень
	// или отсутствует в списке).
	Parent *Node

	// Children — дочерние узлы в порядке исходного списка.
	Children []*Node
}

// Tree — дерево категорий.
type Tree struct {
	// Nodes — все узлы (categoryID → Node).
	Nodes map[int64]*Node

	// Roots — узлы верхнего уровня.
	Roots []*Node
}

// BuildTree строит дерево из плоского списка категорий.
//
// Корневая категория CMS (Level == 0) в дерево не попадает:
// её дочерние категории становятся корнями дерева.
func BuildTree(categories []domain.Category) (*Tree, error) {
	t := &Tree{
		Nodes: make(map[int64]*Node, len(categories)),
		Roots: make([]*Node, 0),
	}

	// Первый проход: создаём узлы
	for i := range categories {
		cat := &categories[i]
		if cat.IsRoot() {
			continue
		}
		if _, exists := t.Nodes[cat.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCategory, cat.ID)
		}
		t.Nodes[cat.ID] = &Node{Category: cat, Children: make([]*Node, 0)}
	}

	// Второй проход: связываем с родителями
	for i := range categories {
		cat := &categories[i]
		node, ok := t.Nodes[cat.ID]
		if !ok || node.Category != cat {
			continue
		}

		parent, ok := t.Nodes[cat.ParentID]
		if !ok {
			t.Roots = append(t.Roots, node)
			continue
		}
		node.Parent = parent
		parent.Children = append(parent.Children, node)
	}

	if err := t.checkCycles(); err != nil {
		return nil, err
	}

	return t, nil
}

// checkCycles проверяет, что у каждой категории конечная цепочка предков.
func (t *Tree) checkCycles() error {
	for id, node := range t.Nodes {
		steps := 0
		for p := node.Parent; p != nil; p = p.Parent {
			steps++
			if p == node || steps > len(t.Nodes) {
				return fmt.Errorf("%w: %d", ErrCyclicParent, id)
			}
		}
	}
	return nil
}

// Get возвращает категорию по ID.
func (t *Tree) Get(id int64) (*domain.Category, error) {
	node, ok := t.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	return node.Category, nil
}

// ParentID возвращает ID родителя для атрибута parentId.
// Для категорий верхнего уровня возвращает false.
func (t *Tree) ParentID(id int64) (int64, bool) {
	node, ok := t.Nodes[id]
	if !ok || node.Parent == nil {
		return 0, false
	}
	return node.Parent.Category.ID, true
}

// Descendants возвращает опубликованных потомков категории id
// не глубже levels уровней (levels <= 0 — без ограничения).
//
// Обход в ширину: сначала дети, затем внуки и т.д.
// Ветки неопубликованных категорий не обходятся.
func (t *Tree) Descendants(id int64, levels int) []int64 {
	start, ok := t.Nodes[id]
	if !ok {
		return nil
	}

	type item struct {
		node  *Node
		depth int
	}

	var result []int64
	queue := []item{{node: start, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if levels > 0 && cur.depth >= levels {
			continue
		}

		for _, child := range cur.node.Children {
			if !child.Category.Published {
				continue
			}
			result = append(result, child.Category.ID)
			queue = append(queue, item{node: child, depth: cur.depth + 1})
		}
	}

	return result
}

// Expand возвращает выбранные категории вместе с потомками
// не глубже levels уровней. Порядок: выбранные категории,
// затем потомки каждой из них; дубликаты отбрасываются.
func (t *Tree) Expand(catIDs []int64, levels int) []int64 {
	seen := make(map[int64]bool, len(catIDs))
	result := make([]int64, 0, len(catIDs))

	add := func(id int64) {
		if seen[id] {
			return
		}
		seen[id] = true
		result = append(result, id)
	}

	for _, id := range catIDs {
		add(id)
	}
	for _, id := range catIDs {
		for _, child := range t.Descendants(id, levels) {
			add(child)
		}
	}

	return result
}
