package domain

// Category — категория материалов CMS.
//
// Категории образуют дерево: у каждой категории есть родитель,
// кроме корня (ParentID == 0 или Level == 0).
type Category struct {
	// ID — идентификатор категории в CMS.
	ID int64 `json:"id"`

	// ParentID — идентификатор родительской категории.
	ParentID int64 `json:"parent_id"`

	// Level — глубина в дереве (корень — 0, категории верхнего уровня — 1).
	Level int `json:"level"`

	// Title — заголовок категории.
	Title string `json:"title"`

	// Alias — псевдоним (используется в URL и имени файла фида).
	Alias string `json:"alias"`

	// Path — маршрут категории, например "services/repair".
	Path string `json:"path"`

	// Description — HTML-описание категории.
	Description string `json:"description,omitempty"`

	// Published — опубликована ли категория.
	Published bool `json:"published"`
}

// IsRoot возвращает true для корня дерева категорий.
func (c *Category) IsRoot() bool {
	return c.Level == 0 || c.Alias == "root"
}
