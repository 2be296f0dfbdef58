package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Feed — определение YML-фида.
//
// Feed хранит параметры задачи генерации: какие категории и материалы
// попадают в фид и как заполняется информация о магазине.
// Каждая генерация (Run) строит фид по текущим параметрам.
type Feed struct {
	// ID — уникальный идентификатор фида.
	ID uuid.UUID `json:"id"`

	// Name — имя фида для удобства (например, "repair-services").
	Name string `json:"name"`

	// Params — параметры генерации.
	Params FeedParams `json:"params"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// Режимы фильтрации категорий.
const (
	CategoryFilterExclude = 0
	CategoryFilterInclude = 1
)

// Режимы фильтрации материалов.
const (
	ArticleFilterExclude = 0
	ArticleFilterInclude = 1
)

// FeedParams — параметры генерации фида.
type FeedParams struct {
	// Count — максимальное число материалов (0 — без ограничения).
	Count int `json:"count" yaml:"count"`

	// CatIDs — выбранные категории. Первая категория задаёт имя файла
	// и значения по умолчанию для информации о магазине.
	CatIDs []int64 `json:"catid" yaml:"catid"`

	// CategoryFilteringType — 1: только выбранные категории, 0: все кроме них.
	CategoryFilteringType int `json:"category_filtering_type" yaml:"category_filtering_type"`

	// ShowChildCategoryArticles — включать материалы дочерних категорий.
	ShowChildCategoryArticles bool `json:"show_child_category_articles" yaml:"show_child_category_articles"`

	// Levels — глубина дочерних категорий. Дочерние категории добавляются
	// только при ShowChildCategoryArticles и Levels > 0.
	Levels int `json:"levels" yaml:"levels"`

	// ArticleFilterMode — 0: исключить ExcludedArticles, 1: только IncludedArticles.
	ArticleFilterMode int `json:"ex_or_include_articles" yaml:"ex_or_include_articles"`

	IncludedArticles []int64 `json:"included_articles,omitempty" yaml:"included_articles,omitempty"`
	ExcludedArticles []int64 `json:"excluded_articles,omitempty" yaml:"excluded_articles,omitempty"`

	// Информация о магазине. Пустые значения берутся из первой категории.
	FeedName        string `json:"feed_name,omitempty" yaml:"feed_name,omitempty"`
	FeedLink        string `json:"feed_link,omitempty" yaml:"feed_link,omitempty"`
	FeedDescription string `json:"feed_description,omitempty" yaml:"feed_description,omitempty"`

	// Currency — валюта фида (RUR, USD, ...).
	Currency string `json:"currency" yaml:"currency"`

	// YearCom — год начала работы компании (для параметра "Годы опыта").
	YearCom int `json:"year_com,omitempty" yaml:"year_com,omitempty"`

	// City — регион (параметр "Регион").
	City string `json:"city,omitempty" yaml:"city,omitempty"`
}

// Ошибки валидации параметров фида.
var (
	ErrNoCategories     = errors.New("feed has no categories")
	ErrNegativeCount    = errors.New("count must not be negative")
	ErrNegativeLevels   = errors.New("levels must not be negative")
	ErrInvalidFilterArg = errors.New("filter mode must be 0 or 1")
)

// DefaultFeedParams возвращает параметры по умолчанию.
func DefaultFeedParams() FeedParams {
	return FeedParams{
		CategoryFilteringType: CategoryFilterInclude,
		ArticleFilterMode:     ArticleFilterExclude,
		Currency:              "RUR",
	}
}

// Validate проверяет параметры фида.
func (p *FeedParams) Validate() error {
	if len(p.CatIDs) == 0 {
		return ErrNoCategories
	}
	if p.Count < 0 {
		return ErrNegativeCount
	}
	if p.Levels < 0 {
		return ErrNegativeLevels
	}
	if !validMode(p.CategoryFilteringType) || !validMode(p.ArticleFilterMode) {
		return ErrInvalidFilterArg
	}
	return nil
}

// PrimaryCatID возвращает первую выбранную категорию.
func (p *FeedParams) PrimaryCatID() int64 {
	if len(p.CatIDs) == 0 {
		return 0
	}
	return p.CatIDs[0]
}

func validMode(v int) bool {
	return v == 0 || v == 1
}
