package feed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shaiso/ymlfeed/internal/catalog"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// Site — данные сайта, общие для всех фидов.
type Site struct {
	// URL — адрес сайта, например "https://example.ru".
	URL string

	// Name — название сайта (элемент company).
	Name string

	// Email — адрес отправителя сайта (элемент email).
	Email string

	// Location — часовой пояс сайта для даты каталога.
	Location *time.Location
}

// DefaultStaticParams — характеристики, одинаковые для всех предложений.
func DefaultStaticParams() []Param {
	return []Param{
		{Name: "Число отзывов", Value: "1.935"},
		{Name: "Выезд на дом", Value: "да"},
		{Name: "Бригада", Value: "да"},
		{Name: "Работа по договору", Value: "да"},
		{Name: "Наличный расчет", Value: "да"},
		{Name: "Безналичный расчет", Value: "да"},
	}
}

// salesNotesUnknown — значение поля salesnotes, означающее "не задано".
const salesNotesUnknown = "unknow"

// catalogDateLayout — RFC 822 с четырёхзначным годом и числовой зоной.
const catalogDateLayout = time.RFC1123Z

// RendererConfig — конфигурация Renderer.
type RendererConfig struct {
	Site      Site
	Variables Variables

	// StaticParams — общие характеристики; nil — DefaultStaticParams().
	StaticParams []Param

	Now func() time.Time
}

// Renderer собирает документ YML.
type Renderer struct {
	site         Site
	vars         Variables
	staticParams []Param
	now          func() time.Time
}

// NewRenderer создаёт Renderer.
func NewRenderer(cfg RendererConfig) *Renderer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Site.Location == nil {
		cfg.Site.Location = time.UTC
	}
	static := cfg.StaticParams
	if static == nil {
		static = DefaultStaticParams()
	}
	return &Renderer{
		site:         cfg.Site,
		vars:         cfg.Variables,
		staticParams: static,
		now:          now,
	}
}

// Input — данные для сборки одного фида.
type Input struct {
	Params   *domain.FeedParams
	Tree     *catalog.Tree
	CatIDs   []int64
	Articles []domain.Article
}

// Build собирает документ. Первая категория фида должна быть в дереве.
func (r *Renderer) Build(in Input) (*Catalog, error) {
	primary, err := in.Tree.Get(in.Params.PrimaryCatID())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimaryCategory, err)
	}

	now := r.now().In(r.site.Location)

	offers := make([]Offer, 0, len(in.Articles))
	for i := range in.Articles {
		offers = append(offers, r.offer(&in.Articles[i], in.Params, now))
	}

	return &Catalog{
		Date: now.Format(catalogDateLayout),
		Shop: Shop{
			Name:        CleanText(firstNonEmpty(in.Params.FeedName, primary.Title)),
			Company:     CleanText(r.site.Name),
			URL:         JoinURL(r.site.URL, firstNonEmpty(in.Params.FeedLink, primary.Alias)),
			Email:       r.site.Email,
			Description: r.shopDescription(in.Params, primary),
			Currencies:  []Currency{{ID: in.Params.Currency, Rate: "1"}},
			Categories:  r.categories(in),
			Offers:      offers,
		},
	}, nil
}

// Render собирает и сериализует документ.
func (r *Renderer) Render(in Input) ([]byte, int, error) {
	doc, err := r.Build(in)
	if err != nil {
		return nil, 0, err
	}
	body, err := doc.Marshal()
	if err != nil {
		return nil, 0, err
	}
	return body, len(doc.Shop.Offers), nil
}

// shopDescription — описание из параметров, иначе описание первой категории
// без разметки.
func (r *Renderer) shopDescription(params *domain.FeedParams, primary *domain.Category) string {
	if params.FeedDescription != "" {
		return CleanText(r.vars.Apply(params.FeedDescription))
	}
	return CleanText(r.vars.Apply(StripTags(primary.Description)))
}

// categories возвращает категории фида: выбранные (и раскрытые) в обоих
// режимах фильтрации. Неизвестные дереву категории пропускаются.
func (r *Renderer) categories(in Input) []Category {
	ids := in.CatIDs
	result := make([]Category, 0, len(ids))
	for _, id := range ids {
		cat, err := in.Tree.Get(id)
		if err != nil {
			continue
		}
		c := Category{ID: cat.ID, Title: CleanText(cat.Title)}
		if parentID, ok := in.Tree.ParentID(id); ok {
			c.ParentID = parentID
		}
		result = append(result, c)
	}
	return result
}

// offer строит предложение из материала.
func (r *Renderer) offer(a *domain.Article, params *domain.FeedParams, now time.Time) Offer {
	price := a.Field(domain.FieldPrice)

	salesNotes := a.Field(domain.FieldSalesNotes).Value
	if salesNotes == salesNotesUnknown {
		salesNotes = ""
	}

	experience := 0
	if params.YearCom > 0 {
		experience = now.Year() - params.YearCom
	}

	offerParams := make([]Param, 0, 5+len(r.staticParams))
	offerParams = append(offerParams,
		Param{Name: "Рейтинг", Value: formatRating(a.Rating)},
		Param{Name: "Число отзывов", Value: strconv.Itoa(a.RatingCount)},
		Param{Name: "Регион", Value: params.City},
		Param{Name: "Годы опыта", Value: strconv.Itoa(experience)},
		Param{Name: "Конверсия", Value: strconv.Itoa(a.RatingCount)},
	)
	offerParams = append(offerParams, r.staticParams...)

	var currency string
	if price.Value != "" {
		currency = price.Note
	}

	return Offer{
		ID:          a.ID,
		Name:        CleanText(a.Title),
		CategoryID:  a.CatID,
		URL:         JoinURL(r.site.URL, a.CategoryRoute, a.Alias),
		Price:       Price{From: true, Value: price.Value},
		CurrencyID:  currency,
		SalesNotes:  salesNotes,
		Delivery:    true,
		Picture:     AbsoluteURL(r.site.URL, CleanImageURL(a.Image())),
		Description: Describe(a.Description(), r.vars),
		Vendor:      CleanText(a.Author),
		Params:      offerParams,
	}
}

// formatRating форматирует рейтинг без лишних нулей: 4.5, 5, 0.
func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
