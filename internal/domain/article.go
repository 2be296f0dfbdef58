package domain

// Article — опубликованный материал CMS, из которого строится offer.
type Article struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Alias         string `json:"alias"`
	CatID         int64  `json:"catid"`
	CategoryRoute string `json:"category_route"`
	IntroText     string `json:"introtext,omitempty"`
	MetaDesc      string `json:"metadesc,omitempty"`
	Author        string `json:"author,omitempty"`

	// Images — изображения вступительного и полного текста.
	Images ArticleImages `json:"images"`

	// Rating — средний рейтинг, RatingCount — число голосов.
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`

	// Fields — значения пользовательских полей по имени поля.
	Fields map[string]FieldValue `json:"fields,omitempty"`
}

// ArticleImages — JSON-поле images материала.
type ArticleImages struct {
	ImageIntro    string `json:"image_intro"`
	ImageFulltext string `json:"image_fulltext"`
}

// FieldValue — значение пользовательского поля материала.
type FieldValue struct {
	// Value — значение поля.
	Value string `json:"value"`

	// Note — примечание поля (для поля price здесь хранится валюта).
	Note string `json:"note,omitempty"`
}

// Имена пользовательских полей, которые попадают в offer.
const (
	FieldPrice      = "price"
	FieldSalesNotes = "salesnotes"
)

// Field возвращает значение поля name или пустое значение.
func (a *Article) Field(name string) FieldValue {
	if a.Fields == nil {
		return FieldValue{}
	}
	return a.Fields[name]
}

// Image возвращает изображение для фида: вступительное, иначе полное.
func (a *Article) Image() string {
	if a.Images.ImageIntro != "" {
		return a.Images.ImageIntro
	}
	return a.Images.ImageFulltext
}

// Description возвращает исходный текст описания: вступительный текст,
// иначе meta description.
func (a *Article) Description() string {
	if a.IntroText != "" {
		return a.IntroText
	}
	return a.MetaDesc
}
