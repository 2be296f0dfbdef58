package feed

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Variable — текстовая переменная: все вхождения Key заменяются на Value.
type Variable struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Variables — набор текстовых переменных, подставляемых в описания.
type Variables struct {
	// List — переменные в порядке объявления.
	List []Variable

	// Nesting — сколько раз повторять подстановку (для переменных,
	// значения которых содержат другие переменные). Минимум 1.
	Nesting int
}

// Apply подставляет переменные в текст.
//
// Переменные применяются в обратном порядке объявления: переменная,
// объявленная позже, заменяется раньше и может использовать более ранние.
// Подстановка повторяется Nesting раз или до стабилизации текста.
func (v Variables) Apply(text string) string {
	if len(v.List) == 0 || text == "" {
		return text
	}

	nesting := v.Nesting
	if nesting < 1 {
		nesting = 1
	}

	for range nesting {
		next := text
		for i := len(v.List) - 1; i >= 0; i-- {
			variable := v.List[i]
			if variable.Key == "" {
				continue
			}
			next = strings.ReplaceAll(next, variable.Key, variable.Value)
		}
		if next == text {
			break
		}
		text = next
	}

	return text
}

// StripTags удаляет HTML-разметку и возвращает текст
// с раскодированными сущностями. Пробелы и переводы строк по краям
// отбрасываются: в YML они попали бы внутрь <description>.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Некорректный HTML — оставляем текст без разметки как есть
		return strings.TrimSpace(html.UnescapeString(s))
	}

	return strings.TrimSpace(doc.Text())
}

// nbspReplacer заменяет неразрывные пробелы обычными.
var nbspReplacer = strings.NewReplacer("&nbsp;", " ", "\u00a0", " ")

// CleanText готовит текст для XML: раскодирует уже закодированные
// сущности (чтобы не кодировать их повторно) и заменяет &nbsp; пробелом.
// Экранирование выполняет encoding/xml при сериализации.
func CleanText(s string) string {
	return nbspReplacer.Replace(html.UnescapeString(nbspReplacer.Replace(s)))
}

// Describe готовит описание: переменные, удаление разметки, пробелы.
// StripTags уже раскодирует сущности, поэтому повторно они не раскодируются.
func Describe(s string, vars Variables) string {
	return nbspReplacer.Replace(StripTags(vars.Apply(s)))
}
