package feed

import (
	"net/url"
	"strings"
)

// joomlaImageMarker — служебный суффикс медиаменеджера CMS в адресе изображения:
// "images/a.jpg#joomlaImage://local-images/a.jpg?width=800&height=600".
const joomlaImageMarker = "#joomlaImage://"

// CleanImageURL удаляет служебный суффикс медиаменеджера из адреса изображения.
func CleanImageURL(img string) string {
	if i := strings.Index(img, joomlaImageMarker); i >= 0 {
		img = img[:i]
	}
	return strings.TrimSpace(img)
}

// IsAbsoluteURL проверяет, что ссылка содержит схему http или https.
func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// AbsoluteURL делает ссылку абсолютной относительно адреса сайта.
// Абсолютные ссылки возвращаются без изменений, пустая — пустой.
// Путь от корня ("/images/a.jpg") отсчитывается от хоста сайта,
// а не от его подкаталога; остальные пути дописываются к адресу сайта.
func AbsoluteURL(siteURL, link string) string {
	if link == "" {
		return ""
	}
	if IsAbsoluteURL(link) {
		return link
	}
	if strings.HasPrefix(link, "/") {
		base, err := url.Parse(siteURL)
		ref, refErr := url.Parse(link)
		if err == nil && refErr == nil && base.Host != "" {
			return base.ResolveReference(ref).String()
		}
	}
	return JoinURL(siteURL, link)
}

// JoinURL соединяет адрес сайта и части пути через одиночные "/".
// Пустые части пропускаются.
func JoinURL(base string, parts ...string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(base, "/"))

	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(p)
	}

	return sb.String()
}
