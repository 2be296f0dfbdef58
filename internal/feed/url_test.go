package feed

import "testing"

func TestCleanImageURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"images/a.jpg", "images/a.jpg"},
		{"images/a.jpg#joomlaImage://local-images/a.jpg?width=800&height=600", "images/a.jpg"},
		{" images/a.jpg ", "images/a.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanImageURL(tt.in); got != tt.want {
			t.Errorf("CleanImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	const site = "https://example.ru/"

	tests := []struct {
		link string
		want string
	}{
		{"", ""},
		{"images/a.jpg", "https://example.ru/images/a.jpg"},
		{"/images/a.jpg", "https://example.ru/images/a.jpg"},
		{"http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		if got := AbsoluteURL(site, tt.link); got != tt.want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestAbsoluteURL_SiteSubpath(t *testing.T) {
	const site = "https://example.ru/site"

	tests := []struct {
		link string
		want string
	}{
		{"/images/a.jpg", "https://example.ru/images/a.jpg"},
		{"images/a.jpg", "https://example.ru/site/images/a.jpg"},
	}

	for _, tt := range tests {
		if got := AbsoluteURL(site, tt.link); got != tt.want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}

	// Без хоста в адресе сайта путь просто дописывается.
	if got := AbsoluteURL("", "/images/a.jpg"); got != "/images/a.jpg" {
		t.Errorf("expected plain path without site host, got %q", got)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		parts []string
		want  string
	}{
		{"article", "https://example.ru", []string{"services/repair", "tap"}, "https://example.ru/services/repair/tap"},
		{"slashes trimmed", "https://example.ru/", []string{"/feed/"}, "https://example.ru/feed"},
		{"empty parts skipped", "https://example.ru", []string{"", "tap", ""}, "https://example.ru/tap"},
		{"no parts", "https://example.ru/", nil, "https://example.ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinURL(tt.base, tt.parts...); got != tt.want {
				t.Errorf("JoinURL = %q, want %q", got, tt.want)
			}
		})
	}
}
