package feed

import "testing"

func TestVariables_Apply(t *testing.T) {
	tests := []struct {
		name string
		vars Variables
		in   string
		want string
	}{
		{
			name: "no variables",
			vars: Variables{},
			in:   "Ремонт в {city}",
			want: "Ремонт в {city}",
		},
		{
			name: "single variable",
			vars: Variables{List: []Variable{{Key: "{city}", Value: "Москве"}}},
			in:   "Ремонт в {city}, {city}",
			want: "Ремонт в Москве, Москве",
		},
		{
			name: "later variable uses earlier",
			vars: Variables{List: []Variable{
				{Key: "{city}", Value: "Москве"},
				{Key: "{slogan}", Value: "Лучшие мастера в {city}"},
			}},
			in:   "{slogan}!",
			want: "Лучшие мастера в Москве!",
		},
		{
			name: "earlier variable referencing later needs nesting",
			vars: Variables{List: []Variable{
				{Key: "{a}", Value: "{b}"},
				{Key: "{b}", Value: "x"},
			}},
			in:   "{a}",
			want: "{b}",
		},
		{
			name: "nesting resolves",
			vars: Variables{Nesting: 2, List: []Variable{
				{Key: "{a}", Value: "{b}"},
				{Key: "{b}", Value: "x"},
			}},
			in:   "{a}",
			want: "x",
		},
		{
			name: "empty key skipped",
			vars: Variables{List: []Variable{{Key: "", Value: "boom"}}},
			in:   "text",
			want: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vars.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"a &amp; b", "a & b"},
		{"<div><p>one</p><p>two</p></div>", "onetwo"},
		{"\n  <p>Hello</p>\n ", "Hello"},
		{"<p> inner  spaces </p>", "inner  spaces"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"a&nbsp;b", "a b"},
		{"a b", "a b"},
		{"&quot;quoted&quot;", `"quoted"`},
	}

	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	vars := Variables{List: []Variable{{Key: "{price}", Value: "100"}}}

	got := Describe("<p>Цена&nbsp;от {price} руб.</p>", vars)
	want := "Цена от 100 руб."
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}
