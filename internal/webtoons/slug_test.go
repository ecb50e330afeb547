package webtoons

import "testing"

func TestSlugline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{title: "My Comic", want: "my-comic"},
		{title: "Who's There?", want: "whos-there"},
		{title: "Wow!", want: "wow"},
		{title: "already-slugged", want: "already-slugged"},
		{title: "Two  Spaces", want: "two--spaces"},
		{title: "Café & Co", want: "café-&-co"},
		{title: "", want: ""},
	}

	for _, tc := range tests {
		if got := Slugline(tc.title); got != tc.want {
			t.Fatalf("Slugline(%q): expected %q, got %q", tc.title, tc.want, got)
		}
	}
}
