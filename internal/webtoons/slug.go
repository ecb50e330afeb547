package webtoons

import "strings"

var sluglineReplacer = strings.NewReplacer(
	" ", "-",
	"'", "",
	"?", "",
	"!", "",
)

// Slugline derives the URL identifier of a title: lowercase, spaces become
// hyphens, apostrophes and question and exclamation marks are dropped.
// Other URL-unsafe characters pass through unchanged.
func Slugline(title string) string {
	return sluglineReplacer.Replace(strings.ToLower(title))
}
