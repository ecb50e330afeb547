package components

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"pblstudio/internal/markdown"
	"pblstudio/internal/web/appcore"
)

const siteName = "Public Studio"

type navLink struct {
	section appcore.NavSection
	label   string
	href    string
}

var navLinks = []navLink{
	{section: appcore.NavHome, label: "Home", href: "/"},
	{section: appcore.NavProjects, label: "Projects", href: "/projects"},
	{section: appcore.NavWebtoons, label: "Webtoons", href: "/webtoons"},
}

func pageTitle(title string) string {
	if title == "" || title == siteName {
		return siteName
	}
	return title + " | " + siteName
}

// webtoonHref escapes the slugline so titles such as "C# Basics" or
// "50% Off" still resolve to their detail page.
func webtoonHref(slugline string) string {
	return "/webtoons/" + url.PathEscape(slugline)
}

func projectHref(slugline string) string {
	return "/" + url.PathEscape(slugline)
}

func pageAnchor(number int) string {
	return "page-" + strconv.Itoa(number)
}

func pageLabel(number int) string {
	return "Page " + strconv.Itoa(number)
}

// chromaStyle inlines the syntax highlighting theme. templ keeps <style>
// bodies static, so the generated CSS goes through templ.Raw.
func chromaStyle() templ.Component {
	return templ.Raw("<style>" + string(markdown.ChromaCSS()) + "</style>")
}
