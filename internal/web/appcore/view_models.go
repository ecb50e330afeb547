package appcore

import (
	"html/template"

	"pblstudio/internal/webtoons"
)

type NavSection string

const (
	NavHome     NavSection = "home"
	NavProjects NavSection = "projects"
	NavWebtoons NavSection = "webtoons"
)

// RootLayoutView is what the shared page chrome needs from every page view.
type RootLayoutView interface {
	LayoutPageTitle() string
	LayoutDescription() string
	LayoutNavSection() NavSection
}

type HomePageView struct {
	PageTitle   string
	Description string
	Body        template.HTML
}

type ProjectsPageView struct {
	PageTitle string
	Projects  []webtoons.Project
}

type WebtoonsPageView struct {
	PageTitle string
	Webtoons  []webtoons.WebtoonListItem
	Total     int
}

type WebtoonPageView struct {
	PageTitle string
	Slugline  string
	Webtoon   webtoons.ViewableWebtoon
}

type PageField struct {
	Name   string
	Number int
	Value  string
}

// NewWebtoonPageView backs the creation form, both blank and after a
// rejected submission.
type NewWebtoonPageView struct {
	PageTitle string
	Title     string
	Author    string
	Pages     []PageField
	Errors    []string
}

type NotFoundPageView struct {
	PageTitle string
	Path      string
}

func NewNotFoundPageView(path string) NotFoundPageView {
	if path == "" {
		path = "/"
	}
	return NotFoundPageView{PageTitle: "404 Not Found", Path: path}
}

func newNewWebtoonPageView(form webtoons.PublishForm, errors []string) NewWebtoonPageView {
	pages := make([]PageField, 0, webtoons.MaxPages)
	for idx, value := range form.PageURLs {
		pages = append(pages, PageField{
			Name:   webtoons.PageFieldName(idx + 1),
			Number: idx + 1,
			Value:  value,
		})
	}
	return NewWebtoonPageView{
		PageTitle: "New webtoon",
		Title:     form.Title,
		Author:    form.Author,
		Pages:     pages,
		Errors:    errors,
	}
}

func (v HomePageView) LayoutPageTitle() string { return v.PageTitle }

func (v HomePageView) LayoutDescription() string { return v.Description }

func (v HomePageView) LayoutNavSection() NavSection { return NavHome }

func (v ProjectsPageView) LayoutPageTitle() string { return v.PageTitle }

func (v ProjectsPageView) LayoutDescription() string { return "" }

func (v ProjectsPageView) LayoutNavSection() NavSection { return NavProjects }

func (v WebtoonsPageView) LayoutPageTitle() string { return v.PageTitle }

func (v WebtoonsPageView) LayoutDescription() string { return "" }

func (v WebtoonsPageView) LayoutNavSection() NavSection { return NavWebtoons }

func (v WebtoonPageView) LayoutPageTitle() string { return v.PageTitle }

func (v WebtoonPageView) LayoutDescription() string { return "" }

func (v WebtoonPageView) LayoutNavSection() NavSection { return NavWebtoons }

func (v NewWebtoonPageView) LayoutPageTitle() string { return v.PageTitle }

func (v NewWebtoonPageView) LayoutDescription() string { return "" }

func (v NewWebtoonPageView) LayoutNavSection() NavSection { return NavWebtoons }

func (v NotFoundPageView) LayoutPageTitle() string { return v.PageTitle }

func (v NotFoundPageView) LayoutDescription() string { return "" }

func (v NotFoundPageView) LayoutNavSection() NavSection { return "" }
