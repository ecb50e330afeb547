package webtoons

type WebtoonListItem struct {
	Slugline string
	Title    string
	Author   string
}

type ViewablePage struct {
	PageNumber int
	URL        string
}

type ViewableWebtoon struct {
	Title string
	Pages []ViewablePage
}

func PresentWebtoonsList(webtoons []Webtoon) []WebtoonListItem {
	items := make([]WebtoonListItem, 0, len(webtoons))
	for _, webtoon := range webtoons {
		items = append(items, WebtoonListItem{
			Slugline: webtoon.Slugline,
			Title:    webtoon.Title,
			Author:   webtoon.Author,
		})
	}
	return items
}

func PresentViewableWebtoon(webtoon Webtoon) ViewableWebtoon {
	pages := make([]ViewablePage, 0, len(webtoon.Pages))
	for _, page := range webtoon.Pages {
		pages = append(pages, ViewablePage{PageNumber: page.PageNumber, URL: page.URL})
	}
	return ViewableWebtoon{Title: webtoon.Title, Pages: pages}
}
