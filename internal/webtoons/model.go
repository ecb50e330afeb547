package webtoons

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"pblstudio/internal/docstore"
)

const (
	keyID         = docstore.IDKey
	keyWebtoonID  = "webtoon_id"
	keyPageNumber = "page_number"
	keyURL        = "url"
	keySlugline   = "slugline"
	keyTitle      = "title"
	keyAuthor     = "author"
	keyPages      = "pages"
	keyName       = "name"
)

var ErrMissingField = errors.New("missing field")

// Page is one image of a webtoon, numbered from 1.
type Page struct {
	ID         string
	WebtoonID  string
	PageNumber int
	URL        string
}

// Webtoon is a published comic and its ordered pages.
type Webtoon struct {
	ID       string
	Slugline string
	Title    string
	Author   string
	Pages    []Page
}

type Project struct {
	ID       string
	Slugline string
	Name     string
}

func (p Page) DocumentID() string { return p.ID }

func (p Page) ToDocument() docstore.Document {
	return docstore.Document{
		keyID:         p.ID,
		keyWebtoonID:  p.WebtoonID,
		keyPageNumber: p.PageNumber,
		keyURL:        p.URL,
	}
}

func PageFromDocument(doc docstore.Document) (Page, error) {
	var (
		page Page
		err  error
	)
	if page.ID, err = stringField(doc, keyID); err != nil {
		return Page{}, err
	}
	if page.WebtoonID, err = stringField(doc, keyWebtoonID); err != nil {
		return Page{}, err
	}
	if page.PageNumber, err = intField(doc, keyPageNumber); err != nil {
		return Page{}, err
	}
	if page.URL, err = stringField(doc, keyURL); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (w Webtoon) DocumentID() string { return w.ID }

// ToDocument nests each page document under "pages".
func (w Webtoon) ToDocument() docstore.Document {
	pages := make([]any, 0, len(w.Pages))
	for _, page := range w.Pages {
		pages = append(pages, page.ToDocument())
	}

	return docstore.Document{
		keyID:       w.ID,
		keySlugline: w.Slugline,
		keyTitle:    w.Title,
		keyAuthor:   w.Author,
		keyPages:    pages,
	}
}

// WebtoonFromDocument rebuilds a webtoon and its pages. A document without
// pages yields a nil Pages slice.
func WebtoonFromDocument(doc docstore.Document) (Webtoon, error) {
	var (
		webtoon Webtoon
		err     error
	)
	if webtoon.ID, err = stringField(doc, keyID); err != nil {
		return Webtoon{}, err
	}
	if webtoon.Slugline, err = stringField(doc, keySlugline); err != nil {
		return Webtoon{}, err
	}
	if webtoon.Title, err = stringField(doc, keyTitle); err != nil {
		return Webtoon{}, err
	}
	if webtoon.Author, err = stringField(doc, keyAuthor); err != nil {
		return Webtoon{}, err
	}

	rawPages, err := documentList(doc[keyPages])
	if err != nil {
		return Webtoon{}, fmt.Errorf("field %q: %w", keyPages, err)
	}
	for idx, raw := range rawPages {
		page, err := PageFromDocument(raw)
		if err != nil {
			return Webtoon{}, fmt.Errorf("page %d: %w", idx, err)
		}
		webtoon.Pages = append(webtoon.Pages, page)
	}

	return webtoon, nil
}

func (p Project) DocumentID() string { return p.ID }

func (p Project) ToDocument() docstore.Document {
	return docstore.Document{
		keyID:       p.ID,
		keySlugline: p.Slugline,
		keyName:     p.Name,
	}
}

func ProjectFromDocument(doc docstore.Document) (Project, error) {
	var (
		project Project
		err     error
	)
	if project.ID, err = stringField(doc, keyID); err != nil {
		return Project{}, err
	}
	if project.Slugline, err = stringField(doc, keySlugline); err != nil {
		return Project{}, err
	}
	if project.Name, err = stringField(doc, keyName); err != nil {
		return Project{}, err
	}
	return project, nil
}

func stringField(doc docstore.Document, key string) (string, error) {
	raw, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingField, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	return value, nil
}

func intField(doc docstore.Document, key string) (int, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrMissingField, key)
	}

	switch value := raw.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("field %q: expected integer, got %v", key, value)
		}
		return int(value), nil
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected integer, got %T", key, raw)
	}
}

// documentList accepts the nested shapes produced in memory and by the JSON store.
func documentList(raw any) ([]docstore.Document, error) {
	switch list := raw.(type) {
	case nil:
		return nil, nil
	case []docstore.Document:
		return list, nil
	case []map[string]any:
		docs := make([]docstore.Document, 0, len(list))
		for _, item := range list {
			docs = append(docs, docstore.Document(item))
		}
		return docs, nil
	case []any:
		docs := make([]docstore.Document, 0, len(list))
		for idx, item := range list {
			switch typed := item.(type) {
			case docstore.Document:
				docs = append(docs, typed)
			case map[string]any:
				docs = append(docs, docstore.Document(typed))
			default:
				return nil, fmt.Errorf("item %d: expected document, got %T", idx, item)
			}
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
}
