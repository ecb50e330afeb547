package webtoons

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxPages is the number of page URL fields accepted by the publish form.
const MaxPages = 5

const (
	FieldTitle      = "title"
	FieldAuthor     = "author"
	FieldPagePrefix = "page"
)

// Store is the persistence the service needs.
type Store interface {
	Add(ctx context.Context, webtoon Webtoon) error
	FindAll(ctx context.Context) ([]Webtoon, error)
	FindBySlugline(ctx context.Context, slugline string) (Webtoon, error)
	Count(ctx context.Context) (int, error)
}

// ValidationError lists the user-facing reasons a submission was rejected.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid webtoon: " + strings.Join(e.Messages, "; ")
}

// AsValidationError unwraps a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// PublishForm is the submitted creation form.
type PublishForm struct {
	Title    string
	Author   string
	PageURLs [MaxPages]string
}

// PageFieldName returns the form field of the 1-based page slot n.
func PageFieldName(n int) string {
	return FieldPagePrefix + strconv.Itoa(n)
}

func ParsePublishForm(values url.Values) PublishForm {
	form := PublishForm{
		Title:  strings.TrimSpace(values.Get(FieldTitle)),
		Author: strings.TrimSpace(values.Get(FieldAuthor)),
	}
	for idx := range form.PageURLs {
		form.PageURLs[idx] = strings.TrimSpace(values.Get(PageFieldName(idx + 1)))
	}
	return form
}

// NonEmptyPageURLs returns the filled page slots in field order.
func (f PublishForm) NonEmptyPageURLs() []string {
	urls := make([]string, 0, MaxPages)
	for _, pageURL := range f.PageURLs {
		if pageURL != "" {
			urls = append(urls, pageURL)
		}
	}
	return urls
}

// BuildWebtoon assembles a webtoon from a form. Pages are numbered by their
// position among the non-empty slots, so blank slots leave no gaps.
func BuildWebtoon(form PublishForm, newID func() string) Webtoon {
	webtoon := Webtoon{
		ID:       newID(),
		Slugline: Slugline(form.Title),
		Title:    form.Title,
		Author:   form.Author,
	}
	for idx, pageURL := range form.NonEmptyPageURLs() {
		webtoon.Pages = append(webtoon.Pages, Page{
			ID:         newID(),
			WebtoonID:  webtoon.ID,
			PageNumber: idx + 1,
			URL:        pageURL,
		})
	}
	return webtoon
}

// ValidateWebtoon reports missing required fields and titles whose
// slugline would not be routable.
func ValidateWebtoon(webtoon Webtoon) []string {
	var messages []string
	switch {
	case strings.TrimSpace(webtoon.Title) == "":
		messages = append(messages, "Title is required")
	case !strings.ContainsFunc(webtoon.Slugline, isSluglineWordRune):
		messages = append(messages, "Title must contain a letter or digit")
	}
	if strings.TrimSpace(webtoon.Author) == "" {
		messages = append(messages, "Author is required")
	}
	return messages
}

func isSluglineWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

type Service struct {
	store    Store
	newID    func() string
	projects []Project
}

type Option func(*Service)

// WithIDGenerator replaces the UUID generator used for new entities.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	service := &Service{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}

	service.projects = []Project{
		{ID: service.newID(), Slugline: "webtoons", Name: "Webtoons"},
	}
	return service
}

func (s *Service) ListWebtoons(ctx context.Context) ([]WebtoonListItem, error) {
	webtoons, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list webtoons: %w", err)
	}
	return PresentWebtoonsList(webtoons), nil
}

// GetWebtoon looks a webtoon up by its slugline.
func (s *Service) GetWebtoon(ctx context.Context, slugline string) (ViewableWebtoon, error) {
	webtoon, err := s.store.FindBySlugline(ctx, slugline)
	if err != nil {
		return ViewableWebtoon{}, err
	}
	return PresentViewableWebtoon(webtoon), nil
}

// Publish builds, validates and stores a webtoon from a submitted form.
// Nothing is written when validation fails.
func (s *Service) Publish(ctx context.Context, form PublishForm) (Webtoon, error) {
	webtoon := BuildWebtoon(form, s.newID)
	if messages := ValidateWebtoon(webtoon); len(messages) > 0 {
		return Webtoon{}, &ValidationError{Messages: messages}
	}

	if err := s.store.Add(ctx, webtoon); err != nil {
		return Webtoon{}, fmt.Errorf("publish webtoon %q: %w", webtoon.Slugline, err)
	}
	return webtoon, nil
}

func (s *Service) CountWebtoons(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// ListProjects returns the fixed project catalogue.
func (s *Service) ListProjects() []Project {
	projects := make([]Project, len(s.projects))
	copy(projects, s.projects)
	return projects
}
