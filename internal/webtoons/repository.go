package webtoons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pblstudio/internal/docstore"
)

// CollectionName is the document collection holding webtoons.
const CollectionName = "webtoons"

var ErrNotFound = errors.New("not found")

// Repository persists webtoons, each as one document with nested pages.
type Repository struct {
	collection *docstore.Collection[Webtoon]
}

func NewRepository(store *docstore.Store) (*Repository, error) {
	collection, err := docstore.NewCollection(store, CollectionName, WebtoonFromDocument)
	if err != nil {
		return nil, fmt.Errorf("webtoons collection: %w", err)
	}
	return &Repository{collection: collection}, nil
}

func (r *Repository) Add(ctx context.Context, webtoon Webtoon) error {
	return r.collection.Add(ctx, webtoon)
}

func (r *Repository) AddMany(ctx context.Context, webtoons []Webtoon) error {
	return r.collection.AddMany(ctx, webtoons)
}

func (r *Repository) FindAll(ctx context.Context) ([]Webtoon, error) {
	return r.collection.FindAll(ctx)
}

func (r *Repository) FindManyBy(ctx context.Context, criteria docstore.Criteria) ([]Webtoon, error) {
	return r.collection.FindManyBy(ctx, criteria)
}

// FindBySlugline returns the first webtoon stored under slugline or ErrNotFound.
func (r *Repository) FindBySlugline(ctx context.Context, slugline string) (Webtoon, error) {
	slugline = strings.TrimSpace(slugline)
	if slugline == "" {
		return Webtoon{}, ErrNotFound
	}

	webtoon, ok, err := r.collection.FindBy(ctx, docstore.Criteria{keySlugline: slugline})
	if err != nil {
		return Webtoon{}, err
	}
	if !ok {
		return Webtoon{}, fmt.Errorf("webtoon %q: %w", slugline, ErrNotFound)
	}
	return webtoon, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	return r.collection.Count(ctx, nil)
}
