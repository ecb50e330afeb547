package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Entity is a value that can be stored as a document.
type Entity interface {
	DocumentID() string
	ToDocument() Document
}

// LoadFunc maps a stored document back to a typed entity.
type LoadFunc[T any] func(doc Document) (T, error)

// Collection is a named set of documents typed through a load function.
type Collection[T Entity] struct {
	store *Store
	name  string
	load  LoadFunc[T]
}

func NewCollection[T Entity](store *Store, name string, load LoadFunc[T]) (*Collection[T], error) {
	name = strings.TrimSpace(name)
	if store == nil {
		return nil, errors.New("store is required")
	}
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	if load == nil {
		return nil, errors.New("load function is required")
	}
	return &Collection[T]{store: store, name: name, load: load}, nil
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Add inserts one entity.
func (c *Collection[T]) Add(ctx context.Context, entity T) error {
	return c.store.Insert(ctx, c.name, entity.ToDocument())
}

// AddMany inserts entities atomically.
func (c *Collection[T]) AddMany(ctx context.Context, entities []T) error {
	docs := make([]Document, 0, len(entities))
	for _, entity := range entities {
		docs = append(docs, entity.ToDocument())
	}
	return c.store.Insert(ctx, c.name, docs...)
}

// FindAll returns up to FetchLimit entities. An empty collection yields an empty slice.
func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.FindManyBy(ctx, nil)
}

// FindBy returns the first entity matching criteria. The boolean is false when none matches.
func (c *Collection[T]) FindBy(ctx context.Context, criteria Criteria) (T, bool, error) {
	var zero T
	docs, err := c.store.Find(ctx, c.name, criteria, 1)
	if err != nil {
		return zero, false, err
	}
	if len(docs) == 0 {
		return zero, false, nil
	}

	entity, err := c.load(docs[0])
	if err != nil {
		return zero, false, fmt.Errorf("load %s document: %w", c.name, err)
	}
	return entity, true, nil
}

// FindManyBy returns up to FetchLimit entities matching criteria.
func (c *Collection[T]) FindManyBy(ctx context.Context, criteria Criteria) ([]T, error) {
	docs, err := c.store.Find(ctx, c.name, criteria, FetchLimit)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := c.load(doc)
		if err != nil {
			return nil, fmt.Errorf("load %s document: %w", c.name, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (c *Collection[T]) Count(ctx context.Context, criteria Criteria) (int, error) {
	return c.store.Count(ctx, c.name, criteria)
}
