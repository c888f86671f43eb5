package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// Lookup is a read-through, process-lifetime cache of a small reference
// table. The first List call loads the rows; concurrent first callers share
// that single round trip. A failed load is not cached.
type Lookup[T any] struct {
	load func(ctx context.Context) ([]T, error)
	name func(T) string

	group  singleflight.Group
	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewLookup creates a Lookup that fills itself with load and matches rows
// by name.
func NewLookup[T any](load func(ctx context.Context) ([]T, error), name func(T) string) *Lookup[T] {
	return &Lookup[T]{load: load, name: name}
}

func (l *Lookup[T]) cached() ([]T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items, l.loaded
}

// List returns every cached row, loading them on first use.
func (l *Lookup[T]) List(ctx context.Context) ([]T, error) {
	if items, ok := l.cached(); ok {
		return items, nil
	}

	v, err, _ := l.group.Do("list", func() (any, error) {
		if items, ok := l.cached(); ok {
			return items, nil
		}
		// One caller's cancellation must not fail the others sharing this load.
		items, err := l.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.items, l.loaded = items, true
		l.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load lookup table: %w", err)
	}
	return v.([]T), nil
}

// FindByName returns the row called name or models.ErrNotFound.
func (l *Lookup[T]) FindByName(ctx context.Context, name string) (T, error) {
	var zero T
	items, err := l.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if l.name(item) == name {
			return item, nil
		}
	}
	return zero, fmt.Errorf("lookup %q: %w", name, models.ErrNotFound)
}

// Statuses caches the statuses table.
type Statuses struct {
	*Lookup[models.Status]
}

// NewStatuses creates the statuses cache over load.
func NewStatuses(load func(ctx context.Context) ([]models.Status, error)) *Statuses {
	return &Statuses{NewLookup(load, func(s models.Status) string { return s.Name })}
}

// Active returns the status of visible rows.
func (s *Statuses) Active(ctx context.Context) (models.Status, error) {
	return s.FindByName(ctx, models.StatusActive)
}

// Inactive returns the status of archived rows.
func (s *Statuses) Inactive(ctx context.Context) (models.Status, error) {
	return s.FindByName(ctx, models.StatusInactive)
}

// Types caches the note types table.
type Types struct {
	*Lookup[models.Type]
}

// NewTypes creates the types cache over load.
func NewTypes(load func(ctx context.Context) ([]models.Type, error)) *Types {
	return &Types{NewLookup(load, func(t models.Type) string { return t.Name })}
}

// Default returns the type given to notes created without one.
func (t *Types) Default(ctx context.Context) (models.Type, error) {
	return t.FindByName(ctx, models.TypeList)
}
