package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/quickfetch/quickfetch/internal/model"
	"github.com/quickfetch/quickfetch/internal/repository"
)

// memFieldRepo is an in-memory FieldRepository for service tests.
type memFieldRepo struct {
	mu     sync.Mutex
	fields map[string]model.Field
}

var _ repository.FieldRepository = (*memFieldRepo)(nil)

func newMemFieldRepo() *memFieldRepo {
	return &memFieldRepo{fields: make(map[string]model.Field)}
}

func (r *memFieldRepo) List(ctx context.Context) ([]model.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Field, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memFieldRepo) FindByID(ctx context.Context, id string) (*model.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fields[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *memFieldRepo) Upsert(ctx context.Context, field model.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[field.ID] = field
	return nil
}

func (r *memFieldRepo) SetText(ctx context.Context, id string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fields[id]
	if !ok {
		return sql.ErrNoRows
	}
	f.Text = text
	r.fields[id] = f
	return nil
}

func (r *memFieldRepo) SetProtected(ctx context.Context, id string, protected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fields[id]
	if !ok {
		return sql.ErrNoRows
	}
	f.IsProtected = protected
	r.fields[id] = f
	return nil
}

func (r *memFieldRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fields, id)
	return nil
}

func (r *memFieldRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = make(map[string]model.Field)
	return nil
}

// memSettingsRepo is an in-memory SettingsRepository.
type memSettingsRepo struct {
	mu     sync.Mutex
	values map[string]string
}

var _ repository.SettingsRepository = (*memSettingsRepo)(nil)

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{values: make(map[string]string)}
}

func (r *memSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key], nil
}

func (r *memSettingsRepo) Set(ctx context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *memSettingsRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string]string)
	return nil
}
