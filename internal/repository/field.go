package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quickfetch/quickfetch/internal/model"
)

type FieldRepository interface {
	List(ctx context.Context) ([]model.Field, error)
	FindByID(ctx context.Context, id string) (*model.Field, error)
	Upsert(ctx context.Context, field model.Field) error
	SetText(ctx context.Context, id string, text string) error
	SetProtected(ctx context.Context, id string, protected bool) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type fieldRepo struct {
	db *sqlx.DB
}

func NewFieldRepository(db *sqlx.DB) FieldRepository {
	return &fieldRepo{db: db}
}

func (r *fieldRepo) List(ctx context.Context) ([]model.Field, error) {
	fields := []model.Field{}
	err := r.db.SelectContext(ctx, &fields, `
		SELECT * FROM fields ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *fieldRepo) FindByID(ctx context.Context, id string) (*model.Field, error) {
	var field model.Field
	err := r.db.GetContext(ctx, &field, `
		SELECT * FROM fields WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *fieldRepo) Upsert(ctx context.Context, field model.Field) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fields (id, text, is_protected, shortcut, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			is_protected = excluded.is_protected,
			shortcut = excluded.shortcut,
			updated_at = excluded.updated_at
	`, field.ID, field.Text, field.IsProtected, field.Shortcut, time.Now())
	return err
}

func (r *fieldRepo) SetText(ctx context.Context, id string, text string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE fields SET text = ?, updated_at = ? WHERE id = ?
	`, text, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *fieldRepo) SetProtected(ctx context.Context, id string, protected bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE fields SET is_protected = ?, updated_at = ? WHERE id = ?
	`, protected, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *fieldRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM fields WHERE id = ?
	`, id)
	return err
}

func (r *fieldRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM fields`)
	return err
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
