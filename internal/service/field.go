package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/quickfetch/quickfetch/internal/audit"
	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/model"
	"github.com/quickfetch/quickfetch/internal/repository"
)

// FieldService owns the stored rows. Protection changes do not go
// through Save; they only happen via ApplyProtection, which is wired as
// the PIN state machine's terminal action.
type FieldService struct {
	fields   repository.FieldRepository
	settings repository.SettingsRepository
}

func NewFieldService(fields repository.FieldRepository, settings repository.SettingsRepository) *FieldService {
	return &FieldService{fields: fields, settings: settings}
}

func (s *FieldService) List(ctx context.Context) ([]model.Field, error) {
	return s.fields.List(ctx)
}

// Save stores text and shortcut for a field. The protection flag is
// carried over from the stored record (new fields start unprotected) so
// it cannot be flipped by a plain save.
func (s *FieldService) Save(ctx context.Context, params model.SaveFieldParams) (*model.Field, error) {
	if params.ID == "" {
		return nil, apperrors.MissingRequired("id")
	}

	existing, err := s.fields.FindByID(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	field := model.Field{
		ID:       params.ID,
		Text:     params.Text,
		Shortcut: params.Shortcut,
	}
	if existing != nil {
		field.IsProtected = existing.IsProtected
	}

	if err := s.fields.Upsert(ctx, field); err != nil {
		return nil, err
	}

	saved, err := s.fields.FindByID(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *FieldService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.MissingRequired("id")
	}
	return s.fields.Delete(ctx, id)
}

// ApplyProtection flips the protection flag on a field. Callers must not
// reach this directly; it runs as the PIN machine's pending action after
// a terminal success.
func (s *FieldService) ApplyProtection(ctx context.Context, fieldID string, protected bool) error {
	if err := s.fields.SetProtected(ctx, fieldID, protected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("Field")
		}
		return err
	}

	log.Info().Str("fieldId", fieldID).Bool("protected", protected).Msg("protection changed")
	audit.Log(audit.Event{
		Type:    audit.EventProtectionChange,
		FieldID: fieldID,
		Details: map[string]interface{}{"protected": protected},
	})
	return nil
}

// ResetAll wipes all rows and settings, including the stored PIN.
func (s *FieldService) ResetAll(ctx context.Context) error {
	if err := s.fields.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.settings.DeleteAll(ctx); err != nil {
		return err
	}

	audit.Log(audit.Event{Type: audit.EventAppReset})
	return nil
}
