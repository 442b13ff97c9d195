package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/quickfetch/quickfetch/internal/audit"
	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/pin"
	"github.com/quickfetch/quickfetch/internal/repository"
)

// PinService persists the master PIN as a bcrypt hash. It implements
// pin.Credentials for the access-control state machine.
type PinService struct {
	settings repository.SettingsRepository
}

func NewPinService(settings repository.SettingsRepository) *PinService {
	return &PinService{settings: settings}
}

var _ pin.Credentials = (*PinService)(nil)

func (s *PinService) Exists(ctx context.Context) (bool, error) {
	hash, err := s.settings.Get(ctx, repository.SettingPinHash)
	if err != nil {
		return false, err
	}
	return hash != "", nil
}

func (s *PinService) Set(ctx context.Context, entry string) error {
	if !pin.ValidEntry(entry) {
		return apperrors.InvalidInput("pin", "must be exactly 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(entry), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.settings.Set(ctx, repository.SettingPinHash, string(hash)); err != nil {
		return err
	}

	audit.Log(audit.Event{Type: audit.EventPinSet})
	return nil
}

func (s *PinService) Verify(ctx context.Context, entry string) (bool, error) {
	if !pin.ValidEntry(entry) {
		return false, apperrors.InvalidInput("pin", "must be exactly 4 digits")
	}

	hash, err := s.settings.Get(ctx, repository.SettingPinHash)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(entry))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		audit.Log(audit.Event{Type: audit.EventPinVerifyFailure})
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
