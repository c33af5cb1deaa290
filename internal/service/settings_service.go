package service

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
	"context"
)

// SettingsService reads and writes user preferences.
type SettingsService interface {
	Theme(ctx context.Context) (domain.Theme, error)
	SetTheme(ctx context.Context, theme domain.Theme) error
}

type settingsService struct {
	repo repository.SettingsRepository
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Theme(ctx context.Context) (domain.Theme, error) {
	return s.repo.GetTheme(ctx)
}

func (s *settingsService) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.IsValid() {
		return domain.ErrInvalidTheme
	}
	return s.repo.SetTheme(ctx, theme)
}
