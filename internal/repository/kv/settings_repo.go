package kv

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
)

type kvSettingsRepository struct {
	store    storage.KeyValueStore
	themeKey string
}

// NewSettingsRepository creates a settings repository over store. An empty
// themeKey uses DefaultThemeKey.
func NewSettingsRepository(store storage.KeyValueStore, themeKey string) repository.SettingsRepository {
	if themeKey == "" {
		themeKey = DefaultThemeKey
	}
	return &kvSettingsRepository{store: store, themeKey: themeKey}
}

// GetTheme returns the stored theme, or the default when none is stored or
// the stored value is not recognised.
func (r *kvSettingsRepository) GetTheme(ctx context.Context) (domain.Theme, error) {
	raw, ok, err := r.store.Get(ctx, r.themeKey)
	if err != nil {
		return domain.DefaultTheme, fmt.Errorf("%w: read %q: %v", repository.ErrStorageUnavailable, r.themeKey, err)
	}
	if !ok {
		return domain.DefaultTheme, nil
	}

	value := bytes.TrimSpace(raw)
	// Some writers stored the preference JSON-encoded.
	if len(value) > 0 && value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			value = []byte(s)
		}
	}

	theme := domain.Theme(value)
	if !theme.IsValid() {
		log.Printf("WARN: Unknown theme %q under '%s', using %s", value, r.themeKey, domain.DefaultTheme)
		return domain.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme stores the theme as a bare string.
func (r *kvSettingsRepository) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTheme, theme)
	}
	if err := r.store.Set(ctx, r.themeKey, []byte(theme)); err != nil {
		log.Printf("ERROR: Failed to save theme under '%s': %v", r.themeKey, err)
		return mapWriteError(err)
	}
	return nil
}
