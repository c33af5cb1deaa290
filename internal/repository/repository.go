package repository

import (
	"alcyxob/climb-tracker/internal/domain" // Import our defined domain models
	"context"                               // Standard for request-scoped deadlines, cancellation signals, etc.
)

// Error constants for the repository layer
var (
	ErrNotFound           = RepositoryError("not found")
	ErrQuotaExceeded      = RepositoryError("storage quota exceeded")
	ErrStorageUnavailable = RepositoryError("storage unavailable")
	// ErrCorruptData is recovered inside the gateway and never returned to callers.
	ErrCorruptData = RepositoryError("corrupt data")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SessionRepository stores the whole session collection. It persists whatever
// state it is handed; lifecycle rules live in the service layer.
type SessionRepository interface {
	// GetAllSessions returns every stored session, migrated to the current
	// schema. A missing or unreadable payload yields an empty slice.
	GetAllSessions(ctx context.Context) ([]domain.Session, error)
	SaveAllSessions(ctx context.Context, sessions []domain.Session) error
	SaveSession(ctx context.Context, session *domain.Session) error
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error

	// GetCurrentSession returns the first unfinished session, or nil.
	GetCurrentSession(ctx context.Context) (*domain.Session, error)
	// GetLastVolumeSession returns the finished volume session with the
	// latest date, or nil.
	GetLastVolumeSession(ctx context.Context) (*domain.Session, error)
	// GetLastTrainingSession returns the finished training session with the
	// latest date, or nil.
	GetLastTrainingSession(ctx context.Context) (*domain.Session, error)
}

// SettingsRepository stores user preferences.
type SettingsRepository interface {
	GetTheme(ctx context.Context) (domain.Theme, error)
	SetTheme(ctx context.Context, theme domain.Theme) error
}
