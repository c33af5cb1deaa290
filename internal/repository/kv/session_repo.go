// internal/repository/kv/session_repo.go
package kv

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// kvSessionRepository keeps the whole session collection as one versioned
// payload under a single key.
type kvSessionRepository struct {
	store storage.KeyValueStore
	key   string
	mu    sync.Mutex // serializes read-modify-write cycles
}

// NewSessionRepository creates a session repository over store. An empty key
// uses DefaultSessionsKey.
func NewSessionRepository(store storage.KeyValueStore, key string) repository.SessionRepository {
	if key == "" {
		key = DefaultSessionsKey
	}
	return &kvSessionRepository{store: store, key: key}
}

// GetAllSessions loads, migrates and decodes the stored collection.
func (r *kvSessionRepository) GetAllSessions(ctx context.Context) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *kvSessionRepository) load(ctx context.Context) ([]domain.Session, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", repository.ErrStorageUnavailable, r.key, err)
	}
	if !ok {
		return []domain.Session{}, nil
	}

	sessions, migratedFrom, err := r.decodeStored(raw)
	if err != nil {
		log.Printf("WARN: Discarding unreadable payload under '%s': %v", r.key, err)
		return []domain.Session{}, nil
	}

	if migratedFrom > 0 {
		log.Printf("INFO: Migrated '%s' from schema version %d to %d", r.key, migratedFrom, CurrentSchemaVersion)
	}
	return sessions, nil
}

// decodeStored parses raw, runs migrations and decodes every session. When a
// migration ran, the migrated payload is written back before returning and
// migratedFrom reports the original version.
func (r *kvSessionRepository) decodeStored(raw []byte) (sessions []domain.Session, migratedFrom int, err error) {
	version, records, err := parsePayload(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", repository.ErrCorruptData, err)
	}
	records, err = migrate(version, records)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", repository.ErrCorruptData, err)
	}

	sessions = make([]domain.Session, 0, len(records))
	ids := make(map[string]bool, len(records))
	for i, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: session %d: %v", repository.ErrCorruptData, i, err)
		}
		s, err := decodeSession(b)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: session %d: %v", repository.ErrCorruptData, i, err)
		}
		if err := s.Validate(); err != nil {
			return nil, 0, fmt.Errorf("%w: session %d: %v", repository.ErrCorruptData, i, err)
		}
		if ids[s.ID] {
			return nil, 0, fmt.Errorf("%w: duplicate session id %q", repository.ErrCorruptData, s.ID)
		}
		ids[s.ID] = true
		sessions = append(sessions, s)
	}

	if version < CurrentSchemaVersion {
		r.persistMigrated(records)
		return sessions, version, nil
	}
	return sessions, 0, nil
}

// persistMigrated writes a migrated payload back. Failure is logged only; the
// migrated sessions are still returned to the caller.
func (r *kvSessionRepository) persistMigrated(records []rawSession) {
	payload, err := marshalRawPayload(records)
	if err != nil {
		log.Printf("ERROR: Failed to encode migrated payload for '%s': %v", r.key, err)
		return
	}
	// Detached from the caller's context so a cancelled read still saves the upgrade.
	if err := r.store.Set(context.Background(), r.key, payload); err != nil {
		log.Printf("ERROR: Failed to persist migrated payload for '%s': %v", r.key, err)
	}
}

// SaveAllSessions replaces the stored collection.
func (r *kvSessionRepository) SaveAllSessions(ctx context.Context, sessions []domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, sessions)
}

func (r *kvSessionRepository) save(ctx context.Context, sessions []domain.Session) error {
	payload, err := encodePayload(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := r.store.Set(ctx, r.key, payload); err != nil {
		log.Printf("ERROR: Failed to save %d sessions under '%s': %v", len(sessions), r.key, err)
		return mapWriteError(err)
	}
	return nil
}

// SaveSession appends session to the collection.
func (r *kvSessionRepository) SaveSession(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.load(ctx)
	if err != nil {
		return err
	}
	sessions = append(sessions, *session.Clone())
	return r.save(ctx, sessions)
}

// UpdateSession replaces the stored session with the same ID.
func (r *kvSessionRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(sessions, session.ID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	sessions[idx] = *session.Clone()
	return r.save(ctx, sessions)
}

// DeleteSession removes the stored session with the given ID.
func (r *kvSessionRepository) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(sessions, id)
	if idx < 0 {
		return repository.ErrNotFound
	}
	sessions = append(sessions[:idx], sessions[idx+1:]...)
	return r.save(ctx, sessions)
}

// GetCurrentSession returns the first unfinished session, or nil.
func (r *kvSessionRepository) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	sessions, err := r.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if !sessions[i].IsFinished {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// GetLastVolumeSession returns the latest finished volume session, or nil.
func (r *kvSessionRepository) GetLastVolumeSession(ctx context.Context) (*domain.Session, error) {
	return r.lastFinished(ctx, domain.SessionVolume)
}

// GetLastTrainingSession returns the latest finished training session, or nil.
func (r *kvSessionRepository) GetLastTrainingSession(ctx context.Context) (*domain.Session, error) {
	return r.lastFinished(ctx, domain.SessionTraining)
}

// lastFinished picks the finished session of type t with the greatest Date.
// Ties keep the earliest in stored order.
func (r *kvSessionRepository) lastFinished(ctx context.Context, t domain.SessionType) (*domain.Session, error) {
	sessions, err := r.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	var last *domain.Session
	for i := range sessions {
		s := &sessions[i]
		if !s.IsFinished || s.Type != t {
			continue
		}
		if last == nil || s.Date.After(last.Date) {
			last = s
		}
	}
	return last, nil
}

func indexOf(sessions []domain.Session, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// mapWriteError translates a store failure into the repository taxonomy.
func mapWriteError(err error) error {
	if errors.Is(err, storage.ErrQuotaExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
}
