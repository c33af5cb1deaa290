package service

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/recommend"
	"alcyxob/climb-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	// ErrPreconditionViolated marks calls the caller should never make, such
	// as starting a session while another is active.
	ErrPreconditionViolated = errors.New("precondition violated")
	ErrSessionAlreadyActive = fmt.Errorf("%w: a session is already active", ErrPreconditionViolated)
	ErrSessionNotActive     = fmt.Errorf("%w: session is already finished", ErrPreconditionViolated)

	ErrWrongSessionType  = errors.New("operation does not apply to this session type")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrSetNotFound       = errors.New("set not found")
	ErrHangRequiresTimer = errors.New("hang sets are completed by the hang timer")
	ErrNotHangSet        = errors.New("set is not a hang set")
	ErrInvalidResult     = errors.New("invalid attempt result")
	ErrInvalidParams     = errors.New("invalid session parameters")
)

// UnloggedGateThreshold is the number of unlogged attempts above which
// finishing a volume session asks for confirmation.
const UnloggedGateThreshold = 5

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// IDGenerator supplies unique ids for sessions, attempts and sets.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// VolumeParams configures a new volume session.
type VolumeParams struct {
	TargetLevel  int
	BoulderCount int
}

// CompletionGate tells the caller whether finishing now needs confirmation.
type CompletionGate struct {
	Fires         bool   `json:"fires"`
	Unlogged      int    `json:"unlogged,omitempty"`
	CompletedSets int    `json:"completedSets,omitempty"`
	TotalSets     int    `json:"totalSets,omitempty"`
	Message       string `json:"message,omitempty"`
}

// SessionService owns the session lifecycle: start, mutate, finish, abandon.
type SessionService interface {
	StartVolume(ctx context.Context, params VolumeParams) (*domain.Session, error)
	StartTraining(ctx context.Context, weights domain.Weights) (*domain.Session, error)

	LogAttempt(ctx context.Context, sessionID, attemptID string, result domain.AttemptResult, comment string) (*domain.Session, error)
	ToggleSet(ctx context.Context, sessionID, setID string) (*domain.Session, error)
	CompleteHangSet(ctx context.Context, sessionID, setID string) (*domain.Session, error)
	UpdateSetNotes(ctx context.Context, sessionID, setID, notes string) (*domain.Session, error)

	CompletionGate(ctx context.Context, sessionID string) (*CompletionGate, error)
	Finish(ctx context.Context, sessionID string) (*domain.Session, error)
	Abandon(ctx context.Context, sessionID string) error

	// Current returns the active session, or nil if there is none.
	Current(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	RecommendVolume(ctx context.Context) (recommend.VolumeRecommendation, error)
	RecommendTraining(ctx context.Context) (recommend.TrainingRecommendation, error)
}

// --- Service Implementation ---

type sessionService struct {
	repo   repository.SessionRepository
	volume recommend.VolumeRecommender
	clock  Clock
	ids    IDGenerator

	// mu makes each check-then-write sequence atomic, so two starts cannot
	// both see "no active session".
	mu sync.Mutex
}

// NewSessionService creates a session service. A nil clock or ids uses the
// system clock and UUIDs.
func NewSessionService(repo repository.SessionRepository, volume recommend.VolumeRecommender, clock Clock, ids IDGenerator) SessionService {
	if clock == nil {
		clock = SystemClock
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &sessionService{repo: repo, volume: volume, clock: clock, ids: ids}
}

func (s *sessionService) now() time.Time {
	return s.clock.Now().UTC()
}

// StartVolume creates an active volume session with BoulderCount unlogged
// attempts.
func (s *sessionService) StartVolume(ctx context.Context, params VolumeParams) (*domain.Session, error) {
	if params.TargetLevel < 1 {
		return nil, fmt.Errorf("%w: target level must be at least 1", ErrInvalidParams)
	}
	if params.BoulderCount < 0 {
		return nil, fmt.Errorf("%w: boulder count must not be negative", ErrInvalidParams)
	}

	return s.start(ctx, func(session *domain.Session) {
		attempts := make([]domain.BoulderAttempt, params.BoulderCount)
		for i := range attempts {
			attempts[i] = domain.BoulderAttempt{ID: s.ids.NewID(), Order: i + 1}
		}
		session.Type = domain.SessionVolume
		session.Volume = &domain.VolumeDetails{
			TargetLevel:  params.TargetLevel,
			BoulderCount: params.BoulderCount,
			Attempts:     attempts,
		}
	})
}

// StartTraining creates an active training session with SetsPerExercise
// incomplete sets for every exercise.
func (s *sessionService) StartTraining(ctx context.Context, weights domain.Weights) (*domain.Session, error) {
	for _, e := range domain.Exercises() {
		if weights.Of(e) < 0 {
			return nil, fmt.Errorf("%w: %s weight must not be negative", ErrInvalidParams, e.DisplayName())
		}
	}

	return s.start(ctx, func(session *domain.Session) {
		session.Type = domain.SessionTraining
		session.Training = &domain.TrainingData{
			HangWeight:    weights.Hang,
			PullupWeight:  weights.Pullup,
			BenchWeight:   weights.Bench,
			TrapBarWeight: weights.TrapBar,
			HangSets:      s.newSets(domain.ExerciseHang),
			PullupSets:    s.newSets(domain.ExercisePullup),
			BenchSets:     s.newSets(domain.ExerciseBench),
			TrapBarSets:   s.newSets(domain.ExerciseTrapBar),
		}
	})
}

func (s *sessionService) newSets(e domain.Exercise) []domain.TrainingSet {
	sets := make([]domain.TrainingSet, domain.SetsPerExercise)
	for i := range sets {
		sets[i] = domain.TrainingSet{ID: s.ids.NewID(), Order: i + 1, Exercise: e}
	}
	return sets
}

func (s *sessionService) start(ctx context.Context, fill func(*domain.Session)) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetCurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionAlreadyActive, current.ID)
	}

	now := s.now()
	session := &domain.Session{ID: s.ids.NewID(), Date: now, StartTime: now}
	fill(session)
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	log.Printf("INFO: Started %s session %s", session.Type, session.ID)
	return session, nil
}

// LogAttempt records result on a volume attempt. Logging an attempt again
// overwrites its result, comment and timestamp.
func (s *sessionService) LogAttempt(ctx context.Context, sessionID, attemptID string, result domain.AttemptResult, comment string) (*domain.Session, error) {
	if !result.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResult, result)
	}
	return s.mutate(ctx, sessionID, func(session *domain.Session, now time.Time) error {
		switch session.Type {
		case domain.SessionVolume:
		case domain.SessionTraining:
			return ErrWrongSessionType
		}
		for i := range session.Volume.Attempts {
			if session.Volume.Attempts[i].ID == attemptID {
				session.Volume.Attempts[i].Log(result, comment, now)
				return nil
			}
		}
		return ErrAttemptNotFound
	})
}

// ToggleSet flips a set's completion. Hang sets can only be reset here;
// completing them is the hang timer's job.
func (s *sessionService) ToggleSet(ctx context.Context, sessionID, setID string) (*domain.Session, error) {
	return s.mutateSet(ctx, sessionID, setID, func(set *domain.TrainingSet, now time.Time) error {
		if set.Completed {
			set.Reset()
			return nil
		}
		if set.Exercise == domain.ExerciseHang {
			return ErrHangRequiresTimer
		}
		set.Complete(now)
		return nil
	})
}

// CompleteHangSet marks a hang set complete after its hang phase. Completing
// an already completed set is a no-op.
func (s *sessionService) CompleteHangSet(ctx context.Context, sessionID, setID string) (*domain.Session, error) {
	return s.mutateSet(ctx, sessionID, setID, func(set *domain.TrainingSet, now time.Time) error {
		if set.Exercise != domain.ExerciseHang {
			return ErrNotHangSet
		}
		if !set.Completed {
			set.Complete(now)
		}
		return nil
	})
}

// UpdateSetNotes replaces a set's notes.
func (s *sessionService) UpdateSetNotes(ctx context.Context, sessionID, setID, notes string) (*domain.Session, error) {
	return s.mutateSet(ctx, sessionID, setID, func(set *domain.TrainingSet, _ time.Time) error {
		set.Notes = notes
		return nil
	})
}

// CompletionGate evaluates whether finishing the session now should be
// confirmed first. It never blocks Finish.
func (s *sessionService) CompletionGate(ctx context.Context, sessionID string) (*CompletionGate, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	gate := &CompletionGate{}
	switch session.Type {
	case domain.SessionVolume:
		gate.Unlogged = session.AttemptCounts().Unlogged
		if gate.Unlogged > UnloggedGateThreshold {
			gate.Fires = true
			gate.Message = fmt.Sprintf("%d boulders are not logged. Finish anyway?", gate.Unlogged)
		}
	case domain.SessionTraining:
		counts := session.SetCounts()
		gate.CompletedSets, gate.TotalSets = counts.Completed, counts.Total
		if counts.Completed < counts.Total {
			gate.Fires = true
			gate.Message = fmt.Sprintf("%d of %d sets completed. Finish anyway?", counts.Completed, counts.Total)
		}
	}
	return gate, nil
}

// Finish ends an active session. The completion gate is the caller's concern.
func (s *sessionService) Finish(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.mutate(ctx, sessionID, func(session *domain.Session, now time.Time) error {
		session.IsFinished = true
		session.EndTime = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Finished %s session %s after %s", session.Type, session.ID, session.FormattedDuration())
	return session, nil
}

// Abandon deletes an active session outright.
func (s *sessionService) Abandon(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.find(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive() {
		return ErrSessionNotActive
	}
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("INFO: Abandoned %s session %s", session.Type, session.ID)
	return nil
}

func (s *sessionService) Current(ctx context.Context) (*domain.Session, error) {
	return s.repo.GetCurrentSession(ctx)
}

// Get returns the session with the given id, or repository.ErrNotFound.
func (s *sessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.find(ctx, sessionID)
}

func (s *sessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.repo.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions, nil
}

func (s *sessionService) RecommendVolume(ctx context.Context) (recommend.VolumeRecommendation, error) {
	last, err := s.repo.GetLastVolumeSession(ctx)
	if err != nil {
		return recommend.VolumeRecommendation{}, err
	}
	return s.volume.Recommend(last, s.now()), nil
}

func (s *sessionService) RecommendTraining(ctx context.Context) (recommend.TrainingRecommendation, error) {
	last, err := s.repo.GetLastTrainingSession(ctx)
	if err != nil {
		return recommend.TrainingRecommendation{}, err
	}
	return recommend.RecommendTraining(last), nil
}

// --- Helpers ---

func (s *sessionService) find(ctx context.Context, sessionID string) (*domain.Session, error) {
	sessions, err := s.repo.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// mutate loads an active session, applies fn and persists the result.
func (s *sessionService) mutate(ctx context.Context, sessionID string, fn func(session *domain.Session, now time.Time) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	if err := fn(session, s.now()); err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) mutateSet(ctx context.Context, sessionID, setID string, fn func(set *domain.TrainingSet, now time.Time) error) (*domain.Session, error) {
	return s.mutate(ctx, sessionID, func(session *domain.Session, now time.Time) error {
		switch session.Type {
		case domain.SessionTraining:
		case domain.SessionVolume:
			return ErrWrongSessionType
		}
		set, ok := session.Training.FindSet(setID)
		if !ok {
			return ErrSetNotFound
		}
		return fn(set, now)
	})
}
