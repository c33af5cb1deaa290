package service

import (
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/timer"
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrNoHangSetLeft       = errors.New("all hang sets are completed")
	ErrSetAlreadyCompleted = errors.New("set is already completed")
)

// TimerService runs the hang timer of active training sessions and applies
// its effects through the SessionService.
type TimerService interface {
	// StartHang starts timing a hang set. An empty setID picks the next
	// incomplete hang set.
	StartHang(ctx context.Context, sessionID, setID string) (timer.Snapshot, error)
	// StartRest starts the rest that follows a set completed by toggle.
	StartRest(ctx context.Context, sessionID string) (timer.Snapshot, error)
	Pause(ctx context.Context, sessionID string) (timer.Snapshot, error)
	Resume(ctx context.Context, sessionID string) (timer.Snapshot, error)
	Skip(ctx context.Context, sessionID string) (timer.Snapshot, error)
	// Cancel stops the running phase without completing anything. The
	// session keeps its timer, so a finished prep is not repeated.
	Cancel(sessionID string)
	// Release drops the session's timer once the session has ended.
	Release(sessionID string)
	Snapshot(sessionID string) timer.Snapshot

	// Tick advances every running timer by elapsed.
	Tick(elapsed time.Duration)
	// Run ticks in real time until ctx is done.
	Run(ctx context.Context)
}

type timerService struct {
	sessions  SessionService
	durations timer.Durations
	interval  time.Duration

	mu        sync.Mutex
	protocols map[string]*timer.Protocol
}

// NewTimerService creates a timer service. interval is the real-time tick
// period used by Run.
func NewTimerService(sessions SessionService, durations timer.Durations, interval time.Duration) TimerService {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &timerService{
		sessions:  sessions,
		durations: durations,
		interval:  interval,
		protocols: make(map[string]*timer.Protocol),
	}
}

func (s *timerService) StartHang(ctx context.Context, sessionID, setID string) (timer.Snapshot, error) {
	session, err := s.activeTraining(ctx, sessionID)
	if err != nil {
		return timer.Snapshot{}, err
	}

	if setID == "" {
		next, ok := session.Training.NextIncompleteSet(domain.ExerciseHang)
		if !ok {
			return timer.Snapshot{}, ErrNoHangSetLeft
		}
		setID = next.ID
	} else {
		set, ok := session.Training.FindSet(setID)
		if !ok {
			return timer.Snapshot{}, ErrSetNotFound
		}
		if set.Exercise != domain.ExerciseHang {
			return timer.Snapshot{}, ErrNotHangSet
		}
		if set.Completed {
			return timer.Snapshot{}, ErrSetAlreadyCompleted
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.protocolLocked(sessionID)
	if err := p.StartHang(setID); err != nil {
		return p.Snapshot(), err
	}
	return p.Snapshot(), nil
}

func (s *timerService) StartRest(ctx context.Context, sessionID string) (timer.Snapshot, error) {
	if _, err := s.activeTraining(ctx, sessionID); err != nil {
		return timer.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.protocolLocked(sessionID)
	if err := p.StartRest(); err != nil {
		return p.Snapshot(), err
	}
	return p.Snapshot(), nil
}

func (s *timerService) Pause(_ context.Context, sessionID string) (timer.Snapshot, error) {
	return s.apply(sessionID, (*timer.Protocol).Pause)
}

func (s *timerService) Resume(_ context.Context, sessionID string) (timer.Snapshot, error) {
	return s.apply(sessionID, (*timer.Protocol).Resume)
}

func (s *timerService) Skip(_ context.Context, sessionID string) (timer.Snapshot, error) {
	return s.apply(sessionID, (*timer.Protocol).Skip)
}

func (s *timerService) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.protocols[sessionID]; ok {
		p.Cancel()
	}
}

func (s *timerService) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.protocols[sessionID]; ok {
		p.Cancel()
		delete(s.protocols, sessionID)
	}
}

func (s *timerService) Snapshot(sessionID string) timer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.protocols[sessionID]; ok {
		return p.Snapshot()
	}
	return timer.Snapshot{Phase: timer.PhaseIdle, State: timer.Stopped}
}

func (s *timerService) Tick(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sessionID, p := range s.protocols {
		if err := p.Tick(elapsed); err != nil {
			log.Printf("ERROR: Hang timer for session %s stopped: %v", sessionID, err)
		}
	}
}

func (s *timerService) Run(ctx context.Context) {
	log.Printf("INFO: Hang timer running with %v ticks", s.interval)
	timer.Run(ctx, s.interval, s.Tick)
}

func (s *timerService) apply(sessionID string, fn func(*timer.Protocol) error) (timer.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.protocols[sessionID]
	if !ok {
		return timer.Snapshot{Phase: timer.PhaseIdle, State: timer.Stopped}, timer.ErrIdle
	}
	if err := fn(p); err != nil {
		return p.Snapshot(), err
	}
	return p.Snapshot(), nil
}

func (s *timerService) protocolLocked(sessionID string) *timer.Protocol {
	p, ok := s.protocols[sessionID]
	if !ok {
		p = timer.NewProtocol(s.durations, &sessionListener{sessions: s.sessions, sessionID: sessionID})
		s.protocols[sessionID] = p
	}
	return p
}

func (s *timerService) activeTraining(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Type {
	case domain.SessionTraining:
	case domain.SessionVolume:
		return nil, ErrWrongSessionType
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// sessionListener applies timer effects to one session.
type sessionListener struct {
	sessions  SessionService
	sessionID string
}

func (l *sessionListener) HangCompleted(setID string) error {
	_, err := l.sessions.CompleteHangSet(context.Background(), l.sessionID, setID)
	return err
}

func (l *sessionListener) NextHangSet() (string, bool) {
	session, err := l.sessions.Get(context.Background(), l.sessionID)
	if err != nil {
		log.Printf("WARN: Could not load session %s for next hang set: %v", l.sessionID, err)
		return "", false
	}
	if !session.IsActive() || session.Training == nil {
		return "", false
	}
	next, ok := session.Training.NextIncompleteSet(domain.ExerciseHang)
	if !ok {
		return "", false
	}
	return next.ID, true
}
