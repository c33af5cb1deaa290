package service

import (
	"alcyxob/climb-tracker/internal/timer"
	"errors"
	"testing"
	"time"
)

func newTimerFixture(t *testing.T) (*fixture, TimerService) {
	t.Helper()
	f := newFixture(t)
	return f, NewTimerService(f.sessions, timer.DefaultDurations(), time.Millisecond)
}

func TestTimerServiceHangSequence(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)
	first, second := s.Training.HangSets[0].ID, s.Training.HangSets[1].ID

	snap, err := timers.StartHang(f.ctx, s.ID, "")
	if err != nil {
		t.Fatalf("StartHang: %v", err)
	}
	if snap.Phase != timer.PhasePrep || snap.SetID != first {
		t.Fatalf("expected prep for %s, got %+v", first, snap)
	}

	timers.Tick(5 * time.Second)
	timers.Tick(7 * time.Second)

	stored, _ := f.sessions.Get(f.ctx, s.ID)
	if set, _ := stored.Training.FindSet(first); !set.Completed {
		t.Fatal("hang set not completed after hang phase")
	}
	if snap = timers.Snapshot(s.ID); snap.Phase != timer.PhaseRest {
		t.Fatalf("expected rest, got %+v", snap)
	}

	if _, err := timers.Pause(f.ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	timers.Tick(time.Hour)
	if snap = timers.Snapshot(s.ID); snap.State != timer.Paused || snap.Remaining != 180*time.Second {
		t.Fatalf("pause did not hold the rest: %+v", snap)
	}
	if _, err := timers.Resume(f.ctx, s.ID); err != nil {
		t.Fatal(err)
	}

	snap, err = timers.Skip(f.ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != timer.PhaseHang || snap.SetID != second {
		t.Fatalf("expected next hang %s to start directly, got %+v", second, snap)
	}

	// Skipping the hang completes it like natural expiry.
	if _, err := timers.Skip(f.ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ = f.sessions.Get(f.ctx, s.ID)
	if set, _ := stored.Training.FindSet(second); !set.Completed {
		t.Fatal("skipped hang set not completed")
	}
}

func TestTimerServiceCancelOnLeave(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)
	hang := s.Training.HangSets[0].ID

	if _, err := timers.StartHang(f.ctx, s.ID, hang); err != nil {
		t.Fatal(err)
	}
	timers.Tick(5 * time.Second)
	timers.Cancel(s.ID)
	timers.Tick(time.Minute)

	stored, _ := f.sessions.Get(f.ctx, s.ID)
	if set, _ := stored.Training.FindSet(hang); set.Completed {
		t.Fatal("cancelled timer completed a set")
	}
	if snap := timers.Snapshot(s.ID); snap.Phase != timer.PhaseIdle {
		t.Fatalf("expected idle after cancel, got %+v", snap)
	}
	if _, err := timers.Skip(f.ctx, s.ID); !errors.Is(err, timer.ErrIdle) {
		t.Fatalf("expected ErrIdle, got %v", err)
	}
}

func TestTimerServiceRejectsInvalidTargets(t *testing.T) {
	f, timers := newTimerFixture(t)

	v, _ := f.sessions.StartVolume(f.ctx, VolumeParams{TargetLevel: 3, BoulderCount: 1})
	if _, err := timers.StartHang(f.ctx, v.ID, ""); !errors.Is(err, ErrWrongSessionType) {
		t.Fatalf("expected ErrWrongSessionType, got %v", err)
	}
	_ = f.sessions.Abandon(f.ctx, v.ID)

	s := f.startTraining(t)
	if _, err := timers.StartHang(f.ctx, s.ID, s.Training.PullupSets[0].ID); !errors.Is(err, ErrNotHangSet) {
		t.Fatalf("expected ErrNotHangSet, got %v", err)
	}
	if _, err := timers.StartHang(f.ctx, s.ID, "nope"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("expected ErrSetNotFound, got %v", err)
	}

	for _, set := range s.Training.HangSets {
		if _, err := f.sessions.CompleteHangSet(f.ctx, s.ID, set.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := timers.StartHang(f.ctx, s.ID, ""); !errors.Is(err, ErrNoHangSetLeft) {
		t.Fatalf("expected ErrNoHangSetLeft, got %v", err)
	}

	if _, err := f.sessions.Finish(f.ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := timers.StartRest(f.ctx, s.ID); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive, got %v", err)
	}
}

func TestTimerServiceRestAfterToggle(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)

	snap, err := timers.StartRest(f.ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != timer.PhaseRest || snap.Remaining != 180*time.Second {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	timers.Tick(180 * time.Second)
	if snap = timers.Snapshot(s.ID); snap.Phase != timer.PhaseIdle {
		t.Fatalf("rest after a toggled set should end idle, got %+v", snap)
	}
}

func TestTimerServiceCancelKeepsPrepDone(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)

	if _, err := timers.StartHang(f.ctx, s.ID, ""); err != nil {
		t.Fatal(err)
	}
	timers.Tick(5 * time.Second)
	timers.Cancel(s.ID)

	snap, err := timers.StartHang(f.ctx, s.ID, "")
	if err != nil {
		t.Fatalf("StartHang after cancel: %v", err)
	}
	if snap.Phase != timer.PhaseHang || snap.Remaining != 7*time.Second {
		t.Fatalf("prep must not run twice in a session, got %+v", snap)
	}
}

func TestTimerServiceReleaseDropsTimer(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)

	if _, err := timers.StartRest(f.ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	timers.Release(s.ID)
	timers.Tick(time.Minute)

	if snap := timers.Snapshot(s.ID); snap.Phase != timer.PhaseIdle {
		t.Fatalf("expected idle after release, got %+v", snap)
	}
	if _, err := timers.Pause(f.ctx, s.ID); !errors.Is(err, timer.ErrIdle) {
		t.Fatalf("expected ErrIdle, got %v", err)
	}
}

func TestTimerServiceRejectsCompletedHangSet(t *testing.T) {
	f, timers := newTimerFixture(t)
	s := f.startTraining(t)
	done := s.Training.HangSets[0].ID

	if _, err := f.sessions.CompleteHangSet(f.ctx, s.ID, done); err != nil {
		t.Fatal(err)
	}
	if _, err := timers.StartHang(f.ctx, s.ID, done); !errors.Is(err, ErrSetAlreadyCompleted) {
		t.Fatalf("expected ErrSetAlreadyCompleted, got %v", err)
	}
	if snap := timers.Snapshot(s.ID); snap.Phase != timer.PhaseIdle {
		t.Fatalf("rejected start must leave the timer idle, got %+v", snap)
	}

	snap, err := timers.StartHang(f.ctx, s.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if snap.SetID != s.Training.HangSets[1].ID {
		t.Fatalf("expected next incomplete hang set, got %s", snap.SetID)
	}
}
