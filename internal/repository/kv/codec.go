package kv

import (
	"alcyxob/climb-tracker/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Wire records for the persisted schema. Instants are ISO-8601 strings.
// Optional fields are omitted when empty and read back from either omission
// or an explicit null.

type sessionRecord struct {
	ID          string             `json:"id"`
	SessionType domain.SessionType `json:"sessionType"`
	Date        *time.Time         `json:"date"`
	StartTime   *time.Time         `json:"startTime"`
	EndTime     *time.Time         `json:"endTime,omitempty"`
	IsFinished  bool               `json:"isFinished"`

	// Volume
	TargetLevel  *int            `json:"targetLevel,omitempty"`
	BoulderCount *int            `json:"boulderCount,omitempty"`
	Attempts     []attemptRecord `json:"attempts,omitempty"`

	// Training
	TrainingData *trainingRecord `json:"trainingData,omitempty"`
}

type attemptRecord struct {
	ID        string               `json:"id"`
	Order     int                  `json:"order"`
	Result    domain.AttemptResult `json:"result,omitempty"`
	Comment   string               `json:"comment,omitempty"`
	Timestamp *time.Time           `json:"timestamp,omitempty"`
}

type trainingRecord struct {
	HangWeight    *float64    `json:"hangWeight,omitempty"`
	PullupWeight  *float64    `json:"pullupWeight,omitempty"`
	BenchWeight   *float64    `json:"benchWeight,omitempty"`
	TrapBarWeight *float64    `json:"trapBarWeight,omitempty"`
	HangSets      []setRecord `json:"hangSets"`
	PullupSets    []setRecord `json:"pullupSets"`
	BenchSets     []setRecord `json:"benchSets,omitempty"`
	TrapBarSets   []setRecord `json:"trapBarSets,omitempty"`
}

type setRecord struct {
	ID        string          `json:"id"`
	Order     int             `json:"order"`
	Exercise  domain.Exercise `json:"exercise"`
	Completed bool            `json:"completed"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

var errMalformedSession = errors.New("malformed session record")

// encodeSession converts a domain session to its wire form.
func encodeSession(s *domain.Session) (json.RawMessage, error) {
	rec := sessionRecord{
		ID:          s.ID,
		SessionType: s.Type,
		Date:        utcPtr(s.Date),
		StartTime:   utcPtr(s.StartTime),
		EndTime:     utcOptional(s.EndTime),
		IsFinished:  s.IsFinished,
	}

	switch s.Type {
	case domain.SessionVolume:
		if s.Volume == nil {
			return nil, fmt.Errorf("%w: volume session %s has no volume data", errMalformedSession, s.ID)
		}
		level, count := s.Volume.TargetLevel, s.Volume.BoulderCount
		rec.TargetLevel = &level
		rec.BoulderCount = &count
		rec.Attempts = make([]attemptRecord, 0, len(s.Volume.Attempts))
		for _, a := range s.Volume.Attempts {
			rec.Attempts = append(rec.Attempts, attemptRecord{
				ID:        a.ID,
				Order:     a.Order,
				Result:    a.Result,
				Comment:   a.Comment,
				Timestamp: utcOptional(a.Timestamp),
			})
		}
	case domain.SessionTraining:
		if s.Training == nil {
			return nil, fmt.Errorf("%w: training session %s has no training data", errMalformedSession, s.ID)
		}
		t := s.Training
		hang, pullup, bench, trapBar := t.HangWeight, t.PullupWeight, t.BenchWeight, t.TrapBarWeight
		rec.TrainingData = &trainingRecord{
			HangWeight:    &hang,
			PullupWeight:  &pullup,
			BenchWeight:   &bench,
			TrapBarWeight: &trapBar,
			HangSets:      encodeSets(t.HangSets),
			PullupSets:    encodeSets(t.PullupSets),
			BenchSets:     encodeSets(t.BenchSets),
			TrapBarSets:   encodeSets(t.TrapBarSets),
		}
	default:
		return nil, fmt.Errorf("%w: unknown session type %q", errMalformedSession, s.Type)
	}

	return json.Marshal(rec)
}

func encodeSets(sets []domain.TrainingSet) []setRecord {
	if sets == nil {
		return nil
	}
	out := make([]setRecord, 0, len(sets))
	for _, s := range sets {
		out = append(out, setRecord{
			ID:        s.ID,
			Order:     s.Order,
			Exercise:  s.Exercise,
			Completed: s.Completed,
			Timestamp: utcOptional(s.Timestamp),
			Notes:     s.Notes,
		})
	}
	return out
}

// decodeSession reconstructs a domain session from a current-version record,
// filling defaults for fields older payloads did not have.
func decodeSession(raw json.RawMessage) (domain.Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errMalformedSession, err)
	}
	if rec.ID == "" {
		return domain.Session{}, fmt.Errorf("%w: missing id", errMalformedSession)
	}
	if rec.Date == nil {
		return domain.Session{}, fmt.Errorf("%w: session %s missing date", errMalformedSession, rec.ID)
	}

	s := domain.Session{
		ID:         rec.ID,
		Type:       rec.SessionType,
		Date:       rec.Date.UTC(),
		EndTime:    utcOptional(rec.EndTime),
		IsFinished: rec.IsFinished,
	}
	// startTime was introduced after date; sessions without it started at creation.
	if rec.StartTime != nil {
		s.StartTime = rec.StartTime.UTC()
	} else {
		s.StartTime = s.Date
	}

	switch rec.SessionType {
	case domain.SessionVolume:
		v, err := decodeVolume(&rec)
		if err != nil {
			return domain.Session{}, err
		}
		s.Volume = v
	case domain.SessionTraining:
		t, err := decodeTraining(rec.ID, rec.TrainingData)
		if err != nil {
			return domain.Session{}, err
		}
		s.Training = t
	default:
		return domain.Session{}, fmt.Errorf("%w: session %s has unknown type %q", errMalformedSession, rec.ID, rec.SessionType)
	}
	return s, nil
}

func decodeVolume(rec *sessionRecord) (*domain.VolumeDetails, error) {
	if rec.TargetLevel == nil {
		return nil, fmt.Errorf("%w: volume session %s missing targetLevel", errMalformedSession, rec.ID)
	}
	v := &domain.VolumeDetails{
		TargetLevel: *rec.TargetLevel,
		Attempts:    make([]domain.BoulderAttempt, 0, len(rec.Attempts)),
	}
	if rec.BoulderCount != nil {
		v.BoulderCount = *rec.BoulderCount
	} else {
		v.BoulderCount = len(rec.Attempts)
	}
	for _, a := range rec.Attempts {
		if a.Result != domain.ResultNone && !a.Result.IsValid() {
			return nil, fmt.Errorf("%w: attempt %s has unknown result %q", errMalformedSession, a.ID, a.Result)
		}
		v.Attempts = append(v.Attempts, domain.BoulderAttempt{
			ID:        a.ID,
			Order:     a.Order,
			Result:    a.Result,
			Comment:   a.Comment,
			Timestamp: utcOptional(a.Timestamp),
		})
	}
	return v, nil
}

func decodeTraining(sessionID string, rec *trainingRecord) (*domain.TrainingData, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: training session %s missing trainingData", errMalformedSession, sessionID)
	}
	t := &domain.TrainingData{
		HangWeight:    weightOrDefault(rec.HangWeight, domain.ExerciseHang),
		PullupWeight:  weightOrDefault(rec.PullupWeight, domain.ExercisePullup),
		BenchWeight:   weightOrDefault(rec.BenchWeight, domain.ExerciseBench),
		TrapBarWeight: weightOrDefault(rec.TrapBarWeight, domain.ExerciseTrapBar),
	}
	var err error
	if t.HangSets, err = decodeSets(rec.HangSets, domain.ExerciseHang); err != nil {
		return nil, err
	}
	if t.PullupSets, err = decodeSets(rec.PullupSets, domain.ExercisePullup); err != nil {
		return nil, err
	}
	if t.BenchSets, err = decodeSets(rec.BenchSets, domain.ExerciseBench); err != nil {
		return nil, err
	}
	if t.TrapBarSets, err = decodeSets(rec.TrapBarSets, domain.ExerciseTrapBar); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeSets(recs []setRecord, exercise domain.Exercise) ([]domain.TrainingSet, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	out := make([]domain.TrainingSet, 0, len(recs))
	for _, r := range recs {
		ex := r.Exercise
		if ex == "" {
			ex = exercise
		}
		if !ex.IsValid() {
			return nil, fmt.Errorf("%w: set %s has unknown exercise %q", errMalformedSession, r.ID, r.Exercise)
		}
		out = append(out, domain.TrainingSet{
			ID:        r.ID,
			Order:     r.Order,
			Exercise:  ex,
			Completed: r.Completed,
			Timestamp: utcOptional(r.Timestamp),
			Notes:     r.Notes,
		})
	}
	return out, nil
}

func weightOrDefault(w *float64, e domain.Exercise) float64 {
	if w == nil {
		return domain.DefaultWeight(e)
	}
	return *w
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

func utcOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return utcPtr(*t)
}

// encodePayload serializes the full collection at the current version.
func encodePayload(sessions []domain.Session) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(sessions))
	for i := range sessions {
		rec, err := encodeSession(&sessions[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return json.Marshal(storedPayload{Version: CurrentSchemaVersion, Sessions: records})
}
