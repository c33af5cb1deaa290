package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentSchemaVersion is the version written by SaveAllSessions.
const CurrentSchemaVersion = 2

// Default store keys.
const (
	DefaultSessionsKey = "sessions-store"
	DefaultThemeKey    = "theme-store"
)

// storedPayload is the document kept under the sessions key.
type storedPayload struct {
	Version  int               `json:"version"`
	Sessions []json.RawMessage `json:"sessions"`
}

// rawSession is a session record before decoding, so migrations can rewrite
// fields without knowing the full shape.
type rawSession map[string]json.RawMessage

// migration upgrades sessions stored at version from to version from+1.
type migration struct {
	from    int
	migrate func(sessions []rawSession) ([]rawSession, error)
}

// migrations is applied in order while the stored version is below
// CurrentSchemaVersion. New schema changes append a step here.
var migrations = []migration{
	{from: 1, migrate: addSessionType},
}

var errUnsupportedVersion = errors.New("unsupported schema version")

// addSessionType tags every session written before training sessions existed
// as a volume session.
func addSessionType(sessions []rawSession) ([]rawSession, error) {
	volume := json.RawMessage(`"volume"`)
	for _, s := range sessions {
		if v, ok := s["sessionType"]; !ok || isNull(v) {
			s["sessionType"] = volume
		}
	}
	return sessions, nil
}

// parsePayload splits raw bytes into a version and undecoded session records.
// A bare JSON array, or an object without a version, is a version 1 payload.
func parsePayload(raw []byte) (int, []rawSession, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, nil, errors.New("empty payload")
	}

	if trimmed[0] == '[' {
		var sessions []rawSession
		if err := json.Unmarshal(trimmed, &sessions); err != nil {
			return 0, nil, fmt.Errorf("unmarshal legacy session list: %w", err)
		}
		return 1, sessions, checkNoNullSessions(sessions)
	}

	var envelope struct {
		Version  *int         `json:"version"`
		Sessions []rawSession `json:"sessions"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return 0, nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	version := 1
	if envelope.Version != nil {
		version = *envelope.Version
	}
	return version, envelope.Sessions, checkNoNullSessions(envelope.Sessions)
}

func checkNoNullSessions(sessions []rawSession) error {
	for i, s := range sessions {
		if s == nil {
			return fmt.Errorf("session %d is null", i)
		}
	}
	return nil
}

// migrate runs the migration chain from version up to CurrentSchemaVersion.
func migrate(version int, sessions []rawSession) ([]rawSession, error) {
	if version > CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: %d is newer than %d", errUnsupportedVersion, version, CurrentSchemaVersion)
	}
	for version < CurrentSchemaVersion {
		step, ok := findMigration(version)
		if !ok {
			return nil, fmt.Errorf("%w: no migration from version %d", errUnsupportedVersion, version)
		}
		var err error
		sessions, err = step.migrate(sessions)
		if err != nil {
			return nil, fmt.Errorf("migrate from version %d: %w", version, err)
		}
		version = step.from + 1
	}
	return sessions, nil
}

func findMigration(from int) (migration, bool) {
	for _, m := range migrations {
		if m.from == from {
			return m, true
		}
	}
	return migration{}, false
}

// marshalRawPayload encodes migrated records at the current version.
func marshalRawPayload(sessions []rawSession) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(sessions))
	for _, s := range sessions {
		b, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		records = append(records, b)
	}
	return json.Marshal(storedPayload{Version: CurrentSchemaVersion, Sessions: records})
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
