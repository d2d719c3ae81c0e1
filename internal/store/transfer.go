package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// Export returns the current envelope, indented for a human-readable file.
func (s *Store[S]) Export() ([]byte, error) {
	raw, err := s.envelope(s.Snapshot())
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent export: %w", err)
	}
	return out.Bytes(), nil
}

// BackupKey names the substrate entry an import saves the previous envelope under.
func BackupKey(key string, unixMilli int64) string {
	return fmt.Sprintf("%s-backup-%d", key, unixMilli)
}

// Import replaces the store with an exported envelope. Comments and trailing commas are
// tolerated. The previous envelope, if any, is kept under a backup key which is returned.
// The imported state goes through migration like a normal load.
func (s *Store[S]) Import(data []byte) (backup string, err error) {
	env, err := parseEnvelope(jsonc.ToJSON(data))
	if err != nil {
		return "", fmt.Errorf("import %s: %w", s.cfg.Key, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body := []byte(env.State)
	if env.Version < s.cfg.Version && s.cfg.Migrate != nil {
		if body, err = s.migrate(body, env.Version); err != nil {
			return "", fmt.Errorf("import %s: %w", s.cfg.Key, err)
		}
	}
	next, err := s.decode(body)
	if err != nil {
		return "", fmt.Errorf("import %s: %w", s.cfg.Key, err)
	}

	prev, ok, err := s.cfg.Substrate.Get(s.cfg.Key)
	if err != nil {
		return "", fmt.Errorf("import %s: read current: %w", s.cfg.Key, err)
	}
	if ok {
		backup = BackupKey(s.cfg.Key, s.cfg.Clock.Now().UnixMilli())
		if err := s.cfg.Substrate.Set(backup, prev); err != nil {
			return "", fmt.Errorf("import %s: backup: %w", s.cfg.Key, err)
		}
	}
	if err := s.commit(next); err != nil {
		return backup, err
	}
	s.cfg.Logger.Info("store imported", "key", s.cfg.Key, "version", env.Version, "backup", backup)
	return backup, nil
}
