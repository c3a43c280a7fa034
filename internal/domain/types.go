package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PlaylistEntries stores playlist song references as a JSON column. Scan
// validates the raw record before any business logic touches it: rows that
// are not a JSON array of {id, songId} objects fail fast instead of leaking
// malformed state into the deletion pipeline.
type PlaylistEntries []PlaylistEntry

func (p PlaylistEntries) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	return json.Marshal(p)
}

func (p *PlaylistEntries) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("playlist entries: unsupported column type %T", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*p = nil
		return nil
	}

	var entries []PlaylistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("playlist entries: invalid document: %w", err)
	}
	for i, e := range entries {
		if e.SongID == "" {
			return fmt.Errorf("playlist entries: entry %d has no songId", i)
		}
	}

	*p = entries
	return nil
}

// Without returns the entries with every reference to songID removed, and
// whether anything was actually removed.
func (p PlaylistEntries) Without(songID string) (PlaylistEntries, bool) {
	kept := make(PlaylistEntries, 0, len(p))
	removed := false
	for _, e := range p {
		if e.SongID == songID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}
