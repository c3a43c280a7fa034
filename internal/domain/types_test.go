package domain

import "testing"

func TestPlaylistEntriesScan(t *testing.T) {
	var entries PlaylistEntries
	err := entries.Scan(`[{"id":"e1","songId":"s1"},{"id":"e2","songId":"s2"}]`)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 2 || entries[0].SongID != "s1" || entries[1].ID != "e2" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestPlaylistEntriesScanRejectsMalformed(t *testing.T) {
	var entries PlaylistEntries
	if err := entries.Scan(`{"not":"an array"}`); err == nil {
		t.Error("expected error for non-array document")
	}
	if err := entries.Scan(`[{"id":"e1"}]`); err == nil {
		t.Error("expected error for entry without songId")
	}
}

func TestPlaylistEntriesScanNil(t *testing.T) {
	var entries PlaylistEntries
	if err := entries.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %+v", entries)
	}
}

func TestPlaylistEntriesValue(t *testing.T) {
	v, err := PlaylistEntries(nil).Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "[]" {
		t.Errorf("empty entries should encode as [], got %v", v)
	}
}

func TestPlaylistEntriesWithout(t *testing.T) {
	entries := PlaylistEntries{
		{ID: "e1", SongID: "s1"},
		{ID: "e2", SongID: "s2"},
		{ID: "e3", SongID: "s1"},
	}

	kept, removed := entries.Without("s1")
	if !removed {
		t.Error("expected removal")
	}
	if len(kept) != 1 || kept[0].SongID != "s2" {
		t.Errorf("unexpected kept entries: %+v", kept)
	}

	kept, removed = entries.Without("missing")
	if removed {
		t.Error("expected no removal")
	}
	if len(kept) != 3 {
		t.Errorf("expected all entries kept, got %d", len(kept))
	}
}
