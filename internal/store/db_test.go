package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewSQLiteDB(DSN(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func testSong(userID, id string) *domain.Song {
	now := time.Now()
	artist := "Nobuo Uematsu"
	album := "Final Fantasy X OST"
	return &domain.Song{
		ID:        id,
		UserID:    userID,
		FileName:  id + ".mp3",
		Title:     "Song " + id,
		Duration:  180000,
		Artist:    &artist,
		AlbumName: &album,
		AlbumID:   domain.DeriveAlbumID(domain.AlbumKey{Artist: &artist, AlbumName: &album}),
		Hash:      "hash-" + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDB_Songs(t *testing.T) {
	db := setupTestDB(t)

	song := testSong("user1", "s1")
	if err := InsertSong(db, song); err != nil {
		t.Fatalf("InsertSong failed: %v", err)
	}

	fetched, err := GetSong(db, "user1", "s1")
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if fetched.Title != song.Title || fetched.Hash != song.Hash {
		t.Errorf("fetched song mismatch: %+v", fetched)
	}
	if fetched.Artist == nil || *fetched.Artist != "Nobuo Uematsu" {
		t.Errorf("artist = %v", fetched.Artist)
	}

	// Songs are partitioned per user.
	if _, err := GetSong(db, "user2", "s1"); !IsNotFound(err) {
		t.Errorf("expected not found for other user, got %v", err)
	}

	matches, err := FindLiveSongsByHash(db, "user1", song.Hash)
	if err != nil {
		t.Fatalf("FindLiveSongsByHash failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(matches))
	}

	if err := TombstoneSong(db, "user1", "s1"); err != nil {
		t.Fatalf("TombstoneSong failed: %v", err)
	}

	// A tombstone never blocks a re-upload.
	matches, err = FindLiveSongsByHash(db, "user1", song.Hash)
	if err != nil {
		t.Fatalf("FindLiveSongsByHash failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("tombstoned song still matched by hash")
	}

	// The row itself survives.
	fetched, err = GetSong(db, "user1", "s1")
	if err != nil {
		t.Fatalf("GetSong after tombstone failed: %v", err)
	}
	if !fetched.Deleted {
		t.Error("song not marked deleted")
	}

	// Tombstoning twice reports not found.
	if err := TombstoneSong(db, "user1", "s1"); !IsNotFound(err) {
		t.Errorf("expected not found on second tombstone, got %v", err)
	}
}

func TestDB_SongCounts(t *testing.T) {
	db := setupTestDB(t)

	a := testSong("user1", "a")
	b := testSong("user1", "b")
	b.Hash = "other-hash"
	if err := InsertSong(db, a); err != nil {
		t.Fatalf("InsertSong failed: %v", err)
	}
	if err := InsertSong(db, b); err != nil {
		t.Fatalf("InsertSong failed: %v", err)
	}

	count, err := CountLiveSongsByAlbum(db, "user1", a.AlbumID)
	if err != nil {
		t.Fatalf("CountLiveSongsByAlbum failed: %v", err)
	}
	if count != 2 {
		t.Errorf("album count = %d, want 2", count)
	}

	count, err = CountLiveSongsByArtist(db, "user1", *a.Artist)
	if err != nil {
		t.Fatalf("CountLiveSongsByArtist failed: %v", err)
	}
	if count != 2 {
		t.Errorf("artist count = %d, want 2", count)
	}

	if err := TombstoneSong(db, "user1", "a"); err != nil {
		t.Fatalf("TombstoneSong failed: %v", err)
	}
	count, _ = CountLiveSongsByAlbum(db, "user1", a.AlbumID)
	if count != 1 {
		t.Errorf("album count after tombstone = %d, want 1", count)
	}
}

func TestDB_SongLikedAndPlays(t *testing.T) {
	db := setupTestDB(t)

	if err := InsertSong(db, testSong("user1", "s1")); err != nil {
		t.Fatalf("InsertSong failed: %v", err)
	}

	if err := SetSongLiked(db, "user1", "s1", true); err != nil {
		t.Fatalf("SetSongLiked failed: %v", err)
	}
	song, _ := GetSong(db, "user1", "s1")
	if !song.Liked || song.WhenLiked == nil {
		t.Errorf("liked = %v, whenLiked = %v", song.Liked, song.WhenLiked)
	}

	if err := SetSongLiked(db, "user1", "s1", false); err != nil {
		t.Fatalf("SetSongLiked failed: %v", err)
	}
	song, _ = GetSong(db, "user1", "s1")
	if song.Liked || song.WhenLiked != nil {
		t.Errorf("unlike left liked = %v, whenLiked = %v", song.Liked, song.WhenLiked)
	}

	for i := 0; i < 3; i++ {
		if err := RecordSongPlay(db, "user1", "s1"); err != nil {
			t.Fatalf("RecordSongPlay failed: %v", err)
		}
	}
	song, _ = GetSong(db, "user1", "s1")
	if song.Played != 3 || song.LastPlayed == nil {
		t.Errorf("played = %d, lastPlayed = %v", song.Played, song.LastPlayed)
	}

	if err := RecordSongPlay(db, "user1", "missing"); !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDB_Albums(t *testing.T) {
	db := setupTestDB(t)

	name := "Final Fantasy X OST"
	artist := "Nobuo Uematsu"
	album := &domain.Album{
		ID:          domain.DeriveAlbumID(domain.AlbumKey{AlbumArtist: &artist, AlbumName: &name}),
		UserID:      "user1",
		Album:       &name,
		AlbumArtist: &artist,
	}

	if err := EnsureAlbum(db, album); err != nil {
		t.Fatalf("EnsureAlbum failed: %v", err)
	}

	fetched, err := GetAlbum(db, "user1", album.ID)
	if err != nil {
		t.Fatalf("GetAlbum failed: %v", err)
	}
	if fetched.Deleted {
		t.Error("new album marked deleted")
	}

	// Seed artwork, then verify a second seed does not overwrite.
	if err := SetAlbumArtwork(db, "user1", album.ID, &domain.Artwork{Hash: "h1", Type: domain.ArtworkJPG}); err != nil {
		t.Fatalf("SetAlbumArtwork failed: %v", err)
	}
	if err := SetAlbumArtwork(db, "user1", album.ID, &domain.Artwork{Hash: "h2", Type: domain.ArtworkPNG}); err != nil {
		t.Fatalf("SetAlbumArtwork failed: %v", err)
	}
	fetched, _ = GetAlbum(db, "user1", album.ID)
	if fetched.ArtworkHash == nil || *fetched.ArtworkHash != "h1" {
		t.Errorf("artwork hash = %v, want h1", fetched.ArtworkHash)
	}

	if err := TombstoneAlbum(db, "user1", album.ID); err != nil {
		t.Fatalf("TombstoneAlbum failed: %v", err)
	}
	fetched, _ = GetAlbum(db, "user1", album.ID)
	if !fetched.Deleted {
		t.Error("album not marked deleted")
	}

	// Ensure revives the tombstone and keeps the artwork.
	if err := EnsureAlbum(db, album); err != nil {
		t.Fatalf("EnsureAlbum (revive) failed: %v", err)
	}
	fetched, _ = GetAlbum(db, "user1", album.ID)
	if fetched.Deleted {
		t.Error("revived album still deleted")
	}
	if fetched.ArtworkHash == nil || *fetched.ArtworkHash != "h1" {
		t.Errorf("revive lost artwork: %v", fetched.ArtworkHash)
	}
}

func TestDB_Artists(t *testing.T) {
	db := setupTestDB(t)

	if err := EnsureArtist(db, "user1", "Nobuo Uematsu"); err != nil {
		t.Fatalf("EnsureArtist failed: %v", err)
	}
	artist, err := GetArtist(db, "user1", "Nobuo Uematsu")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if artist.Name != "Nobuo Uematsu" || artist.Deleted {
		t.Errorf("artist = %+v", artist)
	}

	if err := TombstoneArtist(db, "user1", "Nobuo Uematsu"); err != nil {
		t.Fatalf("TombstoneArtist failed: %v", err)
	}
	if err := EnsureArtist(db, "user1", "Nobuo Uematsu"); err != nil {
		t.Fatalf("EnsureArtist (revive) failed: %v", err)
	}
	artist, _ = GetArtist(db, "user1", "Nobuo Uematsu")
	if artist.Deleted {
		t.Error("revived artist still deleted")
	}
}

func TestDB_UserData(t *testing.T) {
	db := setupTestDB(t)

	data, err := GetUserData(db, "user1")
	if err != nil {
		t.Fatalf("GetUserData failed: %v", err)
	}
	if data.SongCount != 0 {
		t.Errorf("fresh user song count = %d", data.SongCount)
	}

	if err := AdjustSongCount(db, "user1", 1); err != nil {
		t.Fatalf("AdjustSongCount failed: %v", err)
	}
	if err := AdjustSongCount(db, "user1", 1); err != nil {
		t.Fatalf("AdjustSongCount failed: %v", err)
	}
	data, _ = GetUserData(db, "user1")
	if data.SongCount != 2 {
		t.Errorf("song count = %d, want 2", data.SongCount)
	}

	if err := AdjustSongCount(db, "user1", -1); err != nil {
		t.Fatalf("AdjustSongCount failed: %v", err)
	}
	data, _ = GetUserData(db, "user1")
	if data.SongCount != 1 {
		t.Errorf("song count = %d, want 1", data.SongCount)
	}

	// The count never goes negative, even if cleanup runs twice.
	if err := AdjustSongCount(db, "user1", -5); err != nil {
		t.Fatalf("AdjustSongCount failed: %v", err)
	}
	data, _ = GetUserData(db, "user1")
	if data.SongCount != 0 {
		t.Errorf("song count = %d, want 0", data.SongCount)
	}
}

func TestDB_Playlists(t *testing.T) {
	db := setupTestDB(t)

	playlist := &domain.Playlist{
		ID:     "p1",
		UserID: "user1",
		Name:   "Favorites",
		Songs: domain.PlaylistEntries{
			{ID: "e1", SongID: "s1"},
			{ID: "e2", SongID: "s2"},
			{ID: "e3", SongID: "s1"},
		},
	}
	if err := InsertPlaylist(db, playlist); err != nil {
		t.Fatalf("InsertPlaylist failed: %v", err)
	}

	playlists, err := ListLivePlaylists(db, "user1")
	if err != nil {
		t.Fatalf("ListLivePlaylists failed: %v", err)
	}
	if len(playlists) != 1 || len(playlists[0].Songs) != 3 {
		t.Fatalf("playlists = %+v", playlists)
	}

	remaining, changed := playlists[0].Songs.Without("s1")
	if !changed || len(remaining) != 1 {
		t.Fatalf("Without = %+v, %v", remaining, changed)
	}
	if err := UpdatePlaylistSongs(db, "user1", "p1", remaining); err != nil {
		t.Fatalf("UpdatePlaylistSongs failed: %v", err)
	}

	fetched, err := GetPlaylist(db, "user1", "p1")
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	if len(fetched.Songs) != 1 || fetched.Songs[0].SongID != "s2" {
		t.Errorf("songs after update = %+v", fetched.Songs)
	}
}

func TestDB_UploadActions(t *testing.T) {
	db := setupTestDB(t)

	action := &domain.UploadAction{
		ID:       "a1",
		UserID:   "user1",
		FileName: "track.mp3",
		SongID:   "s1",
	}
	if err := CreateUploadAction(db, action); err != nil {
		t.Fatalf("CreateUploadAction failed: %v", err)
	}
	if action.Status != domain.ActionStatusPending {
		t.Errorf("new action status = %s", action.Status)
	}

	msg := "File duration could not be determined"
	if err := FinalizeUploadAction(db, "a1", domain.ActionStatusCancelled, &msg); err != nil {
		t.Fatalf("FinalizeUploadAction failed: %v", err)
	}

	fetched, err := GetUploadAction(db, "a1")
	if err != nil {
		t.Fatalf("GetUploadAction failed: %v", err)
	}
	if fetched.Status != domain.ActionStatusCancelled {
		t.Errorf("status = %s", fetched.Status)
	}
	if fetched.Message == nil || *fetched.Message != msg {
		t.Errorf("message = %v", fetched.Message)
	}

	// Finalizing is one-shot; a second call does not overwrite.
	if err := FinalizeUploadAction(db, "a1", domain.ActionStatusSuccess, nil); err != nil {
		t.Fatalf("FinalizeUploadAction failed: %v", err)
	}
	fetched, _ = GetUploadAction(db, "a1")
	if fetched.Status != domain.ActionStatusCancelled {
		t.Errorf("finalized action overwritten to %s", fetched.Status)
	}

	actions, err := ListUploadActions(db, "user1")
	if err != nil {
		t.Fatalf("ListUploadActions failed: %v", err)
	}
	if len(actions) != 1 {
		t.Errorf("actions = %d, want 1", len(actions))
	}
}

func TestDB_WithTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := InsertSong(tx, testSong("user1", "s1")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v", err)
	}

	if _, err := GetSong(db, "user1", "s1"); !IsNotFound(err) {
		t.Errorf("rolled back song still present: %v", err)
	}
}

func TestDB_WithTxCommits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := InsertSong(tx, testSong("user1", "s1")); err != nil {
			return err
		}
		return AdjustSongCount(tx, "user1", 1)
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if _, err := GetSong(db, "user1", "s1"); err != nil {
		t.Errorf("committed song missing: %v", err)
	}
	data, _ := GetUserData(db, "user1")
	if data.SongCount != 1 {
		t.Errorf("song count = %d, want 1", data.SongCount)
	}
}
