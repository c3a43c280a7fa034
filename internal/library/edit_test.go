package library

import (
	"context"
	"testing"

	"github.com/obelow/aria/internal/domain"
	"github.com/obelow/aria/internal/store"
)

func editUpdate() SongUpdate {
	year := 2000
	one, five := 1, 5
	return SongUpdate{
		Title:       "Wow",
		Artist:      "Greg",
		AlbumArtist: "Greg G",
		AlbumName:   "Wow Wow",
		Genre:       "Pop",
		Year:        &year,
		Track:       domain.Position{No: &one, Of: &one},
		Disk:        domain.Position{No: &one, Of: &five},
	}
}

func TestEditUpdatesSongFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ingest(t, "user1", "s1", "song.mp3", makeMP3(t, songMeta{
		title: "Old", artist: "Old Artist", album: "Old Album",
	}))

	update := editUpdate()
	out := f.svc.Edit(ctx, f.token, "s1", update)
	if out.Kind != KindSuccess {
		t.Fatalf("outcome = %+v", out)
	}

	song, err := store.GetSong(f.db, "user1", "s1")
	if err != nil {
		t.Fatalf("song: %v", err)
	}
	if song.Title != "Wow" || song.Artist == nil || *song.Artist != "Greg" {
		t.Errorf("song = %+v", song)
	}
	if song.Genre == nil || *song.Genre != "Pop" || song.Year == nil || *song.Year != 2000 {
		t.Errorf("genre/year = %v/%v", song.Genre, song.Year)
	}
	if song.TrackNo == nil || *song.TrackNo != 1 || song.DiskOf == nil || *song.DiskOf != 5 {
		t.Errorf("track/disk = %+v/%+v", song.Track(), song.Disk())
	}

	wantAlbumID := domain.DeriveAlbumID(domain.SongAlbumKey(song))
	if song.AlbumID != wantAlbumID {
		t.Errorf("album id = %q, want %q", song.AlbumID, wantAlbumID)
	}
	if f.albumDeleted(t, song.AlbumID) {
		t.Error("new album missing or deleted")
	}
	if f.artistDeleted(t, "Greg") {
		t.Error("new artist missing or deleted")
	}
}

func TestEditMissingSong(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Edit(context.Background(), f.token, "nope", editUpdate())
	if out.Kind != KindError || out.Code != CodeSongMissing {
		t.Errorf("outcome = %+v", out)
	}
}

func TestEditRequiresTitle(t *testing.T) {
	f := newFixture(t)

	update := editUpdate()
	update.Title = ""
	out := f.svc.Edit(context.Background(), f.token, "s1", update)
	if out.Kind != KindError || out.Code != CodeMissingTitle {
		t.Errorf("outcome = %+v", out)
	}
}

func TestEditRejectsBadToken(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Edit(context.Background(), "bogus-token", "s1", editUpdate())
	if out.Kind != KindUnauthorized {
		t.Errorf("outcome = %+v", out)
	}
}

func TestEditMigratesOrphanedGroupings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ingest(t, "user1", "s1", "song.mp3", makeMP3(t, songMeta{
		title: "Old", artist: "Old Artist", album: "Old Album",
	}))
	song, _ := store.GetSong(f.db, "user1", "s1")
	oldAlbumID := song.AlbumID

	out := f.svc.Edit(ctx, f.token, "s1", editUpdate())
	if out.Kind != KindSuccess {
		t.Fatalf("outcome = %+v", out)
	}

	// The song was the old grouping's only reference, so both sides are
	// tombstoned and the new ones exist.
	if !f.albumDeleted(t, oldAlbumID) {
		t.Error("orphaned album not tombstoned")
	}
	if !f.artistDeleted(t, "Old Artist") {
		t.Error("orphaned artist not tombstoned")
	}
}

func TestEditKeepsSharedGroupings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared := songMeta{artist: "Shared", album: "Shared Album"}
	shared.marker = "one"
	f.ingest(t, "user1", "s1", "one.mp3", makeMP3(t, shared))
	shared.marker = "two"
	f.ingest(t, "user1", "s2", "two.mp3", makeMP3(t, shared))

	song, _ := store.GetSong(f.db, "user1", "s1")
	sharedAlbumID := song.AlbumID

	out := f.svc.Edit(ctx, f.token, "s1", editUpdate())
	if out.Kind != KindSuccess {
		t.Fatalf("outcome = %+v", out)
	}

	// The second song still references the old grouping.
	if f.albumDeleted(t, sharedAlbumID) {
		t.Error("shared album was tombstoned")
	}
	if f.artistDeleted(t, "Shared") {
		t.Error("shared artist was tombstoned")
	}
}

func TestEditSeedsNewAlbumArtworkFromSong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ingest(t, "user1", "s1", "song.mp3", makeMP3(t, songMeta{
		title: "Old", artist: "A", album: "B", artwork: pngBytes(t),
	}))

	out := f.svc.Edit(ctx, f.token, "s1", editUpdate())
	if out.Kind != KindSuccess {
		t.Fatalf("outcome = %+v", out)
	}

	song, _ := store.GetSong(f.db, "user1", "s1")
	album, err := store.GetAlbum(f.db, "user1", song.AlbumID)
	if err != nil {
		t.Fatalf("album: %v", err)
	}
	if album.ArtworkHash == nil || song.ArtworkHash == nil || *album.ArtworkHash != *song.ArtworkHash {
		t.Errorf("album artwork = %v, song artwork = %v", album.ArtworkHash, song.ArtworkHash)
	}
}

func TestEditTombstonedSongIsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ingest(t, "user1", "s1", "song.mp3", makeMP3(t, songMeta{title: "T"}))
	if out := f.svc.Delete(ctx, f.token, "s1"); out.Kind != KindSuccess {
		t.Fatalf("delete: %+v", out)
	}

	out := f.svc.Edit(ctx, f.token, "s1", editUpdate())
	if out.Kind != KindError || out.Code != CodeSongMissing {
		t.Errorf("outcome = %+v", out)
	}
}
