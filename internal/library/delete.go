package library

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/objstore"
	"github.com/obelow/aria/internal/store"
)

var errAlreadyDeleted = errors.New("song already deleted")

// Delete tombstones a song and retracts every reference to it: orphaned
// album and artist groupings, playlist entries, and the user's song count,
// all in the song's own transaction. The audio object is removed after
// commit; an object that fails to delete becomes an orphan for a separate
// sweep, it is alerted but not retried here.
func (s *Service) Delete(ctx context.Context, token, songID string) Outcome {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return Unauthorized()
	}

	log := s.log.WithUser(identity.UserID)
	var objectKey string
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		song, err := store.GetSong(tx, identity.UserID, songID)
		if store.IsNotFound(err) {
			return errSongMissing
		}
		if err != nil {
			return err
		}
		if song.Deleted {
			return errAlreadyDeleted
		}
		objectKey = objstore.SongKey(identity.UserID, song.ID, song.FileName)

		// Orphan checks run while the song is still live, so a count of
		// one means this song is the grouping's last reference.
		if err := retractIfLastReference(tx, albumGrouping, identity.UserID, song.AlbumID); err != nil {
			return err
		}
		if song.Artist != nil {
			if err := retractIfLastReference(tx, artistGrouping, identity.UserID, *song.Artist); err != nil {
				return err
			}
		}

		// Playlists are rewritten only when an entry actually pointed at
		// this song.
		playlists, err := store.ListLivePlaylists(tx, identity.UserID)
		if err != nil {
			return err
		}
		for _, playlist := range playlists {
			remaining, changed := playlist.Songs.Without(songID)
			if !changed {
				continue
			}
			if err := store.UpdatePlaylistSongs(tx, identity.UserID, playlist.ID, remaining); err != nil {
				return err
			}
		}

		if err := store.AdjustSongCount(tx, identity.UserID, -1); err != nil {
			return err
		}
		return store.TombstoneSong(tx, identity.UserID, songID)
	})

	switch {
	case errors.Is(err, errSongMissing):
		return Errorf(CodeSongMissing, "the song does not exist")
	case errors.Is(err, errAlreadyDeleted):
		// A repeated delete is a no-op, not a failure.
		return Success()
	case err != nil:
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID, "song_id": songID})
		return Errorf(CodeProcessing, "delete failed: %v", err)
	}

	s.removeObject(ctx, objectKey, log)

	log.Info("song deleted", "song_id", songID)
	return Success()
}
