package library

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
	"github.com/obelow/aria/internal/store"
)

var errSongMissing = errors.New("song does not exist")

// SongUpdate is the caller-editable slice of a song's metadata. Title is
// required; everything else clears when left empty.
type SongUpdate struct {
	Title       string          `json:"title"`
	Artist      string          `json:"artist,omitempty"`
	AlbumArtist string          `json:"albumArtist,omitempty"`
	AlbumName   string          `json:"albumName,omitempty"`
	Genre       string          `json:"genre,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Track       domain.Position `json:"track"`
	Disk        domain.Position `json:"disk"`
}

// Edit mutates a song's metadata and migrates it between album and artist
// groupings, tombstoning a grouping the song was the last live reference to
// and creating the one it moves into. Everything runs in one transaction so
// a concurrent edit or delete of the same song cannot observe half a
// migration.
func (s *Service) Edit(ctx context.Context, token, songID string, update SongUpdate) Outcome {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return Unauthorized()
	}
	if update.Title == "" {
		return Errorf(CodeMissingTitle, "a song title is required")
	}

	log := s.log.WithUser(identity.UserID)
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		song, err := store.GetSong(tx, identity.UserID, songID)
		if store.IsNotFound(err) {
			return errSongMissing
		}
		if err != nil {
			return err
		}
		if song.Deleted {
			return errSongMissing
		}

		newAlbumID := domain.DeriveAlbumID(domain.AlbumKey{
			AlbumName:   optional(update.AlbumName),
			AlbumArtist: optional(update.AlbumArtist),
			Artist:      optional(update.Artist),
		})

		if newAlbumID != song.AlbumID {
			if err := retractIfLastReference(tx, albumGrouping, identity.UserID, song.AlbumID); err != nil {
				return err
			}
			album := &domain.Album{
				ID:          newAlbumID,
				UserID:      identity.UserID,
				Album:       optional(update.AlbumName),
				AlbumArtist: optional(update.AlbumArtist),
				// A newly created album inherits the song's own
				// artwork.
				ArtworkHash: song.ArtworkHash,
				ArtworkType: song.ArtworkType,
			}
			if err := store.EnsureAlbum(tx, album); err != nil {
				return err
			}
		}

		oldArtist := ""
		if song.Artist != nil {
			oldArtist = *song.Artist
		}
		if update.Artist != oldArtist {
			if oldArtist != "" {
				if err := retractIfLastReference(tx, artistGrouping, identity.UserID, oldArtist); err != nil {
					return err
				}
			}
			if update.Artist != "" {
				if err := store.EnsureArtist(tx, identity.UserID, update.Artist); err != nil {
					return err
				}
			}
		}

		song.Title = update.Title
		song.Artist = optional(update.Artist)
		song.AlbumArtist = optional(update.AlbumArtist)
		song.AlbumName = optional(update.AlbumName)
		song.AlbumID = newAlbumID
		song.Genre = optional(update.Genre)
		song.Year = update.Year
		song.TrackNo = update.Track.No
		song.TrackOf = update.Track.Of
		song.DiskNo = update.Disk.No
		song.DiskOf = update.Disk.Of
		return store.UpdateSong(tx, song)
	})

	switch {
	case errors.Is(err, errSongMissing):
		return Errorf(CodeSongMissing, "the song does not exist")
	case err != nil:
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID, "song_id": songID})
		return Errorf(CodeProcessing, "edit failed: %v", err)
	}

	log.Info("song edited", "song_id", songID)
	return Success()
}
