package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/constants"
	"github.com/obelow/aria/internal/domain"
	"github.com/obelow/aria/internal/hashing"
	"github.com/obelow/aria/internal/images"
	"github.com/obelow/aria/internal/logger"
	"github.com/obelow/aria/internal/mailer"
	"github.com/obelow/aria/internal/objstore"
	"github.com/obelow/aria/internal/store"
	"github.com/obelow/aria/internal/tags"
)

// Transaction aborts with an expected terminal outcome.
var (
	errDuplicate   = errors.New("duplicate song")
	errQuota       = errors.New("song quota exceeded")
	errRedelivered = errors.New("song already ingested")
)

// HandleObjectCreated runs the ingestion pipeline for a newly uploaded
// object. Keys outside the songs layout are not eligible and resolve to an
// Info outcome.
func (s *Service) HandleObjectCreated(ctx context.Context, objectKey string) Outcome {
	path, ok := objstore.ParseSongKey(objectKey)
	if !ok {
		s.log.Debug("object is not a song upload", "object_key", objectKey)
		return Info("object key does not match the song layout")
	}

	// The pending action is written before any processing so a crash
	// mid-pipeline is observable as a stuck action, not silent loss.
	action := &domain.UploadAction{
		ID:       uuid.NewString(),
		UserID:   path.UserID,
		FileName: path.FileName,
		SongID:   path.SongID,
	}
	log := s.log.WithUser(path.UserID).WithUpload(action.ID, objectKey)
	if err := store.CreateUploadAction(s.db, action); err != nil {
		s.alerts.Report(err, map[string]any{"object_key": objectKey})
		// finalize never runs for this upload, so the object cleanup an
		// error outcome owes the user happens here.
		s.removeObject(ctx, path.Key(), log)
		return Errorf(CodeProcessing, "failed to record upload action: %v", err)
	}

	out := s.ingest(ctx, path, log)
	s.finalize(ctx, action, path, out, log)
	return out
}

func (s *Service) ingest(ctx context.Context, path objstore.SongPath, log *logger.Logger) Outcome {
	scratch, err := os.MkdirTemp(s.scratchDir, "ingest-*")
	if err != nil {
		return Errorf(CodeProcessing, "failed to create scratch dir: %v", err)
	}
	defer os.RemoveAll(scratch)

	filePath := filepath.Join(scratch, path.FileName)
	if err := s.download(ctx, path.Key(), filePath); err != nil {
		return Errorf(CodeProcessing, "failed to download %s: %v", path.Key(), err)
	}

	hash, err := hashing.HashFile(filePath)
	if err != nil {
		return Errorf(CodeProcessing, "failed to hash %s: %v", path.FileName, err)
	}

	md, err := tags.Extract(filePath)
	if errors.Is(err, tags.ErrDurationUnknown) {
		// Expected for odd encodes. Terminal but not a system fault.
		return Cancelled(CodeDurationUnknown, "the song duration could not be determined")
	}
	if err != nil {
		return Errorf(CodeProcessing, "failed to parse %s: %v", path.FileName, err)
	}

	// Artwork goes to the object store before the transaction opens: the
	// write is content addressed and guarded by an existence check, so
	// repeating it after a transaction retry is harmless.
	artwork, out := s.storeArtwork(ctx, path.UserID, md, log)
	if out != nil {
		return *out
	}

	song := buildSong(path, md, hash, artwork)
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Dedup considers live songs only; a tombstoned copy never
		// blocks a re-upload.
		existing, err := store.FindLiveSongsByHash(tx, path.UserID, hash)
		if err != nil {
			return err
		}
		for _, dup := range existing {
			// Notifications are at least once. A match on the song's
			// own id is the same upload delivered again, not a
			// duplicate, and must leave the live song and its object
			// alone.
			if dup.ID == path.SongID {
				return errRedelivered
			}
		}
		if len(existing) > 0 {
			return errDuplicate
		}

		data, err := store.GetUserData(tx, path.UserID)
		if err != nil {
			return err
		}
		if data.SongCount+1 > int64(s.maxSongs) {
			return errQuota
		}

		album := &domain.Album{
			ID:          song.AlbumID,
			UserID:      path.UserID,
			Album:       song.AlbumName,
			AlbumArtist: song.AlbumArtist,
		}
		if artwork != nil {
			hash, typ := artwork.Hash, string(artwork.Type)
			album.ArtworkHash, album.ArtworkType = &hash, &typ
		}
		if err := store.EnsureAlbum(tx, album); err != nil {
			return err
		}

		if song.Artist != nil {
			if err := store.EnsureArtist(tx, path.UserID, *song.Artist); err != nil {
				return err
			}
		}

		if err := store.InsertSong(tx, song); err != nil {
			return err
		}
		return store.AdjustSongCount(tx, path.UserID, 1)
	})

	switch {
	case errors.Is(err, errRedelivered):
		log.Info("notification redelivered, song already ingested", "song_id", song.ID)
		return SuccessWithID(song.ID)
	case errors.Is(err, errDuplicate):
		return Cancelled(CodeDuplicate, "this song has already been uploaded")
	case errors.Is(err, errQuota):
		return Cancelled(CodeQuotaExceeded, fmt.Sprintf("exceeded maximum song count (%d)", s.maxSongs))
	case err != nil:
		return Errorf(CodeProcessing, "transaction failed: %v", err)
	}

	log.Info("song ingested", "song_id", song.ID, "hash", hash)
	return SuccessWithID(song.ID)
}

func (s *Service) download(ctx context.Context, key, dest string) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return err
	}
	if err := objstore.Download(ctx, s.objects, key, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// storeArtwork extracts, hashes and uploads the song's embedded artwork.
// Returns the artwork reference, or a terminal outcome on failure.
func (s *Service) storeArtwork(ctx context.Context, userID string, md *tags.Metadata, log *logger.Logger) (*domain.Artwork, *Outcome) {
	if len(md.Pictures) == 0 {
		return nil, nil
	}
	if len(md.Pictures) > 1 {
		log.Warn("multiple embedded images, using the first", "count", len(md.Pictures))
	}

	picture := md.Pictures[0]
	typ, err := tags.NormalizeArtworkType(picture.MIME)
	if err != nil {
		out := Errorf(CodeProcessing, "invalid artwork: %v", err)
		return nil, &out
	}

	artwork := &domain.Artwork{Hash: hashing.HashBytes(picture.Data), Type: typ}
	key := objstore.ArtworkKey(userID, artwork.Hash, typ)

	// Content addressed: identical images across songs share one object,
	// and re-running after a retry finds it already present.
	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		out := Errorf(CodeProcessing, "failed to check artwork %s: %v", key, err)
		return nil, &out
	}
	if exists {
		log.Debug("artwork already stored", "artwork_key", key)
		return artwork, nil
	}

	opts := objstore.PutOptions{ContentType: mimeFor(typ), CacheControl: constants.ArtworkCacheControl}
	if err := s.objects.Put(ctx, key, bytes.NewReader(picture.Data), int64(len(picture.Data)), opts); err != nil {
		out := Errorf(CodeProcessing, "failed to upload artwork %s: %v", key, err)
		return nil, &out
	}

	s.storeThumbnails(ctx, userID, artwork, picture.Data, opts, log)
	return artwork, nil
}

// storeThumbnails writes the resized artwork variants. Failures degrade to
// the original image, so they are logged and not propagated.
func (s *Service) storeThumbnails(ctx context.Context, userID string, artwork *domain.Artwork, data []byte, opts objstore.PutOptions, log *logger.Logger) {
	if s.resizer == nil {
		return
	}
	for _, size := range images.ThumbnailSizes {
		thumb, err := s.resizer.Resize(data, artwork.Type, size)
		if err != nil {
			log.Warn("failed to resize artwork", "size", size, "error", err)
			return
		}
		key := objstore.ThumbnailKey(userID, artwork.Hash, artwork.Type, size)
		if err := s.objects.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), opts); err != nil {
			log.Warn("failed to upload thumbnail", "thumbnail_key", key, "error", err)
			return
		}
	}
}

// finalize records the action's terminal status and runs the failure
// cleanup: expected cancellations and true errors both remove the uploaded
// object, only true errors alert and email.
func (s *Service) finalize(ctx context.Context, action *domain.UploadAction, path objstore.SongPath, out Outcome, log *logger.Logger) {
	var status domain.ActionStatus
	var message *string
	switch out.Kind {
	case KindSuccess:
		status = domain.ActionStatusSuccess
	case KindCancelled:
		status = domain.ActionStatusCancelled
		message = &out.Message
	default:
		status = domain.ActionStatusError
		message = &out.Message
	}

	if err := store.FinalizeUploadAction(s.db, action.ID, status, message); err != nil {
		s.alerts.Report(err, map[string]any{"action_id": action.ID})
	}

	if out.Kind == KindSuccess {
		return
	}

	// The user must not be left with an unprocessed, undeletable file.
	s.removeObject(ctx, path.Key(), log)

	if out.Kind == KindCancelled {
		log.Info("upload cancelled", "reason", out.Message)
		return
	}

	log.Error("upload failed", "code", out.Code, "message", out.Message)
	s.alerts.Report(errors.New(out.Message), map[string]any{
		"user_id":    path.UserID,
		"file_name":  path.FileName,
		"object_key": path.Key(),
	})
	s.emailUploadError(ctx, path.UserID, path.FileName, log)
}

// removeObject deletes an object from storage. A missing key means the
// object is already gone, which is expected and logged, not alerted.
func (s *Service) removeObject(ctx context.Context, key string, log *logger.Logger) {
	err := s.objects.Delete(ctx, key)
	switch {
	case errors.Is(err, objstore.ErrNotFound):
		log.Info("object already removed", "object_key", key)
	case err != nil:
		s.alerts.Report(err, map[string]any{"object_key": key})
	}
}

func (s *Service) emailUploadError(ctx context.Context, userID, fileName string, log *logger.Logger) {
	if s.directory == nil || s.mailer == nil {
		return
	}
	email, err := s.directory.Email(ctx, userID)
	if err != nil {
		log.Warn("no email for user", "error", err)
		return
	}
	subject, body := mailer.UploadErrorBody(fileName)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		log.Warn("failed to send upload error email", "error", err)
	}
}

func buildSong(path objstore.SongPath, md *tags.Metadata, hash string, artwork *domain.Artwork) *domain.Song {
	now := time.Now()
	song := &domain.Song{
		ID:          path.SongID,
		UserID:      path.UserID,
		FileName:    path.FileName,
		Title:       domain.TitleFallback(md.Title, path.FileName),
		Duration:    md.Duration.Milliseconds(),
		Artist:      optional(md.Artist),
		AlbumName:   optional(md.Album),
		AlbumArtist: optional(md.AlbumArtist),
		Year:        md.Year,
		Genre:       optional(md.Genre),
		TrackNo:     md.Track.No,
		TrackOf:     md.Track.Of,
		DiskNo:      md.Disk.No,
		DiskOf:      md.Disk.Of,
		Hash:        hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	song.AlbumID = domain.DeriveAlbumID(domain.SongAlbumKey(song))
	if artwork != nil {
		h, t := artwork.Hash, string(artwork.Type)
		song.ArtworkHash, song.ArtworkType = &h, &t
	}
	return song
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mimeFor(typ domain.ArtworkType) string {
	if typ == domain.ArtworkPNG {
		return constants.MimeTypePNG
	}
	return constants.MimeTypeJPEG
}
