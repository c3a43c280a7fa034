package library

import (
	"context"
	"errors"

	"github.com/obelow/aria/internal/domain"
	"github.com/obelow/aria/internal/store"
)

// Songs lists the caller's live songs.
func (s *Service) Songs(ctx context.Context, token string) ([]domain.Song, Outcome) {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return nil, Unauthorized()
	}

	songs, err := store.ListLiveSongs(s.db, identity.UserID)
	if err != nil {
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID})
		return nil, Errorf(CodeProcessing, "failed to list songs: %v", err)
	}
	return songs, Success()
}

// UploadHistory lists the caller's upload actions, newest first.
func (s *Service) UploadHistory(ctx context.Context, token string) ([]domain.UploadAction, Outcome) {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return nil, Unauthorized()
	}

	actions, err := store.ListUploadActions(s.db, identity.UserID)
	if err != nil {
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID})
		return nil, Errorf(CodeProcessing, "failed to list upload actions: %v", err)
	}
	return actions, Success()
}

// SetLiked flips the caller's liked flag on a song.
func (s *Service) SetLiked(ctx context.Context, token, songID string, liked bool) Outcome {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return Unauthorized()
	}

	err = store.SetSongLiked(s.db, identity.UserID, songID, liked)
	if store.IsNotFound(err) {
		return Errorf(CodeSongMissing, "the song does not exist")
	}
	if err != nil {
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID, "song_id": songID})
		return Errorf(CodeProcessing, "failed to update song: %v", err)
	}
	return Success()
}

// RecordPlay bumps a song's play counter.
func (s *Service) RecordPlay(ctx context.Context, token, songID string) Outcome {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return Unauthorized()
	}

	err = store.RecordSongPlay(s.db, identity.UserID, songID)
	if store.IsNotFound(err) {
		return Errorf(CodeSongMissing, "the song does not exist")
	}
	if err != nil {
		s.alerts.Report(err, map[string]any{"user_id": identity.UserID, "song_id": songID})
		return Errorf(CodeProcessing, "failed to record play: %v", err)
	}
	return Success()
}

// Health checks the dependencies the pipelines need.
func (s *Service) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.New("database unreachable")
	}
	return nil
}
