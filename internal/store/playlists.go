package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

func InsertPlaylist(q sqlx.Ext, playlist *domain.Playlist) error {
	now := time.Now()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = now
	}
	playlist.UpdatedAt = now

	query := `INSERT INTO playlists (id, user_id, name, songs, created_at, updated_at, deleted)
	VALUES (:id, :user_id, :name, :songs, :created_at, :updated_at, :deleted)`

	if _, err := sqlx.NamedExec(q, query, playlist); err != nil {
		return fmt.Errorf("failed to insert playlist %s: %w", playlist.ID, err)
	}
	return nil
}

func GetPlaylist(q sqlx.Ext, userID, id string) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := sqlx.Get(q, &playlist, `SELECT * FROM playlists WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ListLivePlaylists returns the user's non-deleted playlists. Deletion
// cleanup walks these to retract entries pointing at a tombstoned song.
func ListLivePlaylists(q sqlx.Ext, userID string) ([]domain.Playlist, error) {
	var playlists []domain.Playlist
	err := sqlx.Select(q, &playlists,
		`SELECT * FROM playlists WHERE user_id = ? AND deleted = 0`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

// UpdatePlaylistSongs replaces the playlist's entry list.
func UpdatePlaylistSongs(q sqlx.Ext, userID, id string, songs domain.PlaylistEntries) error {
	_, err := q.Exec(
		`UPDATE playlists SET songs = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		songs, time.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to update playlist %s: %w", id, err)
	}
	return nil
}
