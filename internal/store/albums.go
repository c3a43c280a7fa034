package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

// GetAlbum fetches an album by its derived key, tombstoned or not.
func GetAlbum(q sqlx.Ext, userID, id string) (*domain.Album, error) {
	var album domain.Album
	err := sqlx.Get(q, &album, `SELECT * FROM albums WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// EnsureAlbum makes the album row live, creating it if missing and reviving
// it if tombstoned. An existing album's fields are never overwritten by a
// later song; only the tombstone flips back.
func EnsureAlbum(q sqlx.Ext, album *domain.Album) error {
	album.UpdatedAt = time.Now()
	album.Deleted = false

	query := `INSERT INTO albums (id, user_id, album, album_artist, artwork_hash, artwork_type, updated_at, deleted)
	VALUES (:id, :user_id, :album, :album_artist, :artwork_hash, :artwork_type, :updated_at, 0)
	ON CONFLICT (user_id, id) DO UPDATE SET
		updated_at = excluded.updated_at,
		deleted = 0`

	if _, err := sqlx.NamedExec(q, query, album); err != nil {
		return fmt.Errorf("failed to ensure album %s: %w", album.ID, err)
	}
	return nil
}

// SetAlbumArtwork seeds the album artwork when the album has none yet. The
// first song to contribute artwork wins; later songs never overwrite it.
func SetAlbumArtwork(q sqlx.Ext, userID, id string, artwork *domain.Artwork) error {
	_, err := q.Exec(
		`UPDATE albums SET artwork_hash = ?, artwork_type = ?, updated_at = ?
		WHERE user_id = ? AND id = ? AND artwork_hash IS NULL`,
		artwork.Hash, string(artwork.Type), time.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to set album artwork for %s: %w", id, err)
	}
	return nil
}

// TombstoneAlbum marks an album deleted.
func TombstoneAlbum(q sqlx.Ext, userID, id string) error {
	_, err := q.Exec(
		`UPDATE albums SET deleted = 1, updated_at = ? WHERE user_id = ? AND id = ?`,
		time.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to tombstone album %s: %w", id, err)
	}
	return nil
}

// GetArtist fetches an artist by name, tombstoned or not.
func GetArtist(q sqlx.Ext, userID, id string) (*domain.Artist, error) {
	var artist domain.Artist
	err := sqlx.Get(q, &artist, `SELECT * FROM artists WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// EnsureArtist makes the artist row live, creating or reviving it.
func EnsureArtist(q sqlx.Ext, userID, name string) error {
	_, err := q.Exec(
		`INSERT INTO artists (id, user_id, name, updated_at, deleted) VALUES (?, ?, ?, ?, 0)
		ON CONFLICT (user_id, id) DO UPDATE SET updated_at = excluded.updated_at, deleted = 0`,
		name, userID, name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure artist %s: %w", name, err)
	}
	return nil
}

// TombstoneArtist marks an artist deleted.
func TombstoneArtist(q sqlx.Ext, userID, id string) error {
	_, err := q.Exec(
		`UPDATE artists SET deleted = 1, updated_at = ? WHERE user_id = ? AND id = ?`,
		time.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to tombstone artist %s: %w", id, err)
	}
	return nil
}
