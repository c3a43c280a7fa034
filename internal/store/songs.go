package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

// Accessors take sqlx.Ext so the same query runs against the database or
// inside a transaction. Everything that participates in a consistency
// decision must run on the transaction handle.

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func InsertSong(q sqlx.Ext, song *domain.Song) error {
	query := `INSERT INTO songs (
		id, user_id, file_name, title, duration,
		artist, album_name, album_artist, album_id, year, genre,
		track_no, track_of, disk_no, disk_of,
		liked, when_liked, played, last_played,
		artwork_hash, artwork_type,
		hash, created_at, updated_at, deleted
	) VALUES (
		:id, :user_id, :file_name, :title, :duration,
		:artist, :album_name, :album_artist, :album_id, :year, :genre,
		:track_no, :track_of, :disk_no, :disk_of,
		:liked, :when_liked, :played, :last_played,
		:artwork_hash, :artwork_type,
		:hash, :created_at, :updated_at, :deleted
	)`

	if _, err := sqlx.NamedExec(q, query, song); err != nil {
		return fmt.Errorf("failed to insert song %s: %w", song.ID, err)
	}
	return nil
}

// GetSong fetches a song by id, tombstoned or not. Callers decide whether a
// tombstone counts.
func GetSong(q sqlx.Ext, userID, id string) (*domain.Song, error) {
	var song domain.Song
	err := sqlx.Get(q, &song, `SELECT * FROM songs WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// FindLiveSongsByHash returns the user's non-deleted songs with the given
// content hash. Tombstoned songs never block a re-upload.
func FindLiveSongsByHash(q sqlx.Ext, userID, hash string) ([]domain.Song, error) {
	var songs []domain.Song
	err := sqlx.Select(q, &songs,
		`SELECT * FROM songs WHERE user_id = ? AND hash = ? AND deleted = 0`, userID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs by hash: %w", err)
	}
	return songs, nil
}

func ListLiveSongs(q sqlx.Ext, userID string) ([]domain.Song, error) {
	var songs []domain.Song
	err := sqlx.Select(q, &songs,
		`SELECT * FROM songs WHERE user_id = ? AND deleted = 0 ORDER BY title, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// CountLiveSongsByAlbum counts the user's non-deleted songs resolving to the
// album key.
func CountLiveSongsByAlbum(q sqlx.Ext, userID, albumID string) (int64, error) {
	var count int64
	err := sqlx.Get(q, &count,
		`SELECT COUNT(*) FROM songs WHERE user_id = ? AND album_id = ? AND deleted = 0`, userID, albumID)
	if err != nil {
		return 0, fmt.Errorf("failed to count songs by album: %w", err)
	}
	return count, nil
}

// CountLiveSongsByArtist counts the user's non-deleted songs naming the
// artist.
func CountLiveSongsByArtist(q sqlx.Ext, userID, artist string) (int64, error) {
	var count int64
	err := sqlx.Get(q, &count,
		`SELECT COUNT(*) FROM songs WHERE user_id = ? AND artist = ? AND deleted = 0`, userID, artist)
	if err != nil {
		return 0, fmt.Errorf("failed to count songs by artist: %w", err)
	}
	return count, nil
}

func UpdateSong(q sqlx.Ext, song *domain.Song) error {
	song.UpdatedAt = time.Now()

	query := `UPDATE songs SET
		file_name = :file_name, title = :title, duration = :duration,
		artist = :artist, album_name = :album_name, album_artist = :album_artist,
		album_id = :album_id, year = :year, genre = :genre,
		track_no = :track_no, track_of = :track_of, disk_no = :disk_no, disk_of = :disk_of,
		liked = :liked, when_liked = :when_liked, played = :played, last_played = :last_played,
		artwork_hash = :artwork_hash, artwork_type = :artwork_type,
		updated_at = :updated_at, deleted = :deleted
	WHERE user_id = :user_id AND id = :id`

	result, err := sqlx.NamedExec(q, query, song)
	if err != nil {
		return fmt.Errorf("failed to update song %s: %w", song.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TombstoneSong marks a song deleted. The row stays so a repeated delete is
// observable and playlist cleanup can reference it.
func TombstoneSong(q sqlx.Ext, userID, id string) error {
	result, err := q.Exec(
		`UPDATE songs SET deleted = 1, updated_at = ? WHERE user_id = ? AND id = ? AND deleted = 0`,
		time.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to tombstone song %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetSongLiked flips the liked flag and records when.
func SetSongLiked(q sqlx.Ext, userID, id string, liked bool) error {
	now := time.Now()
	var whenLiked *time.Time
	if liked {
		whenLiked = &now
	}

	result, err := q.Exec(
		`UPDATE songs SET liked = ?, when_liked = ?, updated_at = ? WHERE user_id = ? AND id = ? AND deleted = 0`,
		liked, whenLiked, now, userID, id)
	if err != nil {
		return fmt.Errorf("failed to update liked for song %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordSongPlay bumps the play counter and stamps last_played.
func RecordSongPlay(q sqlx.Ext, userID, id string) error {
	now := time.Now()
	result, err := q.Exec(
		`UPDATE songs SET played = played + 1, last_played = ?, updated_at = ? WHERE user_id = ? AND id = ? AND deleted = 0`,
		now, now, userID, id)
	if err != nil {
		return fmt.Errorf("failed to record play for song %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
