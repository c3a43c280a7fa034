package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ActionStatus represents the lifecycle of one upload attempt.
type ActionStatus string

const (
	ActionStatusPending   ActionStatus = "pending"
	ActionStatusSuccess   ActionStatus = "success"
	ActionStatusError     ActionStatus = "error"
	ActionStatusCancelled ActionStatus = "cancelled"
)

// ArtworkType is the normalized image bucket for embedded artwork.
// "image/jpg" from the wild collapses into jpg as well.
type ArtworkType string

const (
	ArtworkJPG ArtworkType = "jpg"
	ArtworkPNG ArtworkType = "png"
)

// Artwork identifies a stored artwork object. The hash is initially derived
// from a song but ownership belongs to the album after the initial artwork is
// inferred, so deleting the song artwork does not delete the album artwork.
type Artwork struct {
	Hash string      `json:"hash" db:"artwork_hash"`
	Type ArtworkType `json:"type" db:"artwork_type"`
}

// Position holds a track or disc position. Either field may be missing
// independently: a file can declare of-30 without a number and vice versa.
type Position struct {
	No *int `json:"no"`
	Of *int `json:"of"`
}

// Song is one uploaded audio file. Songs are partitioned per user and only
// ever soft deleted so downstream cleanup can react to the tombstone edge.
type Song struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"-" db:"user_id"`
	FileName    string     `json:"file_name" db:"file_name"`
	Title       string     `json:"title" db:"title"`
	Duration    int64      `json:"duration" db:"duration"` // milliseconds
	Artist      *string    `json:"artist,omitempty" db:"artist"`
	AlbumName   *string    `json:"album_name,omitempty" db:"album_name"`
	AlbumArtist *string    `json:"album_artist,omitempty" db:"album_artist"`
	AlbumID     string     `json:"album_id" db:"album_id"`
	Year        *int       `json:"year,omitempty" db:"year"`
	Genre       *string    `json:"genre,omitempty" db:"genre"`
	TrackNo     *int       `json:"track_no,omitempty" db:"track_no"`
	TrackOf     *int       `json:"track_of,omitempty" db:"track_of"`
	DiskNo      *int       `json:"disk_no,omitempty" db:"disk_no"`
	DiskOf      *int       `json:"disk_of,omitempty" db:"disk_of"`
	Liked       bool       `json:"liked" db:"liked"`
	WhenLiked   *time.Time `json:"when_liked,omitempty" db:"when_liked"`
	Played      int64      `json:"played" db:"played"`
	LastPlayed  *time.Time `json:"last_played,omitempty" db:"last_played"`
	ArtworkHash *string    `json:"artwork_hash,omitempty" db:"artwork_hash"`
	ArtworkType *string    `json:"artwork_type,omitempty" db:"artwork_type"`
	Hash        string     `json:"hash" db:"hash"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Deleted     bool       `json:"deleted" db:"deleted"`
}

// Track returns the song's track position.
func (s *Song) Track() Position { return Position{No: s.TrackNo, Of: s.TrackOf} }

// Disk returns the song's disc position.
func (s *Song) Disk() Position { return Position{No: s.DiskNo, Of: s.DiskOf} }

// Artwork returns the song's artwork reference, or nil if it has none.
func (s *Song) Artwork() *Artwork {
	if s.ArtworkHash == nil || s.ArtworkType == nil {
		return nil
	}
	return &Artwork{Hash: *s.ArtworkHash, Type: ArtworkType(*s.ArtworkType)}
}

// Album is derived from songs, never created directly by a user. Its id is
// the derived album key. An album exists with deleted = false exactly while
// at least one live song resolves to its key.
type Album struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"-" db:"user_id"`
	Album       *string   `json:"album,omitempty" db:"album"`
	AlbumArtist *string   `json:"album_artist,omitempty" db:"album_artist"`
	ArtworkHash *string   `json:"artwork_hash,omitempty" db:"artwork_hash"`
	ArtworkType *string   `json:"artwork_type,omitempty" db:"artwork_type"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Deleted     bool      `json:"deleted" db:"deleted"`
}

// Artist is derived from songs. The artist name is both the id and the
// display value, so there is no separate key derivation.
type Artist struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Deleted   bool      `json:"deleted" db:"deleted"`
}

// UploadAction is the audit record of one ingestion attempt. It is created in
// pending state before any processing starts so a crash mid-pipeline is still
// observable, and finalized exactly once.
type UploadAction struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"-" db:"user_id"`
	FileName  string       `json:"file_name" db:"file_name"`
	SongID    string       `json:"song_id" db:"song_id"`
	Status    ActionStatus `json:"status" db:"status"`
	Message   *string      `json:"message,omitempty" db:"message"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// UserData is the per-user aggregate document. SongCount is authoritative and
// must only be mutated inside the same transaction as the song write it
// corresponds to.
type UserData struct {
	UserID    string `json:"-" db:"user_id"`
	SongCount int64  `json:"song_count" db:"song_count"`
}

// PlaylistEntry references a song from a playlist. The entry id is distinct
// from the song id because a playlist may hold the same song more than once.
type PlaylistEntry struct {
	ID     string `json:"id"`
	SongID string `json:"songId"`
}

// Playlist holds an ordered list of song references. Playlists are not owned
// by the consistency engine but deletion must retract entries that point at a
// tombstoned song.
type Playlist struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"-" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	Songs     PlaylistEntries `json:"songs" db:"songs"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
	Deleted   bool            `json:"deleted" db:"deleted"`
}

// TitleFallback returns the tag title, or the file name stem when the tags
// carry no title.
func TitleFallback(tagTitle, fileName string) string {
	if tagTitle != "" {
		return tagTitle
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
