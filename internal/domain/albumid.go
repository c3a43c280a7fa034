package domain

import (
	"strings"

	"github.com/obelow/aria/internal/constants"
)

// AlbumKey is the information required to identify an album.
type AlbumKey struct {
	AlbumName   *string
	AlbumArtist *string
	Artist      *string
}

// DeriveAlbumID computes the deterministic album document key from the song's
// grouping fields. The function is total: when every input is absent the key
// is the divider alone, so all metadata-less songs collapse into one
// "unknown album" bucket.
func DeriveAlbumID(key AlbumKey) string {
	head := ""
	if key.AlbumArtist != nil && *key.AlbumArtist != "" {
		head = *key.AlbumArtist
	} else if key.Artist != nil && *key.Artist != "" {
		head = *key.Artist
	}

	name := ""
	if key.AlbumName != nil {
		name = *key.AlbumName
	}

	return head + constants.AlbumIDDivider + name
}

// SplitAlbumID recovers the album artist and album name halves of a derived
// key. Only meaningful for keys produced by DeriveAlbumID.
func SplitAlbumID(albumID string) (albumArtist, albumName string) {
	parts := strings.SplitN(albumID, constants.AlbumIDDivider, 2)
	if len(parts) != 2 {
		return albumID, ""
	}
	return parts[0], parts[1]
}

// SongAlbumKey builds the album key from a song's current fields.
func SongAlbumKey(s *Song) AlbumKey {
	return AlbumKey{AlbumName: s.AlbumName, AlbumArtist: s.AlbumArtist, Artist: s.Artist}
}
