package objstore

import (
	"fmt"
	"strings"

	"github.com/obelow/aria/internal/domain"
)

// Object key layout:
//
//	{userId}/songs/{songId}/{fileName}                       song audio
//	{userId}/song_artwork/{hash}/artwork.{type}              original artwork
//	{userId}/song_artwork/{hash}/thumb@{size}_artwork.{type} resized artwork

// SongPath is a parsed song object key.
type SongPath struct {
	UserID   string
	SongID   string
	FileName string
}

// Key rebuilds the object key for the path.
func (p SongPath) Key() string {
	return SongKey(p.UserID, p.SongID, p.FileName)
}

// SongKey builds the object key for a song's audio file.
func SongKey(userID, songID, fileName string) string {
	return fmt.Sprintf("%s/songs/%s/%s", userID, songID, fileName)
}

// ArtworkKey builds the object key for a song's original artwork. Artwork is
// content addressed by hash so identical images share one object.
func ArtworkKey(userID, hash string, typ domain.ArtworkType) string {
	return fmt.Sprintf("%s/song_artwork/%s/artwork.%s", userID, hash, typ)
}

// ThumbnailKey builds the object key for a resized artwork variant.
func ThumbnailKey(userID, hash string, typ domain.ArtworkType, size int) string {
	return fmt.Sprintf("%s/song_artwork/%s/thumb@%d_artwork.%s", userID, hash, size, typ)
}

// ParseSongKey splits an object key into its song path parts. Returns false
// for any key outside the songs layout, such as artwork uploads or profile
// images; those are not ingestion triggers.
func ParseSongKey(key string) (SongPath, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[1] != "songs" {
		return SongPath{}, false
	}
	for _, part := range parts {
		if part == "" {
			return SongPath{}, false
		}
	}
	return SongPath{UserID: parts[0], SongID: parts[2], FileName: parts[3]}, true
}
