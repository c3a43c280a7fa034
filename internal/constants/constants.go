// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "aria.db"
	DefaultScratchDir  = "scratch"
	DefaultBucket      = "aria"
	DefaultHTTPTimeout = 5 * time.Minute
	ObjectOpTimeout    = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

// Library limits
const (
	// MaxSongs is the per-user song quota. To change this in production
	// just update the value and redeploy.
	MaxSongs = 500
)

// AlbumIDDivider separates the album artist from the album name inside a
// derived album key. This assumes that no one will ever use "<<<<<<<" in
// an album name or album artist.
const AlbumIDDivider = "<<<<<<<"

// MIME Types
const (
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeFLAC = "audio/flac"
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtJPG  = ".jpg"
	ExtPNG  = ".png"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// ArtworkCacheControl is set on uploaded artwork objects. Artwork paths are
// content addressed so the objects never change in place.
const ArtworkCacheControl = "public, max-age=31536000, immutable"
