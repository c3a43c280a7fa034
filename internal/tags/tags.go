// Package tags extracts embedded metadata from audio containers.
package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/obelow/aria/internal/domain"
)

// ErrDurationUnknown is returned when the container parses fine but the audio
// duration cannot be determined. Callers treat this as an expected outcome,
// not a system fault.
var ErrDurationUnknown = errors.New("audio duration could not be determined")

// Picture is an image embedded in an audio container.
type Picture struct {
	MIME string
	Data []byte
}

// Metadata is everything we read out of an audio file. Every tag field is
// optional; only Duration is mandatory for ingestion.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Year        *int
	Track       domain.Position
	Disk        domain.Position
	Duration    time.Duration
	Pictures    []Picture
}

// Extract parses the embedded tags and duration of the audio file at
// filePath. The container format is chosen by file extension. Returns
// ErrDurationUnknown when tags parse but no duration can be computed.
func Extract(filePath string) (*Metadata, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return extractMP3(filePath)
	case ".flac":
		return extractFLAC(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// NormalizeArtworkType buckets an image MIME value into the stored artwork
// type. "image/jpg" is not a real MIME type but shows up in the wild often
// enough that it is folded into jpg.
func NormalizeArtworkType(mime string) (domain.ArtworkType, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return domain.ArtworkPNG, nil
	case "image/jpeg", "image/jpg":
		return domain.ArtworkJPG, nil
	default:
		return "", fmt.Errorf("invalid MIME type %q: expected \"image/png\" or \"image/jpeg\"", mime)
	}
}

// parsePosition parses "3", "3/12" or "/12" into a position. Both halves are
// independently optional.
func parsePosition(s string) domain.Position {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Position{}
	}

	var pos domain.Position
	no, of, _ := strings.Cut(s, "/")
	if v, err := strconv.Atoi(strings.TrimSpace(no)); err == nil {
		pos.No = &v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(of)); err == nil {
		pos.Of = &v
	}
	return pos
}

// parseYear pulls a four digit year out of a tag value such as "2004" or
// "2004-03-01".
func parseYear(s string) *int {
	s = strings.TrimSpace(s)
	if len(s) > 4 {
		s = s[:4]
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
