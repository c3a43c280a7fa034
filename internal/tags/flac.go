package tags

import (
	"fmt"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/obelow/aria/internal/domain"
)

func extractFLAC(filePath string) (*Metadata, error) {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file %s: %w", filePath, err)
	}

	md := &Metadata{}

	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			comment, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			md.Title = vorbisField(comment, flacvorbis.FIELD_TITLE)
			md.Artist = vorbisField(comment, flacvorbis.FIELD_ARTIST)
			md.Album = vorbisField(comment, flacvorbis.FIELD_ALBUM)
			md.AlbumArtist = vorbisField(comment, "ALBUMARTIST")
			md.Genre = vorbisField(comment, flacvorbis.FIELD_GENRE)
			md.Year = parseYear(vorbisField(comment, flacvorbis.FIELD_DATE))
			md.Track = vorbisPosition(comment, flacvorbis.FIELD_TRACKNUMBER, "TRACKTOTAL")
			md.Disk = vorbisPosition(comment, "DISCNUMBER", "DISCTOTAL")
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			md.Pictures = append(md.Pictures, Picture{MIME: pic.MIME, Data: pic.ImageData})
		}
	}

	info, err := f.GetStreamInfo()
	if err != nil || info.SampleRate <= 0 || info.SampleCount <= 0 {
		return nil, ErrDurationUnknown
	}
	md.Duration = time.Duration(float64(info.SampleCount) / float64(info.SampleRate) * float64(time.Second))

	return md, nil
}

func vorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := comment.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// vorbisPosition assembles a position from the separate number/total comment
// fields. FLAC also shows up with "3/12" stuffed into the number field, which
// parsePosition tolerates.
func vorbisPosition(comment *flacvorbis.MetaDataBlockVorbisComment, noField, ofField string) domain.Position {
	pos := parsePosition(vorbisField(comment, noField))
	if pos.Of == nil {
		if of := parsePosition(vorbisField(comment, ofField)); of.No != nil {
			pos.Of = of.No
		}
	}
	return pos
}
