package tags

import (
	"fmt"
	"os"
	"time"

	"github.com/bogem/id3v2/v2"
)

func extractMP3(filePath string) (*Metadata, error) {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID3 tags from %s: %w", filePath, err)
	}
	defer tag.Close()

	md := &Metadata{
		Title:       tag.Title(),
		Artist:      tag.Artist(),
		Album:       tag.Album(),
		AlbumArtist: tag.GetTextFrame(tag.CommonID("Band/Orchestra/Accompaniment")).Text,
		Genre:       tag.Genre(),
		Year:        parseYear(tag.Year()),
		Track:       parsePosition(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text),
		Disk:        parsePosition(tag.GetTextFrame(tag.CommonID("Part of a set")).Text),
	}

	for _, framer := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := framer.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		md.Pictures = append(md.Pictures, Picture{MIME: pic.MimeType, Data: pic.Picture})
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	md.Duration = mp3Duration(data)
	if md.Duration <= 0 {
		return nil, ErrDurationUnknown
	}

	return md, nil
}

// MPEG frame tables, indexed per header bits. A zero entry means the
// combination is invalid (reserved bits or a free-format stream).
var (
	mp3BitRates = map[string][15]int{
		"V1L1": {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
		"V1L2": {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
		"V1L3": {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
		"V2L1": {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
		"V2L2": {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
		"V2L3": {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	}

	mp3SampleRates = map[byte][3]int{
		3: {44100, 48000, 32000}, // MPEG v1
		2: {22050, 24000, 16000}, // MPEG v2
		0: {11025, 12000, 8000},  // MPEG v2.5
	}

	// samples per frame, keyed by [mpeg major version][layer]
	mp3Samples = map[int]map[int]int{
		1: {1: 384, 2: 1152, 3: 1152},
		2: {1: 384, 2: 1152, 3: 576},
	}
)

type mp3FrameHeader struct {
	sampleRate int
	samples    int
	frameSize  int
}

// mp3Duration computes the play time of an MPEG audio stream by walking its
// frames, ID3v2/v1 tags included. Returns 0 if no valid frame is found.
func mp3Duration(data []byte) time.Duration {
	offset := skipID3(data)
	var seconds float64

	for offset+10 <= len(data) {
		if data[offset] == 0xFF && data[offset+1]&0xE0 == 0xE0 {
			// Frame synchronization bits (1111 1111 111).
			header, ok := parseMP3FrameHeader(data[offset], data[offset+1], data[offset+2])
			if ok && header.frameSize > 0 && header.samples > 0 {
				offset += header.frameSize
				seconds += float64(header.samples) / float64(header.sampleRate)
				continue
			}
			offset++ // corrupt frame, resync
		} else if data[offset] == 'T' && data[offset+1] == 'A' && data[offset+2] == 'G' {
			offset += 128 // skip id3v1 tag
		} else {
			offset++ // garbage byte, resync
		}
	}

	return time.Duration(seconds*1000+0.5) * time.Millisecond
}

func parseMP3FrameHeader(_, b1, b2 byte) (mp3FrameHeader, bool) {
	versionBits := (b1 & 0x18) >> 3
	if versionBits == 1 {
		return mp3FrameHeader{}, false // reserved
	}
	// MPEG v1 maps to 1, v2 and v2.5 share tables under 2.
	simpleVersion := 2
	if versionBits == 3 {
		simpleVersion = 1
	}

	layerBits := (b1 & 0x06) >> 1
	if layerBits == 0 {
		return mp3FrameHeader{}, false // reserved
	}
	layer := 4 - int(layerBits) // bits 3,2,1 are layers 1,2,3

	key := fmt.Sprintf("V%dL%d", simpleVersion, layer)
	bitRateIndex := (b2 & 0xF0) >> 4
	if bitRateIndex >= 15 {
		return mp3FrameHeader{}, false
	}
	bitRate := mp3BitRates[key][bitRateIndex]

	rates, ok := mp3SampleRates[versionBits]
	if !ok {
		return mp3FrameHeader{}, false
	}
	sampleRateIndex := (b2 & 0x0C) >> 2
	if sampleRateIndex >= 3 {
		return mp3FrameHeader{}, false
	}
	sampleRate := rates[sampleRateIndex]

	if bitRate == 0 || sampleRate == 0 {
		return mp3FrameHeader{}, false
	}

	samples := mp3Samples[simpleVersion][layer]
	padding := int((b2 & 0x02) >> 1)

	var frameSize int
	if layer == 1 {
		frameSize = samples*bitRate*125/sampleRate + padding*4
	} else {
		frameSize = samples*bitRate*125/sampleRate + padding
	}

	return mp3FrameHeader{
		sampleRate: sampleRate,
		samples:    samples,
		frameSize:  frameSize,
	}, true
}

// skipID3 returns the offset of the first byte after a leading ID3v2 tag,
// or 0 when the stream does not start with one.
func skipID3(data []byte) int {
	if len(data) < 10 || data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return 0
	}

	footerSize := 0
	if data[5]&0x10 != 0 {
		footerSize = 10
	}

	// The tag size is synchsafe: 7 bits in each of 4 bytes.
	z0, z1, z2, z3 := data[6], data[7], data[8], data[9]
	if z0&0x80 != 0 || z1&0x80 != 0 || z2&0x80 != 0 || z3&0x80 != 0 {
		return 0
	}

	tagSize := int(z0&0x7F)<<21 | int(z1&0x7F)<<14 | int(z2&0x7F)<<7 | int(z3&0x7F)
	return 10 + tagSize + footerSize
}
