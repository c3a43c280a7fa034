package library

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"

	"github.com/obelow/aria/internal/alert"
	"github.com/obelow/aria/internal/auth"
	"github.com/obelow/aria/internal/images"
	"github.com/obelow/aria/internal/logger"
	"github.com/obelow/aria/internal/objstore"
	"github.com/obelow/aria/internal/store"
)

const testSecret = "test-secret"

type fakeAlerts struct {
	mu   sync.Mutex
	errs []error
}

func (f *fakeAlerts) Report(err error, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *fakeAlerts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	svc     *Service
	db      *store.DB
	objects objstore.Store
	alerts  *fakeAlerts
	mailer  *fakeMailer
	token   string
}

var _ alert.Reporter = (*fakeAlerts)(nil)

func newFixtureMax(t *testing.T, maxSongs int) *fixture {
	t.Helper()

	db, err := store.NewSQLiteDB(store.DSN(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	objects, err := objstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("objstore: %v", err)
	}

	alerts := &fakeAlerts{}
	mail := &fakeMailer{}
	svc := New(Config{
		DB:         db,
		Objects:    objects,
		Verifier:   auth.NewJWTVerifier(testSecret),
		Directory:  auth.StaticDirectory{"user1": "user1@example.com"},
		Resizer:    images.StdResizer{},
		Alerts:     alerts,
		Mailer:     mail,
		Logger:     logger.Default(),
		MaxSongs:   maxSongs,
		ScratchDir: t.TempDir(),
	})

	token, err := auth.GenerateToken("user1", "user1@example.com", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	return &fixture{svc: svc, db: db, objects: objects, alerts: alerts, mailer: mail, token: token}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureMax(t, 500)
}

type songMeta struct {
	title       string
	artist      string
	album       string
	albumArtist string
	artwork     []byte
	marker      string // makes the audio bytes, and so the hash, unique
}

// makeMP3 builds a playable-enough mp3: an ID3v2 tag followed by MPEG1
// Layer3 silence frames.
func makeMP3(t *testing.T, meta songMeta) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	if meta.title != "" {
		tag.SetTitle(meta.title)
	}
	if meta.artist != "" {
		tag.SetArtist(meta.artist)
	}
	if meta.album != "" {
		tag.SetAlbum(meta.album)
	}
	if meta.albumArtist != "" {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), meta.albumArtist)
	}
	if meta.artwork != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/png",
			PictureType: id3v2.PTFrontCover,
			Picture:     meta.artwork,
		})
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("write tag: %v", err)
	}

	frame := make([]byte, 417)
	frame[0], frame[1], frame[2] = 0xFF, 0xFB, 0x90
	for i := 0; i < 5; i++ {
		buf.Write(frame)
	}
	// Trailing non-frame bytes are skipped by the duration scanner but
	// still change the content hash.
	buf.WriteString(meta.marker)
	return buf.Bytes()
}

// makeMP3Frameless builds a file that parses as mp3 but carries no audio
// frames, so its duration cannot be determined.
func makeMP3Frameless(t *testing.T) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetTitle("No Audio")
	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("write tag: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// ingest uploads the bytes into the object store and runs the pipeline the
// way the object-created hook would.
func (f *fixture) ingest(t *testing.T, userID, songID, fileName string, data []byte) Outcome {
	t.Helper()

	ctx := context.Background()
	key := objstore.SongKey(userID, songID, fileName)
	if err := f.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), objstore.PutOptions{ContentType: "audio/mpeg"}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	return f.svc.HandleObjectCreated(ctx, key)
}

func (f *fixture) songCount(t *testing.T) int64 {
	t.Helper()
	data, err := store.GetUserData(f.db, "user1")
	if err != nil {
		t.Fatalf("user data: %v", err)
	}
	return data.SongCount
}

func (f *fixture) albumDeleted(t *testing.T, albumID string) bool {
	t.Helper()
	album, err := store.GetAlbum(f.db, "user1", albumID)
	if err != nil {
		t.Fatalf("album %q: %v", albumID, err)
	}
	return album.Deleted
}

func (f *fixture) artistDeleted(t *testing.T, name string) bool {
	t.Helper()
	artist, err := store.GetArtist(f.db, "user1", name)
	if err != nil {
		t.Fatalf("artist %q: %v", name, err)
	}
	return artist.Deleted
}

// actionForSong finds the upload action recorded for a song id.
func (f *fixture) actionForSong(t *testing.T, songID string) string {
	t.Helper()
	actions, err := store.ListUploadActions(f.db, "user1")
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	for _, action := range actions {
		if action.SongID == songID {
			return string(action.Status)
		}
	}
	t.Fatalf("no upload action for song %q", songID)
	return ""
}
