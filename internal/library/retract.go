package library

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/store"
)

// grouping abstracts a derived entity (album or artist) for orphan cleanup.
// Both pipelines that can strand a grouping share this one retraction path.
type grouping struct {
	name      string
	count     func(q sqlx.Ext, userID, key string) (int64, error)
	tombstone func(q sqlx.Ext, userID, key string) error
}

var (
	albumGrouping = grouping{
		name:      "album",
		count:     store.CountLiveSongsByAlbum,
		tombstone: store.TombstoneAlbum,
	}
	artistGrouping = grouping{
		name:      "artist",
		count:     store.CountLiveSongsByArtist,
		tombstone: store.TombstoneArtist,
	}
)

// retractIfLastReference tombstones the grouping when the leaving song is its
// only remaining live reference. The count runs before the song's own write
// commits, so "count == 1" means "this song is the last one"; the caller's
// transaction is what brings the count to zero.
func retractIfLastReference(q sqlx.Ext, g grouping, userID, key string) error {
	count, err := g.count(q, userID, key)
	if err != nil {
		return err
	}
	if count != 1 {
		return nil
	}
	if err := g.tombstone(q, userID, key); err != nil {
		return fmt.Errorf("failed to retract %s %q: %w", g.name, key, err)
	}
	return nil
}
