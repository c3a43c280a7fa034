package store

const Schema = `
CREATE TABLE IF NOT EXISTS songs (
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	title TEXT NOT NULL,
	duration INTEGER NOT NULL,  -- milliseconds

	-- Metadata
	artist TEXT,
	album_name TEXT,
	album_artist TEXT,
	album_id TEXT NOT NULL,  -- derived, see domain.DeriveAlbumID
	year INTEGER,
	genre TEXT,
	track_no INTEGER,
	track_of INTEGER,
	disk_no INTEGER,
	disk_of INTEGER,

	-- User state
	liked BOOLEAN NOT NULL DEFAULT 0,
	when_liked DATETIME,
	played INTEGER NOT NULL DEFAULT 0,
	last_played DATETIME,

	-- Artwork (content addressed)
	artwork_hash TEXT,
	artwork_type TEXT,

	hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT 0,

	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_songs_hash ON songs(user_id, hash) WHERE deleted = 0;
CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(user_id, album_id) WHERE deleted = 0;
CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(user_id, artist) WHERE deleted = 0;

-- Albums and artists are derived from songs. They exist with deleted = 0
-- exactly while at least one live song resolves to them.
CREATE TABLE IF NOT EXISTS albums (
	id TEXT NOT NULL,  -- derived album key
	user_id TEXT NOT NULL,
	album TEXT,
	album_artist TEXT,
	artwork_hash TEXT,
	artwork_type TEXT,
	updated_at DATETIME NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT 0,

	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS artists (
	id TEXT NOT NULL,  -- the artist name
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT 0,

	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS playlists (
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	songs TEXT NOT NULL DEFAULT '[]',  -- JSON array of {id, songId}
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT 0,

	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS user_data (
	user_id TEXT PRIMARY KEY,
	song_count INTEGER NOT NULL DEFAULT 0
);

-- Audit trail of ingestion attempts.
CREATE TABLE IF NOT EXISTS upload_actions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	song_id TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_upload_actions_user ON upload_actions(user_id, created_at);
`
