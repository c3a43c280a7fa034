// Package library implements the consistency engine over the song, album and
// artist records: ingestion of uploaded audio, metadata edits that migrate
// songs between groupings, and deletion with orphan cleanup. The entity store
// has no foreign keys; every cross-record guarantee lives in the transactions
// here.
package library

import (
	"github.com/obelow/aria/internal/alert"
	"github.com/obelow/aria/internal/auth"
	"github.com/obelow/aria/internal/images"
	"github.com/obelow/aria/internal/logger"
	"github.com/obelow/aria/internal/mailer"
	"github.com/obelow/aria/internal/objstore"
	"github.com/obelow/aria/internal/store"
)

// Config wires a Service. Directory is optional; without it upload failure
// emails are skipped.
type Config struct {
	DB         *store.DB
	Objects    objstore.Store
	Verifier   auth.Verifier
	Directory  auth.Directory
	Resizer    images.Resizer
	Alerts     alert.Reporter
	Mailer     mailer.Mailer
	Logger     *logger.Logger
	MaxSongs   int
	ScratchDir string
}

// Service runs the three pipelines. It is stateless; every invocation stands
// alone and the database transaction is the only serialization point.
type Service struct {
	db         *store.DB
	objects    objstore.Store
	verifier   auth.Verifier
	directory  auth.Directory
	resizer    images.Resizer
	alerts     alert.Reporter
	mailer     mailer.Mailer
	log        *logger.Logger
	maxSongs   int
	scratchDir string
}

func New(cfg Config) *Service {
	return &Service{
		db:         cfg.DB,
		objects:    cfg.Objects,
		verifier:   cfg.Verifier,
		directory:  cfg.Directory,
		resizer:    cfg.Resizer,
		alerts:     cfg.Alerts,
		mailer:     cfg.Mailer,
		log:        cfg.Logger.WithComponent("library"),
		maxSongs:   cfg.MaxSongs,
		scratchDir: cfg.ScratchDir,
	}
}
