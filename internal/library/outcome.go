package library

import "fmt"

// Kind classifies a pipeline outcome. These are logical results, not HTTP
// statuses; the HTTP layer maps them.
type Kind string

const (
	// KindSuccess means the operation completed and its writes are durable.
	KindSuccess Kind = "success"
	// KindInfo means there was nothing to do, such as an object upload
	// outside the songs layout.
	KindInfo Kind = "info"
	// KindCancelled is an expected terminal outcome: duplicate upload,
	// quota reached, unreadable duration. Never alerted.
	KindCancelled Kind = "cancelled"
	// KindError is an unexpected fault. Always alerted.
	KindError Kind = "error"
	// KindUnauthorized means identity verification failed.
	KindUnauthorized Kind = "unauthorized"
)

// Outcome codes surfaced to callers.
const (
	CodeDuplicate       = "duplicate-song"
	CodeQuotaExceeded   = "quota-exceeded"
	CodeDurationUnknown = "duration-unknown"
	CodeSongMissing     = "song-does-not-exist"
	CodeMissingTitle    = "missing-title"
	CodeUnauthorized    = "unauthorized"
	CodeProcessing      = "processing-error"
)

// Outcome is the result of one pipeline invocation.
type Outcome struct {
	Kind    Kind   `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	SongID  string `json:"song_id,omitempty"`
}

func Success() Outcome {
	return Outcome{Kind: KindSuccess}
}

func SuccessWithID(songID string) Outcome {
	return Outcome{Kind: KindSuccess, SongID: songID}
}

func Info(message string) Outcome {
	return Outcome{Kind: KindInfo, Message: message}
}

func Cancelled(code, message string) Outcome {
	return Outcome{Kind: KindCancelled, Code: code, Message: message}
}

func Errorf(code, format string, args ...any) Outcome {
	return Outcome{Kind: KindError, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized() Outcome {
	return Outcome{Kind: KindUnauthorized, Code: CodeUnauthorized}
}
