package download

import "errors"

var (
	// ErrDownload is the single failure kind returned to callers
	ErrDownload = errors.New("download failed")

	// ErrOutputMissing means the engine reported success but no file landed on disk
	ErrOutputMissing = errors.New("downloaded file not found")
)

// EngineError carries the extraction engine's diagnostic text
type EngineError struct {
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
