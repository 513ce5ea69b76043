package core

import "errors"

// Sentinel errors for download failures.
// Use errors.Is() to pick the handling policy.
var (
	// ErrNetwork indicates the GET could not be issued or completed,
	// including non-2xx responses.
	ErrNetwork = errors.New("core: network error")

	// ErrFilesystem indicates a directory or file operation failed.
	ErrFilesystem = errors.New("core: filesystem error")
)

// ProgressFunc receives bytes transferred so far and the announced total.
// Total is -1 when the server sends no content length.
// Display only, never consumed by download logic.
type ProgressFunc func(transferred, total int64)

// Downloader interface...
type Downloader interface {
	Download(URL string, toFilePath string, progress ProgressFunc) (filesize int64, err error)
}
