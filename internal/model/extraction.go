package model

import "time"

// DownloadRequest is a validated inbound download request
type DownloadRequest struct {
	URL            string `json:"url"`
	CustomFilename string `json:"custom_filename,omitempty"`
}

// ExtractionOptions configures a single extraction engine run
type ExtractionOptions struct {
	// Format is the yt-dlp format selection chain, first satisfiable wins
	Format string
	// OutputTemplate is an absolute yt-dlp output path template
	OutputTemplate string
	// Container is the final container every file must end up in
	Container     string
	Retries       int
	SocketTimeout time.Duration
	// MaxFileSize is the per-file ceiling in bytes
	MaxFileSize int64
	// CookieFile is attached only when a usable jar exists
	CookieFile string
	// Download is false for metadata-only runs
	Download bool
}

// ExtractionResult is the engine's report for one item or one collection
type ExtractionResult struct {
	ID        string
	Title     string
	Extractor string
	// Filename is the engine-resolved output path for a single item
	Filename string
	// Collection is true for playlists and multi-video pages
	Collection bool
	// Entries holds per-item results for collections; nil entries are failed items
	Entries []*ExtractionResult
}
