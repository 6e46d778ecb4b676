package download

import (
	"context"

	"github.com/ytget/ytdl-server/internal/model"
)

// Extractor is the media extraction engine capability. Given a URL and
// options it fetches and transcodes media and reports what it produced.
type Extractor interface {
	Extract(ctx context.Context, url string, opts model.ExtractionOptions) (*model.ExtractionResult, error)
}

// CookieAnalyzer assesses the configured cookie jar
type CookieAnalyzer interface {
	Analyze(ctx context.Context, path string, probeLive bool) model.CookiesStatus
}

// Downloader defines the interface for the download service.
type Downloader interface {
	Download(ctx context.Context, req model.DownloadRequest) (*model.DownloadResult, error)

	// CookieStatus reports the state of the configured cookie jar
	CookieStatus(ctx context.Context, probeLive bool) model.CookiesStatus
}
