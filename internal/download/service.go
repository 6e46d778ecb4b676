package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ytget/ytdl-server/internal/config"
	"github.com/ytget/ytdl-server/internal/model"
	"github.com/ytget/ytdl-server/internal/platform"
)

// Extraction defaults
const (
	// FormatChain tries 2160p video+audio, 2160p combined, any video+audio, then anything
	FormatChain = "bestvideo[height<=2160]+bestaudio/best[height<=2160]/bestvideo+bestaudio/best"
	Container   = "mp4"

	// playlistIndexField expands to "_<index>" for playlist entries and to nothing otherwise
	playlistIndexField = "%(playlist_index&_{}|)s"
	extField           = ".%(ext)s"
	syntheticPrefix    = "video_"
	shortTokenLength   = 8
)

// Service runs downloads against the extraction engine
type Service struct {
	settings  *config.Settings
	extractor Extractor
	analyzer  CookieAnalyzer
	validator *platform.URLValidator
	logger    *slog.Logger
}

// NewService creates a new download service
func NewService(settings *config.Settings, extractor Extractor, analyzer CookieAnalyzer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = platform.DiscardLogger()
	}
	return &Service{
		settings:  settings,
		extractor: extractor,
		analyzer:  analyzer,
		validator: platform.NewURLValidator(),
		logger:    logger,
	}
}

// Validate rejects URLs of unsupported platforms
func (s *Service) Validate(rawURL string) error {
	return s.validator.Validate(rawURL)
}

// CookieStatus reports the state of the configured cookie jar
func (s *Service) CookieStatus(ctx context.Context, probeLive bool) model.CookiesStatus {
	return s.analyzer.Analyze(ctx, s.settings.CookiesFile, probeLive)
}

// LogCookieStatus logs the cookie jar state at a level matching its severity
func (s *Service) LogCookieStatus(ctx context.Context) model.CookiesStatus {
	status := s.CookieStatus(ctx, false)
	switch status.Status {
	case model.CookieStateValid:
		s.logger.Info("Cookies valid", "message", status.Message)
	case model.CookieStateExpiringSoon:
		s.logger.Warn("Cookies expiring soon", "message", status.Message, "days", status.DaysUntilExpiry)
	case model.CookieStateExpired:
		s.logger.Error("Cookies EXPIRED, refresh immediately", "message", status.Message)
	case model.CookieStateMissing:
		s.logger.Warn("No cookies file, YouTube may block downloads", "path", s.settings.CookiesFile)
	default:
		s.logger.Warn("Cookies status", "status", status.Status, "message", status.Message)
	}
	s.logger.Info("Local storage", "dir", s.settings.DownloadDir)
	return status
}

// Download fetches req.URL into the download directory and reports the files
// that landed on disk. Unsupported URLs fail before the engine is called.
func (s *Service) Download(ctx context.Context, req model.DownloadRequest) (*model.DownloadResult, error) {
	platformName, ok := s.validator.Platform(req.URL)
	if !ok {
		return nil, s.validator.Validate(req.URL)
	}

	s.logger.Info("Starting download", "url", req.URL, "platform", platformName)

	opts, err := s.buildOptions(ctx, req.CustomFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: error during download: %w", ErrDownload, err)
	}

	result, err := s.extractor.Extract(ctx, req.URL, opts)
	if err != nil {
		var engineErr *EngineError
		if errors.As(err, &engineErr) {
			s.logger.Error("Download error", "url", req.URL, "error", engineErr.Message)
			return nil, fmt.Errorf("%w: failed to download video: %w", ErrDownload, err)
		}
		s.logger.Error("Unexpected error", "url", req.URL, "error", err)
		return nil, fmt.Errorf("%w: error during download: %w", ErrDownload, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: error during download: engine returned no result", ErrDownload)
	}

	if result.Extractor == "" {
		result.Extractor = platformName
	}
	if result.Collection {
		return s.playlistResult(result), nil
	}
	return s.videoResult(result)
}

// buildOptions assembles the engine options for one call
func (s *Service) buildOptions(ctx context.Context, customName string) (model.ExtractionOptions, error) {
	dir, err := filepath.Abs(s.settings.DownloadDir)
	if err != nil {
		return model.ExtractionOptions{}, fmt.Errorf("failed to resolve download directory: %w", err)
	}

	opts := model.ExtractionOptions{
		Format:         FormatChain,
		OutputTemplate: filepath.Join(dir, outputTemplate(customName)),
		Container:      Container,
		Retries:        s.settings.MaxRetries,
		SocketTimeout:  s.settings.DownloadTimeout,
		MaxFileSize:    s.settings.MaxFileSizeBytes(),
		Download:       true,
	}

	// advisory only, a bad jar never blocks the download
	status := s.CookieStatus(ctx, false)
	if status.Usable() {
		opts.CookieFile = s.settings.CookiesFile
	}
	s.logger.Debug("Cookie jar checked", "status", status.Status, "attached", opts.CookieFile != "")

	return opts, nil
}

// outputTemplate returns a collision-free file name template
func outputTemplate(customName string) string {
	if strings.TrimSpace(customName) == "" {
		return syntheticPrefix + newToken() + playlistIndexField + extField
	}
	return platform.SanitizeFileName(customName) + "_" + shortToken() + playlistIndexField + extField
}

// newToken returns a time-ordered unique ID
func newToken() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// shortToken returns a short random suffix
func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shortTokenLength]
}

// videoResult builds the single item outcome; a missing file is a hard failure
func (s *Service) videoResult(result *model.ExtractionResult) (*model.DownloadResult, error) {
	path, ok := s.resolveOutput(result)
	if !ok {
		s.logger.Error("Downloaded file not found", "id", result.ID, "filename", result.Filename)
		return nil, fmt.Errorf("%w: error during download: %w: %s", ErrDownload, ErrOutputMissing, result.Filename)
	}

	name := filepath.Base(path)
	s.logger.Info("Download successful", "filename", name)

	return model.NewVideoResult(&model.VideoResult{
		Platform:    result.Extractor,
		Title:       result.Title,
		Filename:    name,
		Path:        path,
		DownloadURL: s.downloadURL(name),
	}), nil
}

// playlistResult keeps only the entries whose files exist
func (s *Service) playlistResult(result *model.ExtractionResult) *model.DownloadResult {
	playlist := &model.PlaylistResult{
		Platform:      result.Extractor,
		PlaylistTitle: result.Title,
	}

	for _, entry := range result.Entries {
		if entry == nil {
			continue
		}
		path, ok := s.resolveOutput(entry)
		if !ok {
			s.logger.Warn("Playlist entry missing on disk, skipping", "id", entry.ID, "filename", entry.Filename)
			continue
		}
		name := filepath.Base(path)
		playlist.Filenames = append(playlist.Filenames, name)
		playlist.DownloadURLs = append(playlist.DownloadURLs, s.downloadURL(name))
	}

	out := model.NewPlaylistResult(playlist)
	s.logger.Info("Playlist download successful",
		"title", playlist.PlaylistTitle,
		"reported", len(result.Entries),
		"videos", playlist.VideoCount,
	)
	return out
}

// resolveOutput coerces the engine-reported path to the target container and
// checks that the file exists
func (s *Service) resolveOutput(item *model.ExtractionResult) (string, bool) {
	if item.Filename == "" {
		return "", false
	}
	path := platform.CoerceExtension(item.Filename, Container)
	if !platform.FileExists(path) {
		return "", false
	}
	return path, true
}

// downloadURL derives the public link of a downloaded file
func (s *Service) downloadURL(name string) string {
	return "/" + s.settings.CleanStaticPrefix() + "/" + url.PathEscape(name)
}
