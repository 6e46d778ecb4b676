package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ytget/ytdl-server/internal/config"
	"github.com/ytget/ytdl-server/internal/download"
	"github.com/ytget/ytdl-server/internal/model"
	"github.com/ytget/ytdl-server/internal/platform"
)

// Response messages
const (
	WelcomeMessage = "Welcome to Video Downloader API"
	SuccessMessage = "Video downloaded successfully"
	StatusSuccess  = "success"
	StatusHealthy  = "healthy"
)

// PlaylistPreviewer lists a playlist without downloading it
type PlaylistPreviewer interface {
	Preview(ctx context.Context, url string) (*model.PlaylistPreview, error)
}

// DownloadResponse wraps a successful download
type DownloadResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Data    *model.DownloadResult `json:"data"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server exposes the downloader over HTTP
type Server struct {
	echo       *echo.Echo
	settings   *config.Settings
	downloader download.Downloader
	previews   PlaylistPreviewer
	validator  *platform.URLValidator
	logger     *slog.Logger
}

// New creates the HTTP server and registers its routes
func New(settings *config.Settings, downloader download.Downloader, previews PlaylistPreviewer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = platform.DiscardLogger()
	}
	s := &Server{
		echo:       echo.New(),
		settings:   settings,
		downloader: downloader,
		previews:   previews,
		validator:  platform.NewURLValidator(),
		logger:     logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Info("request", attrs...)
			return nil
		},
	}))

	e.GET("/", s.home)
	e.GET("/health", s.health)
	e.POST("/download", s.download)
	e.GET("/cookies/status", s.cookieStatus)
	e.GET("/info", s.playlistInfo)
	e.GET("/"+settings.CleanStaticPrefix()+"/:filename", s.serveFile)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) home(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": StatusHealthy})
}

// download validates the request and runs it to completion
func (s *Server) download(c echo.Context) error {
	var req model.DownloadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := validateAbsoluteURL(req.URL); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.validator.Validate(req.URL); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if s.settings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.RequestTimeout)
		defer cancel()
	}

	result, err := s.downloader.Download(ctx, req)
	if err != nil {
		if errors.Is(err, platform.ErrUnsupportedURL) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("Download failed", "url", req.URL, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, DownloadResponse{
		Status:  StatusSuccess,
		Message: SuccessMessage,
		Data:    result,
	})
}

func (s *Server) cookieStatus(c echo.Context) error {
	probe := false
	if raw := c.QueryParam("probe"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "probe must be a boolean")
		}
		probe = v
	}
	return c.JSON(http.StatusOK, s.downloader.CookieStatus(c.Request().Context(), probe))
}

func (s *Server) playlistInfo(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if err := validateAbsoluteURL(rawURL); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if name, ok := s.validator.Platform(rawURL); !ok || name != platform.PlatformYouTube {
		return echo.NewHTTPError(http.StatusBadRequest, "playlist previews support YouTube URLs only")
	}

	preview, err := s.previews.Preview(c.Request().Context(), rawURL)
	if err != nil {
		if errors.Is(err, platform.ErrNotPlaylist) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("Playlist preview failed", "url", rawURL, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, preview)
}

// serveFile sends a downloaded file; anything outside the download directory is not found
func (s *Server) serveFile(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}
	path, err := platform.ResolveServedFile(s.settings.DownloadDir, name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}
	return c.File(path)
}

// handleError renders every error as {"detail": ...}
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Detail: detail})
	}
	if err != nil {
		s.logger.Error("failed to write error response", "error", err)
	}
}

// validateAbsoluteURL accepts absolute http(s) URLs with a host
func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be an absolute http(s) URL")
	}
	return nil
}
