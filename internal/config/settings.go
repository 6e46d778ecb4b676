package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ytget/ytdl-server/internal/platform"
)

// Environment variable keys
const (
	KeyDownloadDir     = "LOCAL_DOWNLOAD_DIR"
	KeyDownloadTimeout = "DOWNLOAD_TIMEOUT"
	KeyRequestTimeout  = "REQUEST_TIMEOUT"
	KeyMaxRetries      = "YT_DLP_MAX_RETRIES"
	KeyMaxFileSize     = "YT_DLP_MAX_FILESIZE"
	KeyCookiesFile     = "YT_DLP_COOKIES_FILE"
	KeyCookiesContent  = "YT_DLP_COOKIES_CONTENT"
	KeyDeployID        = "DEPLOY_ID"
	KeyCookiesProbeURL = "COOKIES_PROBE_URL"
	KeyAutoInstall     = "YT_DLP_AUTO_INSTALL"
	KeyStaticPrefix    = "STATIC_PREFIX"
	KeyHost            = "API_HOST"
	KeyPort            = "API_PORT"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFile         = "LOG_FILE"
)

// Default values
const (
	DefaultDownloadDir     = "./downloads"
	DefaultDownloadTimeout = 300 * time.Second
	DefaultMaxRetries      = 3
	DefaultMaxFileSizeMB   = 500
	DefaultStaticPrefix    = "downloads"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultLogLevel        = "INFO"
	DefaultLogFile         = "video_downloader.log"
	DefaultCookiesProbeURL = "https://www.youtube.com/watch?v=jNQXAC9IVRw"
)

// Settings holds process-wide configuration. It is built once at startup and
// passed explicitly to the services that need it.
type Settings struct {
	DownloadDir     string        `yaml:"download_dir"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	// RequestTimeout bounds a whole download call; zero disables it
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	MaxFileSizeMB  int           `yaml:"max_filesize_mb"`
	StaticPrefix   string        `yaml:"static_prefix"`

	CookiesFile     string `yaml:"cookies_file"`
	CookiesContent  string `yaml:"-"`
	DeployID        string `yaml:"deploy_id"`
	CookiesProbeURL string `yaml:"cookies_probe_url"`
	AutoInstall     bool   `yaml:"auto_install"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns settings with default values
func Default() *Settings {
	return &Settings{
		DownloadDir:     DefaultDownloadDir,
		DownloadTimeout: DefaultDownloadTimeout,
		MaxRetries:      DefaultMaxRetries,
		MaxFileSizeMB:   DefaultMaxFileSizeMB,
		StaticPrefix:    DefaultStaticPrefix,
		CookiesProbeURL: DefaultCookiesProbeURL,
		Host:            DefaultHost,
		Port:            DefaultPort,
		LogLevel:        DefaultLogLevel,
		LogFile:         DefaultLogFile,
	}
}

// Load builds settings from defaults, an optional YAML file and the environment.
// An explicitly named file must exist.
func Load(path string) (*Settings, error) {
	settings := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
		}
	}

	settings.applyEnv(os.LookupEnv)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyEnv overrides fields from the environment. Unparsable numbers keep
// the current value.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	seconds := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = time.Duration(n) * time.Second
			}
		}
	}

	str(KeyDownloadDir, &s.DownloadDir)
	seconds(KeyDownloadTimeout, &s.DownloadTimeout)
	seconds(KeyRequestTimeout, &s.RequestTimeout)
	num(KeyMaxRetries, &s.MaxRetries)
	num(KeyMaxFileSize, &s.MaxFileSizeMB)
	str(KeyStaticPrefix, &s.StaticPrefix)
	str(KeyCookiesFile, &s.CookiesFile)
	str(KeyDeployID, &s.DeployID)
	str(KeyCookiesProbeURL, &s.CookiesProbeURL)
	str(KeyHost, &s.Host)
	num(KeyPort, &s.Port)
	str(KeyLogLevel, &s.LogLevel)
	str(KeyLogFile, &s.LogFile)

	// cookie content is a multi-line secret, keep it verbatim
	if v, ok := lookup(KeyCookiesContent); ok {
		s.CookiesContent = v
	}
	if v, ok := lookup(KeyAutoInstall); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			s.AutoInstall = b
		}
	}
}

// Validate checks that settings are usable
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.DownloadDir) == "" {
		errs = append(errs, errors.New("download directory must not be empty"))
	}
	if s.DownloadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("download timeout must be positive, got %s", s.DownloadTimeout))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", s.RequestTimeout))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must not be negative, got %d", s.MaxRetries))
	}
	if s.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("max file size must be positive, got %d MB", s.MaxFileSizeMB))
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", s.Port))
	}
	if strings.Trim(s.StaticPrefix, "/") == "" {
		errs = append(errs, errors.New("static prefix must not be empty"))
	}
	return errors.Join(errs...)
}

// MaxFileSizeBytes returns the per-file ceiling in bytes
func (s *Settings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

// CleanStaticPrefix returns the static prefix without surrounding slashes
func (s *Settings) CleanStaticPrefix() string {
	return strings.Trim(s.StaticPrefix, "/")
}

// Address returns the host:port the HTTP server listens on
func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EnsureDownloadDirectory creates the download directory if needed
func (s *Settings) EnsureDownloadDirectory() error {
	return platform.CreateDirectoryIfNotExists(s.DownloadDir)
}
