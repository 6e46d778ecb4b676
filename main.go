package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytdl-server/internal/config"
	"github.com/ytget/ytdl-server/internal/cookies"
	"github.com/ytget/ytdl-server/internal/download"
	"github.com/ytget/ytdl-server/internal/model"
	"github.com/ytget/ytdl-server/internal/platform"
	"github.com/ytget/ytdl-server/internal/server"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppName         = "ytdl-server"
	ShutdownTimeout = 15 * time.Second
)

var (
	configFile   string
	logLevel     string
	customName   string
	probeCookies bool
)

// app holds the services shared by every command
type app struct {
	settings *config.Settings
	logger   *slog.Logger
	closer   io.Closer
	service  *download.Service
}

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "HTTP video downloader for YouTube, Facebook and X built on yt-dlp",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.closer.Close()

		if a.settings.AutoInstall {
			a.logger.Info("Installing yt-dlp")
			if _, err := ytdlp.Install(ctx, nil); err != nil {
				return fmt.Errorf("failed to install yt-dlp: %w", err)
			}
		}
		a.service.LogCookieStatus(ctx)

		previews := platform.NewPlaylistPreviewService(nil)
		srv := server.New(a.settings, a.service, previews, a.logger)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(a.settings.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			a.logger.Info("Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download one URL and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.closer.Close()

		a.service.LogCookieStatus(cmd.Context())
		result, err := a.service.Download(cmd.Context(), model.DownloadRequest{URL: args[0], CustomFilename: customName})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Inspect the configured cookie jar",
}

var cookiesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the cookie jar status as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.closer.Close()

		return printJSON(cmd.OutOrStdout(), a.service.CookieStatus(cmd.Context(), probeCookies))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", AppName, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARNING, ERROR)")
	downloadCmd.Flags().StringVar(&customName, "name", "", "Custom filename fragment")
	cookiesCheckCmd.Flags().BoolVar(&probeCookies, "probe", false, "Confirm cookies with a live metadata request")

	cookiesCmd.AddCommand(cookiesCheckCmd)
	rootCmd.AddCommand(serveCmd, downloadCmd, cookiesCmd, versionCmd)
}

// newApp loads settings, runs the startup steps and wires the services
func newApp() (*app, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	logger, closer, err := platform.NewLogger(os.Stderr, settings.LogLevel, settings.LogFile)
	if err != nil {
		return nil, err
	}

	if err := settings.EnsureDownloadDirectory(); err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	wrote, err := cookies.Materialize(settings.CookiesFile, settings.CookiesContent, settings.DeployID)
	if err != nil {
		logger.Error("Failed to write inline cookies", "path", settings.CookiesFile, "error", err)
	} else if wrote {
		logger.Info("Inline cookies written", "path", settings.CookiesFile, "deploy_id", settings.DeployID)
	}

	extractor := download.NewYtdlpExtractor(logger)
	analyzer := cookies.NewAnalyzer(extractor, settings.CookiesProbeURL, logger)

	return &app{
		settings: settings,
		logger:   logger,
		closer:   closer,
		service:  download.NewService(settings, extractor, analyzer, logger),
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
