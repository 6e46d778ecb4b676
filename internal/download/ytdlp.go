package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytdl-server/internal/model"
	"github.com/ytget/ytdl-server/internal/platform"
)

// Probe defaults
const (
	DefaultProbeTimeout = 45 * time.Second
	errorLinePrefix     = "ERROR:"
)

// YtdlpExtractor runs the yt-dlp binary through go-ytdlp
type YtdlpExtractor struct {
	logger       *slog.Logger
	probeTimeout time.Duration
}

// NewYtdlpExtractor creates the yt-dlp engine adapter
func NewYtdlpExtractor(logger *slog.Logger) *YtdlpExtractor {
	if logger == nil {
		logger = platform.DiscardLogger()
	}
	return &YtdlpExtractor{
		logger:       logger,
		probeTimeout: DefaultProbeTimeout,
	}
}

// Extract runs yt-dlp once for url and decodes the single JSON document it prints
func (e *YtdlpExtractor) Extract(ctx context.Context, url string, opts model.ExtractionOptions) (*model.ExtractionResult, error) {
	dl := e.command(opts)

	res, err := dl.Run(ctx, url)
	var stdout, stderr string
	if res != nil {
		stdout, stderr = res.Stdout, res.Stderr
	}

	if err != nil {
		if partial, ok := partialCollection(stdout, opts); ok {
			e.logger.Warn("yt-dlp reported errors for some playlist entries", "url", url, "error", engineMessage(stderr, err))
			return partial, nil
		}
		return nil, &EngineError{Message: engineMessage(stderr, err), Err: err}
	}

	result, err := decodeInfo([]byte(stdout))
	if err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}
	return result, nil
}

// Probe runs a metadata-only extraction with the cookie jar attached
func (e *YtdlpExtractor) Probe(ctx context.Context, cookieFile, url string) error {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	_, err := e.Extract(ctx, url, model.ExtractionOptions{
		CookieFile:    cookieFile,
		SocketTimeout: e.probeTimeout,
		Download:      false,
	})
	return err
}

// command translates extraction options into yt-dlp flags
func (e *YtdlpExtractor) command(opts model.ExtractionOptions) *ytdlp.Command {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoProgress()

	if opts.Download {
		dl.NoSimulate().YesPlaylist().IgnoreErrors()
	} else {
		dl.SkipDownload().NoPlaylist()
	}
	if opts.Format != "" {
		dl.Format(opts.Format)
	}
	if opts.OutputTemplate != "" {
		dl.Output(opts.OutputTemplate)
	}
	if opts.Container != "" {
		dl.MergeOutputFormat(opts.Container).RecodeVideo(opts.Container)
	}
	if opts.Retries > 0 {
		dl.Retries(strconv.Itoa(opts.Retries))
	}
	if opts.SocketTimeout > 0 {
		dl.SocketTimeout(opts.SocketTimeout.Seconds())
	}
	if opts.MaxFileSize > 0 {
		dl.MaxFileSize(strconv.FormatInt(opts.MaxFileSize, 10))
	}
	if opts.CookieFile != "" {
		dl.Cookies(opts.CookieFile)
	}
	return dl
}

// partialCollection decodes the output of a failed run. With ignore-errors a
// collection download can exit non-zero after some entries landed; a failed
// single item or metadata run is never accepted.
func partialCollection(stdout string, opts model.ExtractionOptions) (*model.ExtractionResult, bool) {
	if !opts.Download {
		return nil, false
	}
	result, err := decodeInfo([]byte(stdout))
	if err != nil || !result.Collection {
		return nil, false
	}
	return result, true
}

// engineMessage extracts the ERROR lines yt-dlp wrote, falling back to err
func engineMessage(stderr string, err error) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, errorLinePrefix) {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		return trimmed
	}
	if err != nil {
		return err.Error()
	}
	return "unknown yt-dlp failure"
}

// infoJSON is the subset of the yt-dlp info dictionary we rely on.
// Entries is a pointer so that an empty playlist still counts as one.
type infoJSON struct {
	Type               string              `json:"_type"`
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Extractor          string              `json:"extractor"`
	Filename           string              `json:"_filename"`
	LegacyFilename     string              `json:"filename"`
	RequestedDownloads []requestedDownload `json:"requested_downloads"`
	Entries            *[]*infoJSON        `json:"entries"`
}

type requestedDownload struct {
	Filepath string `json:"filepath"`
	Filename string `json:"_filename"`
}

var errNoJSON = errors.New("no JSON document in yt-dlp output")

// decodeInfo parses the last JSON document written to stdout
func decodeInfo(stdout []byte) (*model.ExtractionResult, error) {
	doc := lastJSONLine(stdout)
	if doc == nil {
		return nil, errNoJSON
	}
	var info infoJSON
	if err := json.Unmarshal(doc, &info); err != nil {
		return nil, err
	}
	return info.toResult(), nil
}

func lastJSONLine(stdout []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(stdout), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); bytes.HasPrefix(line, []byte("{")) {
			return line
		}
	}
	return nil
}

// toResult converts the info dictionary, keeping nil entries as failed items
func (i *infoJSON) toResult() *model.ExtractionResult {
	result := &model.ExtractionResult{
		ID:         i.ID,
		Title:      i.Title,
		Extractor:  i.Extractor,
		Filename:   i.outputPath(),
		Collection: i.Type == "playlist" || i.Type == "multi_video" || i.Entries != nil,
	}
	if i.Entries != nil {
		result.Entries = make([]*model.ExtractionResult, 0, len(*i.Entries))
		for _, entry := range *i.Entries {
			if entry == nil {
				result.Entries = append(result.Entries, nil)
				continue
			}
			result.Entries = append(result.Entries, entry.toResult())
		}
	}
	return result
}

// outputPath prefers the post-processed file path over the template name
func (i *infoJSON) outputPath() string {
	for _, rd := range i.RequestedDownloads {
		if rd.Filepath != "" {
			return rd.Filepath
		}
		if rd.Filename != "" {
			return rd.Filename
		}
	}
	if i.Filename != "" {
		return i.Filename
	}
	return i.LegacyFilename
}
