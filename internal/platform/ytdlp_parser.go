package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytdl-server/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Default values
const (
	DefaultDuration     = "Unknown"
	DefaultPlaylistName = "Unknown Playlist"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// ErrNotPlaylist is returned for URLs without a playlist ID
var ErrNotPlaylist = errors.New("not a playlist URL")

// PlaylistItem is one entry reported by a playlist source
type PlaylistItem struct {
	VideoID string
	Title   string
}

// PlaylistSource fetches every item of a YouTube playlist by ID
type PlaylistSource func(ctx context.Context, playlistID string) ([]PlaylistItem, error)

// YTDLPPlaylistSource lists playlist items with the ytdlp library, no download involved
func YTDLPPlaylistSource(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		out = append(out, PlaylistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// PlaylistPreviewService lists YouTube playlists without downloading them
type PlaylistPreviewService struct {
	timeout time.Duration
	source  PlaylistSource
}

// NewPlaylistPreviewService creates a preview service; a nil source means the ytdlp library
func NewPlaylistPreviewService(source PlaylistSource) *PlaylistPreviewService {
	if source == nil {
		source = YTDLPPlaylistSource
	}
	return &PlaylistPreviewService{
		timeout: DefaultParseTimeout,
		source:  source,
	}
}

// SetTimeout sets the timeout for preview operations
func (y *PlaylistPreviewService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// Preview fetches the playlist behind url and returns its videos
func (y *PlaylistPreviewService) Preview(ctx context.Context, url string) (*model.PlaylistPreview, error) {
	if !y.isValidPlaylistURL(url) {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaylist, url)
	}

	playlistID := y.extractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("%w: could not extract playlist ID from %s", ErrNotPlaylist, url)
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	items, err := y.source(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	preview := model.NewPlaylistPreview(playlistID, url)
	for _, it := range items {
		// the playlist listing carries no durations
		preview.AddVideo(&model.PlaylistVideo{
			ID:       it.VideoID,
			Title:    it.Title,
			Duration: DefaultDuration,
			URL:      fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	preview.Title = y.extractPlaylistTitle(preview.Videos)

	return preview, nil
}

// isValidPlaylistURL checks if the URL carries a playlist parameter
func (y *PlaylistPreviewService) isValidPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam)
}

// extractPlaylistID extracts the playlist ID from various URL formats
func (y *PlaylistPreviewService) extractPlaylistID(url string) string {
	if strings.Contains(url, PlaylistParam) {
		parts := strings.Split(url, PlaylistParam)
		if len(parts) > 1 {
			playlistPart := parts[1]
			if strings.Contains(playlistPart, ParamSeparator) {
				playlistPart = strings.Split(playlistPart, ParamSeparator)[0]
			}
			return playlistPart
		}
	}
	return ""
}

// extractPlaylistTitle generates a title for the playlist based on videos
func (y *PlaylistPreviewService) extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		commonPrefix := y.findCommonPrefix(videos[0].Title, videos[1].Title)
		if utf8.RuneCountInString(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings, rune by rune
func (y *PlaylistPreviewService) findCommonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	minLen := min(len(r1), len(r2))
	for i := 0; i < minLen; i++ {
		if r1[i] != r2[i] {
			return string(r1[:i])
		}
	}
	return string(r1[:minLen])
}
