package model

import (
	"encoding/json"
	"fmt"
)

// ResultType discriminates DownloadResult variants
type ResultType string

const (
	ResultTypeVideo    ResultType = "video"
	ResultTypePlaylist ResultType = "playlist"
)

// VideoResult describes one downloaded file
type VideoResult struct {
	Platform    string `json:"platform"`
	Title       string `json:"video_title"`
	Filename    string `json:"filename"`
	Path        string `json:"-"`
	DownloadURL string `json:"download_url"`
}

// PlaylistResult describes the entries of a collection that landed on disk
type PlaylistResult struct {
	Platform      string   `json:"platform"`
	PlaylistTitle string   `json:"playlist_title"`
	VideoCount    int      `json:"video_count"`
	Filenames     []string `json:"filenames"`
	DownloadURLs  []string `json:"download_urls"`
}

// DownloadResult is either a video or a playlist outcome
type DownloadResult struct {
	Type     ResultType
	Video    *VideoResult
	Playlist *PlaylistResult
}

// NewVideoResult wraps a video variant
func NewVideoResult(v *VideoResult) *DownloadResult {
	return &DownloadResult{Type: ResultTypeVideo, Video: v}
}

// NewPlaylistResult wraps a playlist variant, keeping VideoCount in sync with Filenames
func NewPlaylistResult(p *PlaylistResult) *DownloadResult {
	if p.Filenames == nil {
		p.Filenames = []string{}
	}
	if p.DownloadURLs == nil {
		p.DownloadURLs = []string{}
	}
	p.VideoCount = len(p.Filenames)
	return &DownloadResult{Type: ResultTypePlaylist, Playlist: p}
}

// Filenames returns every filename referenced by the result
func (r *DownloadResult) Filenames() []string {
	switch r.Type {
	case ResultTypeVideo:
		if r.Video != nil {
			return []string{r.Video.Filename}
		}
	case ResultTypePlaylist:
		if r.Playlist != nil {
			return r.Playlist.Filenames
		}
	}
	return nil
}

// MarshalJSON flattens the active variant next to the type discriminator
func (r DownloadResult) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResultTypeVideo:
		if r.Video == nil {
			return nil, fmt.Errorf("video result without payload")
		}
		return json.Marshal(struct {
			Type ResultType `json:"type"`
			*VideoResult
		}{r.Type, r.Video})
	case ResultTypePlaylist:
		if r.Playlist == nil {
			return nil, fmt.Errorf("playlist result without payload")
		}
		return json.Marshal(struct {
			Type ResultType `json:"type"`
			*PlaylistResult
		}{r.Type, r.Playlist})
	default:
		return nil, fmt.Errorf("unknown result type: %q", r.Type)
	}
}
