package model

import (
	"time"
)

// PlaylistVideo represents a single video listed in a playlist preview
type PlaylistVideo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
}

// PlaylistPreview lists playlist items without downloading them
type PlaylistPreview struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Videos      []*PlaylistVideo `json:"videos"`
	TotalVideos int              `json:"total_videos"`
	FetchedAt   time.Time        `json:"fetched_at"`
}

// NewPlaylistPreview creates a new, empty preview for url
func NewPlaylistPreview(id, url string) *PlaylistPreview {
	return &PlaylistPreview{
		ID:        id,
		URL:       url,
		Videos:    make([]*PlaylistVideo, 0),
		FetchedAt: time.Now(),
	}
}

// AddVideo appends a video, skipping entries without an ID or duplicates
func (p *PlaylistPreview) AddVideo(video *PlaylistVideo) {
	if video == nil || video.ID == "" {
		return
	}
	for _, existing := range p.Videos {
		if existing.ID == video.ID {
			return
		}
	}
	p.Videos = append(p.Videos, video)
	p.TotalVideos = len(p.Videos)
}

// IsEmpty returns true if the preview has no videos
func (p *PlaylistPreview) IsEmpty() bool {
	return p.TotalVideos == 0
}
