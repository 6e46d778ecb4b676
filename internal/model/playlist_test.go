package model

import "testing"

func TestNewPlaylistPreview(t *testing.T) {
	preview := NewPlaylistPreview("PL123", "https://www.youtube.com/playlist?list=PL123")

	if preview.ID != "PL123" {
		t.Errorf("Expected ID 'PL123', got '%s'", preview.ID)
	}
	if !preview.IsEmpty() {
		t.Error("New preview should be empty")
	}
	if preview.Videos == nil {
		t.Error("Videos should be initialized")
	}
	if preview.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestPlaylistPreview_AddVideo(t *testing.T) {
	preview := NewPlaylistPreview("PL123", "https://www.youtube.com/playlist?list=PL123")

	preview.AddVideo(&PlaylistVideo{ID: "a", Title: "First"})
	preview.AddVideo(&PlaylistVideo{ID: "b", Title: "Second"})
	preview.AddVideo(&PlaylistVideo{ID: "a", Title: "Duplicate"})
	preview.AddVideo(&PlaylistVideo{ID: "", Title: "No ID"})
	preview.AddVideo(nil)

	if preview.TotalVideos != 2 {
		t.Fatalf("Expected 2 videos, got %d", preview.TotalVideos)
	}
	if preview.Videos[0].Title != "First" || preview.Videos[1].Title != "Second" {
		t.Errorf("Unexpected order: %s, %s", preview.Videos[0].Title, preview.Videos[1].Title)
	}
}
