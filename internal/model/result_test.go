package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDownloadResult_MarshalVideo(t *testing.T) {
	result := NewVideoResult(&VideoResult{
		Platform:    "youtube",
		Title:       "Never Gonna Give You Up",
		Filename:    "video_abc.mp4",
		Path:        "/srv/downloads/video_abc.mp4",
		DownloadURL: "/downloads/video_abc.mp4",
	})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded["type"] != "video" {
		t.Errorf("Expected type 'video', got %v", decoded["type"])
	}
	if decoded["filename"] != "video_abc.mp4" {
		t.Errorf("Expected filename 'video_abc.mp4', got %v", decoded["filename"])
	}
	if _, exists := decoded["video_count"]; exists {
		t.Error("Video result should not carry playlist fields")
	}
	if strings.Contains(string(data), "/srv/downloads") {
		t.Errorf("Absolute path should not be exposed: %s", data)
	}
}

func TestDownloadResult_MarshalPlaylist(t *testing.T) {
	result := NewPlaylistResult(&PlaylistResult{
		Platform:      "youtube:tab",
		PlaylistTitle: "Mix",
		Filenames:     []string{"a_1.mp4", "a_2.mp4"},
		DownloadURLs:  []string{"/downloads/a_1.mp4", "/downloads/a_2.mp4"},
	})

	if result.Playlist.VideoCount != 2 {
		t.Errorf("Expected VideoCount 2, got %d", result.Playlist.VideoCount)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded["type"] != "playlist" {
		t.Errorf("Expected type 'playlist', got %v", decoded["type"])
	}
	if decoded["video_count"] != float64(2) {
		t.Errorf("Expected video_count 2, got %v", decoded["video_count"])
	}
}

func TestNewPlaylistResult_EmptyListsNotNull(t *testing.T) {
	result := NewPlaylistResult(&PlaylistResult{Platform: "youtube:tab"})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), `"filenames":[]`) {
		t.Errorf("Expected empty filenames array, got %s", data)
	}
	if result.Playlist.VideoCount != 0 {
		t.Errorf("Expected VideoCount 0, got %d", result.Playlist.VideoCount)
	}
}

func TestDownloadResult_MarshalUnknownType(t *testing.T) {
	if _, err := json.Marshal(DownloadResult{Type: "audio"}); err == nil {
		t.Error("Expected error for unknown result type, got nil")
	}
}

func TestDownloadResult_Filenames(t *testing.T) {
	video := NewVideoResult(&VideoResult{Filename: "one.mp4"})
	if got := video.Filenames(); len(got) != 1 || got[0] != "one.mp4" {
		t.Errorf("Video Filenames() = %v", got)
	}

	playlist := NewPlaylistResult(&PlaylistResult{Filenames: []string{"a.mp4", "b.mp4"}})
	if got := playlist.Filenames(); len(got) != 2 {
		t.Errorf("Playlist Filenames() = %v", got)
	}
}
