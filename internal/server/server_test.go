package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytdl-server/internal/config"
	"github.com/ytget/ytdl-server/internal/download"
	"github.com/ytget/ytdl-server/internal/model"
	"github.com/ytget/ytdl-server/internal/platform"
)

type fakeDownloader struct {
	calls       int
	req         model.DownloadRequest
	hasDeadline bool
	result      *model.DownloadResult
	err         error
	probed      bool
}

func (f *fakeDownloader) Download(ctx context.Context, req model.DownloadRequest) (*model.DownloadResult, error) {
	f.calls++
	f.req = req
	_, f.hasDeadline = ctx.Deadline()
	return f.result, f.err
}

func (f *fakeDownloader) CookieStatus(_ context.Context, probeLive bool) model.CookiesStatus {
	f.probed = probeLive
	return model.CookiesStatus{Status: model.CookieStateMissing, Message: "Cookies file not found"}
}

type fakePreviewer struct {
	preview *model.PlaylistPreview
	err     error
}

func (f *fakePreviewer) Preview(_ context.Context, url string) (*model.PlaylistPreview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.preview, nil
}

func newTestServer(t *testing.T, downloader *fakeDownloader, previews *fakePreviewer) (*Server, *config.Settings) {
	t.Helper()
	settings := config.Default()
	settings.DownloadDir = t.TempDir()
	if previews == nil {
		previews = &fakePreviewer{}
	}
	return New(settings, downloader, previews, nil), settings
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHomeAndHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{}, nil)

	rec := do(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || decode(t, rec)["message"] != WelcomeMessage {
		t.Errorf("Unexpected home response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != StatusHealthy {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestDownload_Success(t *testing.T) {
	downloader := &fakeDownloader{result: model.NewVideoResult(&model.VideoResult{
		Platform:    "youtube",
		Title:       "Never Gonna",
		Filename:    "video_1.mp4",
		DownloadURL: "/downloads/video_1.mp4",
	})}
	s, _ := newTestServer(t, downloader, nil)

	rec := do(t, s, http.MethodPost, "/download", `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","custom_filename":"my_video"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["status"] != StatusSuccess || body["message"] != SuccessMessage {
		t.Errorf("Unexpected envelope %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected data object, got %v", body["data"])
	}
	if data["type"] != "video" || data["filename"] != "video_1.mp4" || data["video_title"] != "Never Gonna" {
		t.Errorf("Unexpected data %v", data)
	}
	if downloader.req.CustomFilename != "my_video" {
		t.Errorf("Custom filename not passed, got %q", downloader.req.CustomFilename)
	}
	if downloader.hasDeadline {
		t.Error("No deadline expected when request timeout is disabled")
	}
}

func TestDownload_RequestTimeout(t *testing.T) {
	downloader := &fakeDownloader{result: model.NewPlaylistResult(&model.PlaylistResult{})}
	s, settings := newTestServer(t, downloader, nil)
	settings.RequestTimeout = time.Minute

	rec := do(t, s, http.MethodPost, "/download", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !downloader.hasDeadline {
		t.Error("Expected a deadline on the download context")
	}
}

func TestDownload_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unsupported platform", `{"url":"https://blog.example.com/posts/my-trip"}`},
		{"missing url", `{}`},
		{"relative url", `{"url":"/watch?v=dQw4w9WgXcQ"}`},
		{"ftp url", `{"url":"ftp://youtube.com/watch?v=dQw4w9WgXcQ"}`},
		{"malformed json", `{"url":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			downloader := &fakeDownloader{}
			s, _ := newTestServer(t, downloader, nil)

			rec := do(t, s, http.MethodPost, "/download", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if decode(t, rec)["detail"] == "" {
				t.Error("Expected a detail message")
			}
			if downloader.calls != 0 {
				t.Errorf("Downloader should not be called, got %d calls", downloader.calls)
			}
		})
	}
}

func TestDownload_Failure(t *testing.T) {
	downloader := &fakeDownloader{
		err: fmt.Errorf("%w: failed to download video: ERROR: Video unavailable", download.ErrDownload),
	}
	s, _ := newTestServer(t, downloader, nil)

	rec := do(t, s, http.MethodPost, "/download", `{"url":"https://x.com/someone/status/1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if detail, _ := decode(t, rec)["detail"].(string); !strings.Contains(detail, "Video unavailable") {
		t.Errorf("Expected engine message in detail, got %q", detail)
	}
}

func TestCookieStatus(t *testing.T) {
	downloader := &fakeDownloader{}
	s, _ := newTestServer(t, downloader, nil)

	rec := do(t, s, http.MethodGet, "/cookies/status?probe=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["status"] != string(model.CookieStateMissing) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
	if !downloader.probed {
		t.Error("Expected probe flag to be passed")
	}

	rec = do(t, s, http.MethodGet, "/cookies/status?probe=maybe", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad probe flag, got %d", rec.Code)
	}
}

func TestPlaylistInfo(t *testing.T) {
	preview := model.NewPlaylistPreview("PL1", "https://www.youtube.com/playlist?list=PL1")
	preview.AddVideo(&model.PlaylistVideo{ID: "a", Title: "A", Duration: "Unknown", URL: "https://www.youtube.com/watch?v=a"})

	s, _ := newTestServer(t, &fakeDownloader{}, &fakePreviewer{preview: preview})
	rec := do(t, s, http.MethodGet, "/info?url=https%3A%2F%2Fwww.youtube.com%2Fplaylist%3Flist%3DPL1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decode(t, rec); body["total_videos"] != float64(1) || body["id"] != "PL1" {
		t.Errorf("Unexpected body %v", body)
	}

	s, _ = newTestServer(t, &fakeDownloader{}, &fakePreviewer{err: fmt.Errorf("%w: x", platform.ErrNotPlaylist)})
	rec = do(t, s, http.MethodGet, "/info?url=https%3A%2F%2Fyoutu.be%2Fabc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-playlist URL, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/info?url=https%3A%2F%2Fx.com%2Fa%2Fstatus%2F1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-YouTube URL, got %d", rec.Code)
	}

	s, _ = newTestServer(t, &fakeDownloader{}, &fakePreviewer{err: errors.New("boom")})
	rec = do(t, s, http.MethodGet, "/info?url=https%3A%2F%2Fwww.youtube.com%2Fplaylist%3Flist%3DPL1", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for a source failure, got %d", rec.Code)
	}
}

func TestServeFile(t *testing.T) {
	s, settings := newTestServer(t, &fakeDownloader{}, nil)
	if err := os.WriteFile(filepath.Join(settings.DownloadDir, "My Clip_1.mp4"), []byte("mp4data"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(settings.DownloadDir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	rec := do(t, s, http.MethodGet, "/downloads/My%20Clip_1.mp4", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "mp4data" {
		t.Errorf("Expected file contents, got %d %q", rec.Code, rec.Body.String())
	}

	for _, target := range []string{
		"/downloads/missing.mp4",
		"/downloads/nested",
		"/downloads/..%2Fsecret.txt",
		"/downloads/%2E%2E",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{}, nil)

	rec := do(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if decode(t, rec)["detail"] == nil {
		t.Error("Expected detail in error body")
	}
}
