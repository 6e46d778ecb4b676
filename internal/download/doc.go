// Package download orchestrates single downloads on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp): it builds extraction options,
// invokes the engine and normalises video and playlist outcomes.
package download
