// Package download fetches remote videos, captions, thumbnails and audio with
// yt-dlp through github.com/lrstanley/go-ytdlp.
//
// Files are named after the YouTube video ID when the URL carries one, so a
// repeated check reuses what is already on disk. A per-video file lock keeps
// concurrent runs for the same video from writing the same files at once.
package download
