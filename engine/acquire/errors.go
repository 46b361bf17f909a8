package acquire

import (
	"errors"
	"fmt"
	"strings"
)

// Download failure kinds. Match them with errors.Is against a *DownloadError.
var (
	ErrBotDetected    = errors.New("bot detection")
	ErrUnavailable    = errors.New("video unavailable")
	ErrTooLarge       = errors.New("file too large")
	ErrTimeout        = errors.New("download timed out")
	ErrNoOutput       = errors.New("no video file produced")
	ErrDownloadFailed = errors.New("download failed")
)

// ErrStorageNotConfigured is returned by SupabaseStorage without credentials.
var ErrStorageNotConfigured = errors.New("storage credentials not set")

// DownloadError carries a user-facing message for a failed download.
type DownloadError struct {
	Kind error
	Msg  string
}

func (e *DownloadError) Error() string { return e.Msg }
func (e *DownloadError) Unwrap() error { return e.Kind }

// Classify maps yt-dlp's stderr onto a failure kind and message.
func Classify(stderr string) *DownloadError {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(stderr, "Sign in") || strings.Contains(lower, "bot"):
		return &DownloadError{ErrBotDetected, "YouTube blocked the download (bot detection). Try a different video or a direct MP4 URL."}
	case strings.Contains(stderr, "This video is not available") || strings.Contains(lower, "unavailable"):
		return &DownloadError{ErrUnavailable, "Video is unavailable or geo-restricted in the server's region."}
	case strings.Contains(stderr, "File is larger") || strings.Contains(lower, "filesize"):
		return &DownloadError{ErrTooLarge, fmt.Sprintf("Video exceeds %dMB size limit.", MaxSizeMB)}
	default:
		return &DownloadError{ErrDownloadFailed, "Download failed: " + firstRunes(stderr, 300)}
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
