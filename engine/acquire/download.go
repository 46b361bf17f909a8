// Package acquire downloads a chosen video with yt-dlp, uploads it to object
// storage and always removes the local copy.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// MaxSizeMB is passed to yt-dlp as --max-filesize.
const MaxSizeMB = 100

// videoExts are the container formats accepted as download output.
var videoExts = []string{".mp4", ".webm", ".mov", ".mkv"}

// Runner executes a command and returns its standard error.
type Runner func(ctx context.Context, name string, args ...string) (stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// File is a downloaded video inside a temporary directory.
type File struct {
	Path   string
	Name   string
	SizeMB float64
}

// Downloader wraps the yt-dlp binary.
type Downloader struct {
	bin     string
	run     Runner
	timeout time.Duration
}

// NewDownloader creates a Downloader. run may be nil.
func NewDownloader(bin string, run Runner) *Downloader {
	if bin == "" {
		bin = "yt-dlp"
	}
	if run == nil {
		run = execRunner
	}
	return &Downloader{bin: bin, run: run, timeout: 180 * time.Second}
}

func (d *Downloader) args(url, dir string) []string {
	return []string{
		"--extractor-args", "youtube:player_client=ios,web",
		"--format", "best[height<=720][ext=mp4]/best[height<=720]/best",
		"--merge-output-format", "mp4",
		"--max-filesize", fmt.Sprintf("%dM", MaxSizeMB),
		"--socket-timeout", "30",
		"--no-playlist",
		"--no-warnings",
		"--no-check-certificates",
		"--geo-bypass",
		"--add-header", "Accept-Language:en-US,en;q=0.9",
		"--output", filepath.Join(dir, "%(title).50s.%(ext)s"),
		url,
	}
}

// Download fetches url into dir. Failures are *DownloadError.
func (d *Downloader) Download(ctx context.Context, url, dir string) (*File, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stderr, err := d.run(ctx, d.bin, d.args(url, dir)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &DownloadError{ErrTimeout, fmt.Sprintf("Download timed out after %s.", d.timeout)}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &DownloadError{ErrDownloadFailed, "Download failed: yt-dlp is not installed on the server."}
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, Classify(msg)
	}
	return findVideo(dir)
}

// findVideo returns the first file in dir with a video extension.
func findVideo(dir string) (*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DownloadError{ErrNoOutput, "Download failed: " + err.Error()}
	}
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(videoExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		return &File{
			Path:   filepath.Join(dir, e.Name()),
			Name:   e.Name(),
			SizeMB: math.Round(float64(info.Size())/(1024*1024)*100) / 100,
		}, nil
	}
	return nil, &DownloadError{ErrNoOutput, "Download failed: yt-dlp produced no video file. Check server logs."}
}
