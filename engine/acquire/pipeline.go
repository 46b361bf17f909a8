package acquire

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

const uploadFailedMsg = "Upload to Supabase failed. Check credentials; the video was downloaded successfully."

// Pipeline downloads then uploads. Stages log as they change state:
// start, downloading, download_failed or downloaded, uploading, uploaded or
// upload_failed, cleaned_up.
type Pipeline struct {
	dl      *Downloader
	up      Uploader
	log     *slog.Logger
	reg     *metrics.Registry
	tempDir func() (string, error)
}

// NewPipeline creates a Pipeline. up may be nil, in which case downloads end
// in status downloaded.
func NewPipeline(dl *Downloader, up Uploader, log *slog.Logger, reg *metrics.Registry) *Pipeline {
	return &Pipeline{
		dl:      dl,
		up:      up,
		log:     logging.OrDefault(log),
		reg:     reg,
		tempDir: func() (string, error) { return os.MkdirTemp("", "ajvideo_") },
	}
}

// Acquire downloads url and stores it. It never returns an error; failures
// are reported in the result.
func (p *Pipeline) Acquire(ctx context.Context, url string) domain.DownloadResult {
	ctx, span := otel.Tracer("engine/acquire").Start(ctx, "video.acquire")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res := p.acquire(ctx, url)
	span.SetAttributes(attribute.String("status", string(res.Status)))
	if res.Status == domain.StatusError {
		span.SetStatus(codes.Error, res.Error)
	}
	if p.reg != nil {
		p.reg.Counter("content_video_acquisitions_total", "Video acquisitions by outcome", "status", string(res.Status)).Inc()
	}
	return res
}

func (p *Pipeline) acquire(ctx context.Context, url string) domain.DownloadResult {
	res := domain.DownloadResult{Status: domain.StatusError, URL: url}
	log := p.log.With("url", url)
	log.Info("acquire", "state", "start")

	dir, err := p.tempDir()
	if err != nil {
		res.Error = "Download failed: " + err.Error()
		log.Error("acquire", "state", "download_failed", "error", err)
		return res
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("acquire", "state", "cleanup_failed", "dir", dir, "error", err)
			return
		}
		log.Info("acquire", "state", "cleaned_up")
	}()

	log.Info("acquire", "state", "downloading", "dir", dir)
	f, err := p.dl.Download(ctx, url, dir)
	if err != nil {
		var de *DownloadError
		if errors.As(err, &de) {
			res.Error = de.Msg
		} else {
			res.Error = "Download failed: " + err.Error()
		}
		log.Error("acquire", "state", "download_failed", "error", err)
		return res
	}
	res.LocalFile = f.Name
	res.SizeMB = f.SizeMB
	log.Info("acquire", "state", "downloaded", "file", f.Name, "size_mb", f.SizeMB)

	if p.up == nil {
		res.Status = domain.StatusDownloaded
		res.Error = uploadFailedMsg
		log.Warn("acquire", "state", "upload_failed", "error", ErrStorageNotConfigured)
		return res
	}
	log.Info("acquire", "state", "uploading")
	public, err := p.up.Upload(ctx, f.Path, f.Name)
	if err != nil {
		res.Status = domain.StatusDownloaded
		res.Error = uploadFailedMsg
		log.Error("acquire", "state", "upload_failed", "error", err)
		return res
	}
	res.Status = domain.StatusSuccess
	res.SupabaseURL = public
	log.Info("acquire", "state", "uploaded", "public_url", public)
	return res
}
