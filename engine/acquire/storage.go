package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Uploader stores a local file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path, name string) (string, error)
}

// SupabaseStorage uploads to a Supabase Storage bucket over its REST API.
type SupabaseStorage struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
	now     func() time.Time
}

// NewSupabaseStorage creates an uploader. Empty credentials make every
// upload fail with ErrStorageNotConfigured.
func NewSupabaseStorage(baseURL, key, bucket string) *SupabaseStorage {
	if bucket == "" {
		bucket = "videos"
	}
	return &SupabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		client: &http.Client{
			Timeout:   120 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// Configured reports whether credentials are present.
func (s *SupabaseStorage) Configured() bool {
	return s != nil && s.baseURL != "" && s.key != ""
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectPath returns "yyyy/mm/dd/<8 hex>_<safe name>".
func (s *SupabaseStorage) ObjectPath(name string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s_%s", s.now().UTC().Format("2006/01/02"), id, unsafeNameRe.ReplaceAllString(name, "_"))
}

func (s *SupabaseStorage) Upload(ctx context.Context, path, name string) (string, error) {
	if !s.Configured() {
		return "", ErrStorageNotConfigured
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	object := s.ObjectPath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, object), f)
	if err != nil {
		return "", err
	}
	req.ContentLength = info.Size()
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("supabase upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, object), nil
}
