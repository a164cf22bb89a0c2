package files

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/1kawdalg/scr/internal/httpclient"
	"github.com/1kawdalg/scr/internal/id"
	"github.com/1kawdalg/scr/internal/logging"
	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const op = "Download"

// File describes a completed download
type File struct {
	ID         id.DownloadID
	Path       string
	Size       int64
	MIME       string
	StatusCode int
}

// Open opens the downloaded file for reading
func (f *File) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Downloader retrieves remote files to disk
type Downloader struct {
	client     *httpclient.Client
	createDirs bool
	logger     *zap.Logger
	metrics    *monitoring.Metrics
}

// Option configures a Downloader
type Option func(*Downloader)

// WithCreateDirs creates missing parent directories of dest
func WithCreateDirs(create bool) Option {
	return func(d *Downloader) {
		d.createDirs = create
	}
}

// WithLogger sets the logger used for download events
func WithLogger(logger *zap.Logger) Option {
	return func(d *Downloader) {
		d.logger = logging.Component(logger, "files")
	}
}

// WithMetrics records download outcomes and sizes
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(d *Downloader) {
		d.metrics = metrics
	}
}

// NewDownloader creates a downloader using client for transfers
func NewDownloader(client *httpclient.Client, opts ...Option) *Downloader {
	d := &Downloader{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download performs one GET of scheme://hostAndPath and writes the body to
// dest. An empty dest uses the last segment of the URL path.
//
// The body is staged in a hidden part file next to dest and renamed into
// place only after a 2xx response, so a failed download leaves any existing
// file untouched. A successful one replaces it. With Auto and an
// extensionless dest, the file lands at dest plus the detected extension,
// replacing any file already there.
func (d *Downloader) Download(ctx context.Context, hostAndPath, dest string, scheme scraper.Scheme, fileType FileType) (*File, error) {
	rawURL, err := scraper.BuildURL(hostAndPath, scheme)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, hostAndPath, err)
	}
	if d.client == nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, errors.New("no client configured"))
	}

	downloadID := id.NewDownloadID()
	logger := d.logger.With(
		zap.String(logging.KeyDownloadID, downloadID.String()),
		zap.String(logging.KeyURL, rawURL),
	)

	target, err := d.resolveTarget(rawURL, dest, fileType)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, err)
	}

	logger.Debug("downloading", zap.String("path", target))
	start := time.Now()

	part, err := newPartFile(target)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, err)
	}
	// the part file is renamed away on success
	defer func() { _ = os.Remove(part) }()

	resp, err := d.client.Download(ctx, rawURL, part)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		logger.Warn("download failed", zap.Error(err))
		return nil, scraper.TransportError(op, rawURL, err)
	}

	if !resp.IsSuccess() {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		logger.Warn("download rejected", zap.Int("status", resp.StatusCode()))
		return nil, scraper.TransportError(op, rawURL, fmt.Errorf("HTTP %d", resp.StatusCode()))
	}

	mime, err := mimetype.DetectFile(part)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, fmt.Errorf("inspect download: %w", err))
	}

	if fileType == Auto && filepath.Ext(target) == "" {
		target += mime.Extension()
	}
	if err := os.Rename(part, target); err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, fmt.Errorf("move download into place: %w", err))
	}

	stat, err := os.Stat(target)
	if err != nil {
		d.metrics.RecordDownload(monitoring.OutcomeTransport, 0)
		return nil, scraper.TransportError(op, rawURL, fmt.Errorf("failed to stat downloaded file: %w", err))
	}

	d.metrics.RecordDownload(monitoring.OutcomeSuccess, stat.Size())
	logger.Info("downloaded",
		zap.String("path", target),
		zap.Int64("bytes", stat.Size()),
		zap.String("mime", mime.String()),
		zap.Duration("duration", time.Since(start)),
	)

	return &File{
		ID:         downloadID,
		Path:       target,
		Size:       stat.Size(),
		MIME:       mime.String(),
		StatusCode: resp.StatusCode(),
	}, nil
}

// resolveTarget picks the path the body is written to
func (d *Downloader) resolveTarget(rawURL, dest string, fileType FileType) (string, error) {
	if dest == "" {
		dest = nameFromURL(rawURL)
	}
	target := WithExtension(dest, fileType)

	dir := filepath.Dir(target)
	if _, err := os.Stat(dir); err == nil {
		return target, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}

	if d.createDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
		return target, nil
	}
	return filepath.Base(target), nil
}

// newPartFile reserves a hidden file beside target for the body in flight
func newPartFile(target string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), ".scr-*.part")
	if err != nil {
		return "", fmt.Errorf("create part file: %w", err)
	}
	name := f.Name()
	if err := f.Chmod(0644); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("create part file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("create part file: %w", err)
	}
	return name, nil
}

func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
