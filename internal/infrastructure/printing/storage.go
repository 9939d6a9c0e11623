package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportArchive keeps copies of exported PDFs after the download has been
// handed to the browser. Paths are the slash-separated names ObjectName
// produces.
type ExportArchive interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is idempotent
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes archived PDFs last modified before now-age
	// and reports how many went.
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	GetURL(path string) string
}

// StoreRequest is one finished export.
type StoreRequest struct {
	OwnerID string
	JobID   uuid.UUID
	// FileName is the download name, e.g. Invoice-INV-2024-0001.pdf
	FileName string
	PDFData  []byte
}

type StoreResult struct {
	Path string
	URL  string
	Size int64
}

// ObjectName returns {owner}/{year}/{month}/{job_id}-{file_name} for a store
// request. Path segments are reduced to [A-Za-z0-9._-].
func ObjectName(req *StoreRequest, now time.Time) string {
	name := req.FileName
	if name == "" {
		name = "export.pdf"
	}
	return path.Join(
		sanitizeSegment(req.OwnerID),
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		req.JobID.String()+"-"+sanitizeSegment(name),
	)
}

// ValidateStoreRequest checks a store request before it reaches a backend
func ValidateStoreRequest(req *StoreRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return NewRenderError(ErrCodeStorageFailed, "owner ID is required", nil)
	}
	if req.JobID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "job ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

func sanitizeSegment(s string) string {
	s = unsafeSegmentChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

var unsafeSegmentChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileSystemStorageConfig configures the local archive.
type FileSystemStorageConfig struct {
	// BasePath defaults to ./exports
	BasePath string
	// BaseURL prefixes archive paths in StoreResult.URL; defaults to /exports
	BaseURL string
	Logger  *zap.Logger
}

// FileSystemStorage archives PDFs under BasePath. All access goes through an
// os.Root, so a path can never resolve outside the archive, symlinks
// included.
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	root   *os.Root
	logger *zap.Logger
}

func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	cfg := FileSystemStorageConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "./exports"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/exports"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create storage directory "+cfg.BasePath, err)
	}
	root, err := os.OpenRoot(cfg.BasePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open storage directory "+cfg.BasePath, err)
	}
	return &FileSystemStorage{config: &cfg, root: root, logger: cfg.Logger}, nil
}

// Close releases the archive directory handle.
func (s *FileSystemStorage) Close() error {
	return s.root.Close()
}

// Store writes {owner}/{year}/{month}/{job_id}-{file_name}.
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := ValidateStoreRequest(req); err != nil {
		return nil, err
	}

	name := ObjectName(req, time.Now())
	if err := s.root.MkdirAll(path.Dir(name), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := s.root.WriteFile(name, req.PDFData, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	result := &StoreResult{Path: name, URL: s.GetURL(name), Size: int64(len(req.PDFData))}
	s.logger.Info("PDF archived",
		zap.String("path", name),
		zap.Int64("size", result.Size),
		zap.String("url", result.URL))
	return result, nil
}

// Get opens an archived PDF. Paths that leave the archive fail.
func (s *FileSystemStorage) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	f, err := s.root.Open(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF not found", err)
	case err != nil:
		s.logger.Warn("archive read refused", zap.String("path", name), zap.Error(err))
		return nil, NewRenderError(ErrCodeStorageFailed, "invalid path", err)
	}
	return f, nil
}

func (s *FileSystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	err := s.root.Remove(name)
	switch {
	case err == nil:
		s.logger.Info("PDF deleted", zap.String("path", name))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
}

// CleanupOlderThan walks the archive and removes stale PDFs. Cancellation
// stops the walk and returns what was removed so far without an error.
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := fs.WalkDir(s.root.FS(), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := s.root.Remove(name); err == nil {
			deleted++
			s.logger.Debug("deleted old PDF", zap.String("path", name))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

func (s *FileSystemStorage) GetURL(name string) string {
	return s.config.BaseURL + "/" + path.Clean(name)
}

// RunRetention removes archived exports older than retention every interval
// until ctx is done. A zero retention keeps exports forever.
func RunRetention(ctx context.Context, archive ExportArchive, retention, interval time.Duration, logger *zap.Logger) {
	if archive == nil || retention <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := archive.CleanupOlderThan(ctx, retention); err != nil {
			logger.Warn("archive cleanup failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("archive cleanup removed exports", zap.Int("deleted", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

var _ ExportArchive = (*FileSystemStorage)(nil)
