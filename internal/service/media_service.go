package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stemsi/school-directory/internal/config"
)

// ErrFileTooLarge is returned when an upload exceeds MAX_UPLOAD_SIZE_MB.
var ErrFileTooLarge = errors.New("file too large")

// MediaService stores school images in the media directory served under
// config.MediaURLPrefix.
type MediaService struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{
		dir:      cfg.MediaDir,
		maxBytes: cfg.MaxUploadBytes,
		now:      time.Now,
	}
}

// SaveUpload saves an uploaded file and returns its public path.
func (s *MediaService) SaveUpload(header *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return s.Save(header.Filename, file)
}

// Save writes r to the media directory as "<unix-millis>-<originalName>" and
// returns the public path ("/schoolImages/<stored name>").
//
// Two uploads with the same name in the same millisecond collide; the file is
// created exclusively so the second one fails instead of replacing the first.
func (s *MediaService) Save(originalName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	filename := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeFilename(originalName))
	destPath := filepath.Join(s.dir, filename)

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return config.MediaURLPrefix + "/" + filename, nil
}

// sanitizeFilename keeps only the base name of a client-supplied filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
