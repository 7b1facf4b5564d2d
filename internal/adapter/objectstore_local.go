package adapter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/model"
)

// LocalObjectStore implements ObjectStore on the local filesystem. Development
// only: files land under a root directory that the server exposes beneath a
// public base URL.
type LocalObjectStore struct {
	rootDir    string
	baseURL    string
	httpClient *http.Client
}

func NewLocalObjectStore(cfg config.ObjectStoreConfig) (*LocalObjectStore, error) {
	if cfg.LocalDir == "" {
		return nil, fmt.Errorf("local object store directory is required")
	}

	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media root directory: %w", err)
	}

	return &LocalObjectStore{
		rootDir:    cfg.LocalDir,
		baseURL:    strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		httpClient: http.DefaultClient,
	}, nil
}

func (s *LocalObjectStore) Upload(ctx context.Context, ownerID int64, media model.Media) (string, error) {
	data, err := resolveMediaBytes(ctx, s.httpClient, media)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", id.New(), sanitizeFilename(media.Filename))
	relPath := filepath.Join(fmt.Sprintf("%d", ownerID), name)

	fullDir := filepath.Join(s.rootDir, fmt.Sprintf("%d", ownerID))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("creating owner directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	fullPath := filepath.Join(s.rootDir, relPath)
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing temp media file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming media file: %w", err)
	}

	return s.baseURL + "/" + filepath.ToSlash(relPath), nil
}

// sanitizeFilename keeps object keys URL- and filesystem-safe. Anything
// outside [a-zA-Z0-9._-] becomes an underscore; empty names fall back to
// "upload".
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
