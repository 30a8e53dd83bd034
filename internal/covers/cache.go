// Package covers keeps a local copy of volume cover images.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultUserAgent = "MangaShelf/1.0"

// Cache handles local caching of volume cover images.
type Cache struct {
	cacheDir   string
	userAgent  string
	httpClient *http.Client
}

// NewCache creates a cover cache at cacheDir. An empty userAgent uses the default.
func NewCache(cacheDir, userAgent string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Cache{
		cacheDir:  cacheDir,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the cached cover for a volume, fetching it first when absent.
// Returns an empty path when the volume has no cover URL.
func (c *Cache) GetCover(ctx context.Context, volumeID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	if path, ok := c.Cached(volumeID, coverURL); ok {
		return path, nil
	}

	cachePath := filepath.Join(c.cacheDir, coverFilename(volumeID, coverURL))
	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", fmt.Errorf("cache cover of volume %d: %w", volumeID, err)
	}
	return cachePath, nil
}

// Cached returns the path of an already cached cover without fetching.
func (c *Cache) Cached(volumeID uint, coverURL string) (string, bool) {
	if coverURL == "" {
		return "", false
	}
	cachePath := filepath.Join(c.cacheDir, coverFilename(volumeID, coverURL))
	if _, err := os.Stat(cachePath); err != nil {
		return "", false
	}
	return cachePath, true
}

// Invalidate removes every cached cover of a volume.
func (c *Cache) Invalidate(volumeID uint) error {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, fmt.Sprintf("volume_%d_*", volumeID)))
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// coverFilename changes whenever the cover URL does, so a new URL never serves a stale file.
func coverFilename(volumeID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("volume_%d_%x.jpg", volumeID, hash[:8])
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
