// Package assets fetches the remote font and hand model once per run.
package assets

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jchen0824/new-year-countdown/internal/glyph"
)

// maxAssetSize caps a single download.
const maxAssetSize = 64 << 20

// Store downloads assets into a per-session temp directory.
type Store struct {
	session uuid.UUID
	dir     string
	client  *http.Client
}

// NewStore creates the session directory under the system temp dir.
func NewStore(session uuid.UUID) (*Store, error) {
	dir, err := os.MkdirTemp("", "chronos-"+session.String()+"-")
	if err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{
		session: session,
		dir:     dir,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Dir returns the session directory.
func (s *Store) Dir() string {
	return s.dir
}

// Fetch downloads url into the session directory and returns the local path.
// Each URL is fetched once; a second call returns the existing file.
func (s *Store) Fetch(ctx context.Context, url string) (string, error) {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		name = "asset"
	}
	dst := filepath.Join(s.dir, uuid.NewSHA1(s.session, []byte(url)).String()+"-"+name)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(s.dir, "download-*")
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxAssetSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxAssetSize {
		err = fmt.Errorf("larger than %d bytes", maxAssetSize)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}

	log.Printf("[assets] fetched %s (%d bytes)", url, n)
	return dst, nil
}

// Close removes everything fetched this session.
func (s *Store) Close() error {
	return os.RemoveAll(s.dir)
}

// FontSource selects where the glyph font comes from. With both fields
// empty the embedded Go Bold face is used.
type FontSource struct {
	URL  string
	Path string
}

// LoadFont resolves a font. A configured source that fails is an error;
// there is no fallback to the embedded face.
func (s *Store) LoadFont(ctx context.Context, src FontSource) (*glyph.Font, error) {
	p := src.Path
	if p == "" && src.URL != "" {
		var err error
		if p, err = s.Fetch(ctx, src.URL); err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
	}
	if p == "" {
		return glyph.DefaultFont()
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	f, err := glyph.LoadFont(data)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", p, err)
	}
	return f, nil
}

// ModelPath returns a local model file, downloading url when local is empty.
func (s *Store) ModelPath(ctx context.Context, url, local string) (string, error) {
	if local != "" {
		if _, err := os.Stat(local); err != nil {
			return "", fmt.Errorf("hand model: %w", err)
		}
		return local, nil
	}
	p, err := s.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("hand model: %w", err)
	}
	return p, nil
}
