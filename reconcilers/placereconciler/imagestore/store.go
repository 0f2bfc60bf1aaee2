/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package imagestore downloads issue attachments to disk. Place photos are
// stored as <dir>/<place id>/main.<ext>; the extension comes from the
// response Content-Type, then the URL suffix, then defaults to jpg.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"golang.org/x/oauth2"
)

// ErrDownload is returned when an image cannot be fetched or written.
var ErrDownload = errors.New("image download failed")

// maxImageBytes bounds a single download.
const maxImageBytes = 20 << 20

// needsAuth reports whether requests to host carry the GitHub token.
// Private attachments on these hosts are only served to authenticated
// callers.
var needsAuth = func(host string) bool {
	host = strings.ToLower(host)
	return host == "github.com" || strings.HasSuffix(host, ".githubusercontent.com")
}

var contentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var suffixes = map[string]string{
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".gif":  "gif",
	".webp": "webp",
}

// githubAuth adds the token to requests for GitHub hosts only. It is
// consulted on every hop, so redirects to other hosts go out without it.
type githubAuth struct {
	github http.RoundTripper
	base   http.RoundTripper
}

func (t *githubAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	if needsAuth(req.URL.Hostname()) {
		return t.github.RoundTrip(req)
	}
	return t.base.RoundTrip(req)
}

// Store downloads images into Dir.
type Store struct {
	dir    string
	client *http.Client
}

// New returns a Store rooted at dir. A nil ts sends every request
// unauthenticated.
func New(dir string, ts oauth2.TokenSource) *Store {
	s := &Store{
		dir:    dir,
		client: http.DefaultClient,
	}
	if ts != nil {
		s.client = &http.Client{Transport: &githubAuth{
			github: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
			base:   http.DefaultTransport,
		}}
	}
	return s
}

// Dir returns the root directory of place images.
func (s *Store) Dir() string {
	return s.dir
}

// SavePlaceImage stores the image at rawURL as the main image of place id
// and returns its path relative to Dir, e.g. "<id>/main.png".
func (s *Store) SavePlaceImage(ctx context.Context, id, rawURL string) (string, error) {
	full, err := s.Download(ctx, rawURL, filepath.Join(s.dir, id), "main")
	if err != nil {
		return "", err
	}
	return path.Join(id, filepath.Base(full)), nil
}

// Download fetches rawURL into dir/base.<ext> and returns the file path.
func (s *Store) Download(ctx context.Context, rawURL, dir, base string) (string, error) {
	log := clog.FromContext(ctx).With("url", rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: invalid URL %q", ErrDownload, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	req.Header.Set("User-Agent", "placebot")
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: GET %s: %s", ErrDownload, rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: reading %s: %w", ErrDownload, rawURL, err)
	case len(data) == 0:
		return "", fmt.Errorf("%w: %s returned an empty body", ErrDownload, rawURL)
	case len(data) > maxImageBytes:
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrDownload, rawURL, maxImageBytes)
	}

	ext := Extension(resp.Header.Get("Content-Type"), u)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	full := filepath.Join(dir, base+"."+ext)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}

	log.With("path", full).With("bytes", len(data)).Info("Downloaded image")
	return full, nil
}

// Extension picks the file extension for an image served with
// contentType from u.
func Extension(contentType string, u *url.URL) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := contentTypes[strings.ToLower(mt)]; ok {
			return ext
		}
	}
	if u != nil {
		if ext, ok := suffixes[strings.ToLower(path.Ext(u.Path))]; ok {
			return ext
		}
	}
	return "jpg"
}

// RemoveTemp deletes a scratch directory. Failures are logged and
// otherwise ignored.
func RemoveTemp(ctx context.Context, dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		clog.FromContext(ctx).With("dir", dir).Warnf("Failed to remove temporary directory: %v", err)
	}
}
