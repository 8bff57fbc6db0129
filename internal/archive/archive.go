// Package archive persists raw homepage snapshots so a profile can be
// re-normalized later without refetching the storefront.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// BlobStore writes a blob and returns a stable URI for it.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Archiver content-addresses homepage snapshots under a configured prefix.
type Archiver struct {
	blobs  BlobStore
	prefix string
}

// New wraps a blob store with snapshot naming.
func New(blobs BlobStore, prefix string) (*Archiver, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	return &Archiver{blobs: blobs, prefix: strings.Trim(prefix, "/")}, nil
}

// SnapshotKey derives the object path for a homepage snapshot:
// <prefix>/<host>/<sha256-of-body>.html. The digest keys the object so
// re-ingesting identical content overwrites rather than duplicates.
func (a *Archiver) SnapshotKey(websiteURL string, body []byte) string {
	host := "unknown-host"
	if u, err := url.Parse(websiteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	sum := sha256.Sum256(body)
	key := path.Join(host, hex.EncodeToString(sum[:])+".html")
	if a.prefix != "" {
		key = path.Join(a.prefix, key)
	}
	return key
}

// Store uploads the homepage snapshot and returns its URI.
func (a *Archiver) Store(ctx context.Context, websiteURL string, body []byte) (string, error) {
	key := a.SnapshotKey(websiteURL, body)
	uri, err := a.blobs.PutObject(ctx, key, "text/html; charset=utf-8", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("store snapshot %s: %w", key, err)
	}
	return uri, nil
}
