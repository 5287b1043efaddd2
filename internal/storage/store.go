// Package storage persists generated assets and returns their public URLs.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ObjectStore writes binary objects under slash-separated keys.
type ObjectStore interface {
	// Put stores data at key and returns the object's public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

var ErrInvalidKey = errors.New("storage: invalid key")

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
