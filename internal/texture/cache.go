// Package texture loads texture images and hands out the opaque IDs that
// mesh texture references carry.
package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"toon-mesh-renderer/internal/mesh"
)

// Resolver returns the image for a texture ID, or nil.
type Resolver interface {
	Image(id uint32) *image.NRGBA
}

// Cache is a concurrency-safe texture cache. Each distinct path is decoded
// once and keeps the same ID for the life of the cache.
type Cache struct {
	mu     sync.RWMutex
	byPath map[string]*cacheEntry
	byID   []*cacheEntry // byID[id-1]
	index  *Index
}

type cacheEntry struct {
	id  uint32
	img *image.NRGBA
}

// NewCache creates a texture cache. index may be nil; when set, paths that
// do not exist on disk are looked up by stem.
func NewCache(index *Index) *Cache {
	return &Cache{
		byPath: make(map[string]*cacheEntry),
		index:  index,
	}
}

// Load returns a texture reference for path, decoding the file on first use.
func (c *Cache) Load(path string, kind mesh.Kind) (mesh.Texture, error) {
	path = c.resolve(path)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.byPath[path]; exists {
		c.mu.RUnlock()
		return mesh.Texture{ID: entry.id, Kind: kind, Path: path}, nil
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)
	if err != nil {
		return mesh.Texture{}, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.byPath[path]; exists {
		return mesh.Texture{ID: entry.id, Kind: kind, Path: path}, nil
	}
	entry := &cacheEntry{id: uint32(len(c.byID) + 1), img: img}
	c.byPath[path] = entry
	c.byID = append(c.byID, entry)

	return mesh.Texture{ID: entry.id, Kind: kind, Path: path}, nil
}

// Image implements Resolver.
func (c *Cache) Image(id uint32) *image.NRGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id == 0 || int(id) > len(c.byID) {
		return nil
	}
	return c.byID[id-1].img
}

// Len returns the number of loaded textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func (c *Cache) resolve(path string) string {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err == nil || c.index == nil {
		return path
	}
	if p, ok := c.index.ResolvePath(path); ok {
		return p
	}
	return path
}

// String is used in log lines.
func (c *Cache) String() string {
	return fmt.Sprintf("texture cache (%d loaded)", c.Len())
}
