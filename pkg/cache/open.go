package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the backend selected by url:
//
//	""                          file cache in dir
//	"none"                      caching disabled
//	"file:///path"              file cache at path
//	"redis://..." "rediss://..." Redis
//	"mongodb://..." "mongodb+srv://..." MongoDB
func Open(ctx context.Context, url, dir string) (Cache, error) {
	switch {
	case url == "":
		return NewFileCache(dir)
	case url == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(url, "file://"):
		return NewFileCache(strings.TrimPrefix(url, "file://"))
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisCache(ctx, url)
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return NewMongoCache(ctx, url)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
	}
}
