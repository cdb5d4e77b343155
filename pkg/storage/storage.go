package storage

import (
	"context"
	"path"
	"strings"

	"crazzzytube/constant"
)

// UploadResult identifies one stored object. PublicID is the object key and
// is what Delete expects back.
type UploadResult struct {
	URL      string
	PublicID string
}

type BlobStore interface {
	Upload(ctx context.Context, key string, filePath string) (UploadResult, error)
	Delete(ctx context.Context, publicID string, resourceType constant.ResourceType) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

// ObjectKey joins key parts with forward slashes regardless of OS.
func ObjectKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "\\", "/")
	}
	return path.Join(parts...)
}

func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
