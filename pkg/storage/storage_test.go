package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "videos/abc/master.m3u8", ObjectKey("videos", "abc", "master.m3u8"))
	assert.Equal(t, "videos/abc/720p_000.ts", ObjectKey("videos", `abc\720p_000.ts`))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.apple.mpegurl", ContentType("videos/a/master.m3u8"))
	assert.Equal(t, "video/mp2t", ContentType("videos/a/360p_001.TS"))
	assert.Equal(t, "image/jpeg", ContentType("thumbnails/a.jpeg"))
	assert.Equal(t, "image/png", ContentType("thumbnails/a.png"))
	assert.Equal(t, "application/octet-stream", ContentType("raw/blob"))
}

func TestMinIOStoreURL(t *testing.T) {
	s := NewMinIOStore(nil, "media", "http://localhost:9000")
	assert.Equal(t, "http://localhost:9000/media/videos/a/master.m3u8", s.URL("videos/a/master.m3u8"))
}
