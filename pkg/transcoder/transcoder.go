package transcoder

import (
	"context"
)

// HLSOutput is the on-disk result of one transcode. ManifestPath is the
// top-level playlist; SegmentPaths holds every other produced file (variant
// playlists and .ts segments).
type HLSOutput struct {
	ManifestPath string
	SegmentPaths []string
	Duration     float64
}

type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputDir string) (*HLSOutput, error)
}

// Prober measures the playable duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}
