package transcoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crazzzytube/constant"
)

func masterPlaylist(renditions []Rendition) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")

	for _, r := range renditions {
		bandwidth := (r.VideoKbps + r.AudioKbps) * 1000
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,CODECS=\"avc1.640028,mp4a.40.2\"\n",
			bandwidth, r.Width, r.Height)
		b.WriteString(r.playlistName() + "\n")
	}
	return b.String()
}

func writeMasterPlaylist(outputDir string, renditions []Rendition) error {
	return os.WriteFile(filepath.Join(outputDir, constant.ManifestName), []byte(masterPlaylist(renditions)), 0o644)
}
