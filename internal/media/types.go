package media

import (
	"mime"
	"path"
	"strings"
)

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".ogv":  "video/ogg",
}

var subtitleExtensions = map[string]bool{
	".vtt": true,
	".srt": true,
}

func extension(name string) string {
	return strings.ToLower(path.Ext(name))
}

// ContentType picks a Content-Type from the file extension.
func ContentType(name string) string {
	ext := extension(name)
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func IsVideo(name string) bool {
	_, ok := videoTypes[extension(name)]
	return ok
}

func IsSubtitle(name string) bool {
	return subtitleExtensions[extension(name)]
}
