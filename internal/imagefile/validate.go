package imagefile

import (
	"path/filepath"
	"slices"
	"strings"
)

// acceptedContentTypes mirrors the accepted upload extensions.
var acceptedContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// HasAcceptedExtension reports whether name ends in one of exts
// (case-insensitive).
func HasAcceptedExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext != "" && slices.Contains(exts, ext)
}

// IsAcceptedContentType reports whether a declared content type is one of
// the accepted image types. Parameters such as charset are ignored.
func IsAcceptedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return slices.Contains(acceptedContentTypes, ct)
}
