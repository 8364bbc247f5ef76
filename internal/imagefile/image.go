// Package imagefile loads images and builds the request payloads shared by
// every provider: base64 content, data URIs and MIME types.
package imagefile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMIMEType is used when the extension is unknown.
const DefaultMIMEType = "image/jpeg"

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
}

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// ErrEmptyImage is returned when an image file has no content.
var ErrEmptyImage = errors.New("image is empty")

// Image is an image read into memory, ready to be sent to a provider.
type Image struct {
	Path string
	Data []byte
}

// Load reads the image at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the image the caller asked to classify
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}
	return &Image{Path: path, Data: data}, nil
}

// New wraps in-memory bytes under a file name used for MIME detection.
func New(path string, data []byte) *Image {
	return &Image{Path: path, Data: data}
}

// Name returns the base name of the image file.
func (img *Image) Name() string {
	return filepath.Base(img.Path)
}

// MIMEType returns the MIME type derived from the file extension.
func (img *Image) MIMEType() string {
	return MIMETypeFor(img.Path)
}

// Base64 returns the standard base64 encoding of the image, without any
// data-URI prefix.
func (img *Image) Base64() string {
	return StripDataURI(base64.StdEncoding.EncodeToString(img.Data))
}

// DataURI returns the image as a data: URI with the given MIME type.
func (img *Image) DataURI(mimeType string) string {
	return "data:" + mimeType + ";base64," + img.Base64()
}

// Decode decodes the image pixels. Supported formats are those registered by
// the standard library and golang.org/x/image (bmp, tiff, webp).
func (img *Image) Decode() (image.Image, string, error) {
	return image.Decode(bytes.NewReader(img.Data))
}

// MIMETypeFor maps a file name to the MIME type sent to providers.
func MIMETypeFor(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return DefaultMIMEType
}

// StripDataURI removes a leading data:image/...;base64, prefix.
func StripDataURI(s string) string {
	return dataURIPrefix.ReplaceAllString(s, "")
}
