package imageproc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/heic"
)

// MIME aliases for the camera-native HEIF container.
const (
	MimeHEIC = "image/heic"
	MimeHEIF = "image/heif"
)

// IsCameraNative reports whether the declared content type is one of the HEIF
// container aliases that require decoding before standard processing.
func IsCameraNative(contentType string) bool {
	mime := strings.TrimSpace(contentType)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == MimeHEIC || mime == MimeHEIF
}

// Normalize converts camera-native uploads into the catalog's storage format.
// HEIF containers are decoded and re-encoded as JPEG; anything else passes
// through byte-for-byte with no decode round trip.
func Normalize(data []byte, contentType string, quality int) ([]byte, error) {
	if !IsCameraNative(contentType) {
		return data, nil
	}

	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s container: %w", contentType, err)
	}

	out, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, fmt.Errorf("re-encoding %s upload: %w", contentType, err)
	}
	return out, nil
}
