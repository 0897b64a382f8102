package pictures

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/comcol/comcol-backend/internal/imageproc"
)

// DefaultExtension is the storage format every picture is normalized to.
const DefaultExtension = "jpg"

// NewFileKey returns a fresh 128-bit random key rendered as 32 hex characters.
// The key names the original blob and every derived variant; callers must not
// read any meaning into it beyond uniqueness.
func NewFileKey() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// OriginalKey returns the blob key of the stored original.
func OriginalKey(collectionDir, fileKey, extension string) string {
	return fmt.Sprintf("%s/%s.%s", collectionDir, fileKey, extension)
}

// VariantKey returns the blob key of one derived variant.
func VariantKey(collectionDir, fileKey, suffix, extension string) string {
	return fmt.Sprintf("%s/%s-%s.%s", collectionDir, fileKey, suffix, extension)
}

// BlobKeys returns the original key followed by every variant key of the
// default policy. The set is exactly the files owned by one picture.
func BlobKeys(collectionDir, fileKey, extension string) []string {
	keys := make([]string, 0, 1+len(imageproc.DefaultVariants))
	keys = append(keys, OriginalKey(collectionDir, fileKey, extension))
	for _, variant := range imageproc.DefaultVariants {
		keys = append(keys, VariantKey(collectionDir, fileKey, variant.Suffix, extension))
	}
	return keys
}
