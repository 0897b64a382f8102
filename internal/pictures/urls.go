package pictures

import (
	"fmt"
	"strings"
)

// URLs holds the externally reachable relative paths of one picture.
type URLs struct {
	Image    string `json:"image"`
	Thumb    string `json:"thumb"`
	Gallery  string `json:"gallery"`
	Portrait string `json:"portrait"`
}

// URLResolver maps stored blob keys to public relative URLs under the media
// prefix. Resolution is pure; a malformed prefix is a startup error.
type URLResolver struct {
	prefix        string
	collectionDir string
}

func NewURLResolver(publicPrefix, collectionDir string) (*URLResolver, error) {
	prefix := strings.TrimRight(publicPrefix, "/")
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("media public prefix must start with '/': %q", publicPrefix)
	}
	if collectionDir == "" || strings.ContainsAny(collectionDir, "/\\") {
		return nil, fmt.Errorf("collection dir must be a bare directory name: %q", collectionDir)
	}
	return &URLResolver{prefix: prefix, collectionDir: collectionDir}, nil
}

// CollectionDir returns the blob-store subtree pictures are stored under.
func (r *URLResolver) CollectionDir() string {
	return r.collectionDir
}

// Resolve returns the public URLs for the original and each derived size.
func (r *URLResolver) Resolve(fileKey, extension string) URLs {
	return URLs{
		Image:    r.prefix + "/" + OriginalKey(r.collectionDir, fileKey, extension),
		Thumb:    r.prefix + "/" + VariantKey(r.collectionDir, fileKey, "thumb", extension),
		Gallery:  r.prefix + "/" + VariantKey(r.collectionDir, fileKey, "gallery", extension),
		Portrait: r.prefix + "/" + VariantKey(r.collectionDir, fileKey, "portrait", extension),
	}
}
