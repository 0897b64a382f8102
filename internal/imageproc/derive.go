package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Variant describes one derived copy of an original picture.
type Variant struct {
	Suffix string
	Edge   int
}

// DefaultVariants is the current derived-size policy.
var DefaultVariants = []Variant{
	{Suffix: "thumb", Edge: 100},
	{Suffix: "gallery", Edge: 200},
	{Suffix: "portrait", Edge: 300},
}

// Policy controls how derived variants are produced. CropSquare selects the
// center-crop behavior; an earlier policy generated uncropped variants, so the
// flag stays configurable.
type Policy struct {
	Variants    []Variant
	CropSquare  bool
	JPEGQuality int
}

// DefaultPolicy returns the square-crop policy at the given JPEG quality.
func DefaultPolicy(quality int) Policy {
	return Policy{Variants: DefaultVariants, CropSquare: true, JPEGQuality: quality}
}

// DeriveVariants decodes the stored original and produces every variant of the
// policy, keyed by suffix. Each output is RGB (alpha composited onto white),
// center-cropped to the largest fitting square when the policy says so, then
// resized with Lanczos so the longer edge equals the variant's target length.
func DeriveVariants(original []byte, policy Policy) (map[string][]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("decoding original: %w", err)
	}
	src = flattenToRGB(src)

	out := make(map[string][]byte, len(policy.Variants))
	for _, variant := range policy.Variants {
		if variant.Edge <= 0 {
			return nil, fmt.Errorf("variant %q has non-positive edge %d", variant.Suffix, variant.Edge)
		}

		img := src
		if policy.CropSquare {
			side := min(img.Bounds().Dx(), img.Bounds().Dy())
			img = imaging.CropCenter(img, side, side)
		}

		resized := resizeLongerEdge(img, variant.Edge)

		encoded, err := encodeJPEG(resized, policy.JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("encoding %q variant: %w", variant.Suffix, err)
		}
		out[variant.Suffix] = encoded
	}
	return out, nil
}

// flattenToRGB drops any alpha channel by compositing onto a white background.
func flattenToRGB(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// resizeLongerEdge scales the image preserving aspect ratio so its longer edge
// equals target.
func resizeLongerEdge(img image.Image, target int) *image.NRGBA {
	bounds := img.Bounds()
	if bounds.Dx() >= bounds.Dy() {
		return imaging.Resize(img, target, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, target, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
