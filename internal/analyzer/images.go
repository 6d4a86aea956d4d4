package analyzer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// maxImageBytes is the upper bound accepted by most vision endpoints.
const maxImageBytes = 4 * 1024 * 1024

// jpeg quality bounds for the re-encode loop
const (
	startQuality = 85
	minQuality   = 60
	qualityStep  = 5
)

// PrepareImage returns the image in a form small enough for a vision
// request: images already under the size cap pass through untouched,
// larger ones are downscaled and re-encoded as JPEG with decreasing
// quality until they fit.
func PrepareImage(data []byte) ([]byte, error) {
	if len(data) <= maxImageBytes {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// area scales quadratically with the edge, so scale edges by sqrt
	scale := math.Sqrt(float64(maxImageBytes) / float64(len(data)))
	width := int(float64(img.Bounds().Dx()) * scale)
	if width < 1 {
		width = 1
	}
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var out []byte
	for quality := startQuality; quality >= minQuality; quality -= qualityStep {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
		out = buf.Bytes()
		if len(out) <= maxImageBytes {
			return out, nil
		}
	}

	// best effort at minimum quality
	return out, nil
}
