package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareImage_SmallPassThrough(t *testing.T) {
	data := []byte("tiny jpeg stand-in")

	out, err := PrepareImage(data)

	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestPrepareImage_LargeInvalidData(t *testing.T) {
	data := make([]byte, maxImageBytes+1)

	_, err := PrepareImage(data)
	assert.Error(t, err)
}

func TestPrepareImage_ResizesOversized(t *testing.T) {
	// noise compresses badly, so the encoded image exceeds the cap
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, 1600, 1600))
	for y := 0; y < 1600; y++ {
		for x := 0; x < 1600; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	if buf.Len() <= maxImageBytes {
		t.Skipf("generated image only %d bytes, not oversized", buf.Len())
	}

	out, err := PrepareImage(buf.Bytes())

	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), maxImageBytes)

	// output decodes as a smaller image
	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Less(t, decoded.Bounds().Dx(), 1600)
}
