package imaging

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at returns the tensor value for pixel (x, y) channel c in HWC layout.
func at(tensor *Tensor, x, y, c int) float32 {
	return tensor.Data[(y*InputSize+x)*Channels+c]
}

func normalized(v uint8) float32 {
	return float32(v)/127.5 - 1
}

func TestPreprocessShapeAndRange(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 500, 400))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < 400; y++ {
		for x := 0; x < 500; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	tensor, err := Preprocess(encodePNG(t, img))
	require.NoError(t, err)
	defer tensor.Release()

	assert.Equal(t, []int64{1, InputSize, InputSize, Channels}, tensor.Shape())
	require.Len(t, tensor.Data, InputSize*InputSize*Channels)
	for i, v := range tensor.Data {
		require.GreaterOrEqualf(t, v, float32(-1), "value %d below range", i)
		require.LessOrEqualf(t, v, float32(1), "value %d above range", i)
	}
}

func TestPreprocessSolidColor(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	tensor, err := Preprocess(encodePNG(t, testImage(100, 100, c)))
	require.NoError(t, err)
	defer tensor.Release()

	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			assert.InDelta(t, normalized(c.R), at(tensor, x, y, 0), 0.02)
			assert.InDelta(t, normalized(c.G), at(tensor, x, y, 1), 0.02)
			assert.InDelta(t, normalized(c.B), at(tensor, x, y, 2), 0.02)
		}
	}
}

func TestPreprocessNormalizationRoundTrip(t *testing.T) {
	c := color.NRGBA{R: 37, G: 128, B: 251, A: 255}
	tensor, err := Preprocess(encodePNG(t, testImage(32, 32, c)))
	require.NoError(t, err)
	defer tensor.Release()

	// denormalizing (v+1)*127.5 recovers the original channel values
	recovered := []float32{
		(at(tensor, 16, 16, 0) + 1) * 127.5,
		(at(tensor, 16, 16, 1) + 1) * 127.5,
		(at(tensor, 16, 16, 2) + 1) * 127.5,
	}
	assert.InDelta(t, float32(c.R), recovered[0], 1)
	assert.InDelta(t, float32(c.G), recovered[1], 1)
	assert.InDelta(t, float32(c.B), recovered[2], 1)
}

func TestPreprocessFlattensTransparencyToBlack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	// fully transparent, color channels deliberately non-zero
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		}
	}

	tensor, err := Preprocess(encodePNG(t, img))
	require.NoError(t, err)
	defer tensor.Release()

	for _, v := range tensor.Data {
		assert.InDelta(t, float32(-1), v, 0.01)
	}
}

func TestPreprocessStretchesWithoutPreservingAspect(t *testing.T) {
	// wide image: left half white, right half black
	img := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			if x < 150 {
				img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{A: 255})
			}
		}
	}

	tensor, err := Preprocess(encodePNG(t, img))
	require.NoError(t, err)
	defer tensor.Release()

	// a fill resize keeps the halves at the horizontal midpoint; letterboxing
	// would have pushed black bars into the top and bottom rows instead
	for y := 0; y < InputSize; y++ {
		assert.InDelta(t, float32(1), at(tensor, 4, y, 0), 0.05)
		assert.InDelta(t, float32(-1), at(tensor, 27, y, 0), 0.05)
	}
}

func TestPreprocessJunkBytes(t *testing.T) {
	_, err := Preprocess([]byte("not an image at all"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreprocess)
}

func TestTensorReleaseIsIdempotent(t *testing.T) {
	tensor, err := Preprocess(encodePNG(t, testImage(10, 10, color.NRGBA{A: 255})))
	require.NoError(t, err)

	tensor.Release()
	assert.Nil(t, tensor.Data)
	tensor.Release() // second call must be a no-op

	var nilTensor *Tensor
	nilTensor.Release()
}

func TestPreprocessAfterPoolReuse(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	first, err := Preprocess(encodePNG(t, testImage(20, 20, red)))
	require.NoError(t, err)
	first.Release()

	second, err := Preprocess(encodePNG(t, testImage(20, 20, blue)))
	require.NoError(t, err)
	defer second.Release()

	assert.InDelta(t, float32(-1), at(second, 16, 16, 0), 0.02)
	assert.InDelta(t, float32(1), at(second, 16, 16, 2), 0.02)
}
