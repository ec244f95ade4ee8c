package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"sync"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Model input geometry. Fixed by the classifier artifact.
const (
	InputSize = 32
	Channels  = 3

	tensorLen = InputSize * InputSize * Channels
)

// ErrPreprocess indicates a decode, resize, or normalization failure.
var ErrPreprocess = errors.New("image preprocessing failed")

// tensorPool recycles normalized tensor buffers across requests.
var tensorPool = sync.Pool{
	New: func() any {
		return make([]float32, tensorLen)
	},
}

// Tensor is the normalized model input: shape [1, 32, 32, 3], HWC layout,
// values in [-1, 1]. Its buffer is pooled; the owner must call Release once
// the tensor is no longer needed, on every exit path.
type Tensor struct {
	Data []float32

	released bool
}

// Shape returns the tensor dimensions including the batch axis.
func (t *Tensor) Shape() []int64 {
	return []int64{1, InputSize, InputSize, Channels}
}

// Release returns the backing buffer to the pool. Safe to call more than
// once; the tensor must not be used afterwards.
func (t *Tensor) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	buf := t.Data
	t.Data = nil
	tensorPool.Put(buf)
}

// Preprocess converts raw image bytes into the model input tensor:
// stretch-resize to 32x32 (aspect ratio not preserved), flatten any
// transparency over black, drop alpha, and map every channel value from
// [0, 255] to [-1, 1] via v/127.5 - 1. The normalization formula is a hard
// contract with the model.
func Preprocess(data []byte) (*Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrPreprocess, "decode: %v", err)
	}

	resized := resize.Resize(InputSize, InputSize, img, resize.Bilinear)
	if b := resized.Bounds(); b.Dx() != InputSize || b.Dy() != InputSize {
		// nfnt/resize honors exact target dimensions, but the contract with
		// the model leaves no room for a mismatched decode path.
		resized = resize.Resize(InputSize, InputSize, resized, resize.Bilinear)
	}

	rgb := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.Draw(rgb, rgb.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), resized, resized.Bounds().Min, draw.Over)

	buf := tensorPool.Get().([]float32)
	i := 0
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			c := rgb.RGBAAt(x, y)
			buf[i] = float32(c.R)/127.5 - 1
			buf[i+1] = float32(c.G)/127.5 - 1
			buf[i+2] = float32(c.B)/127.5 - 1
			i += 3
		}
	}

	return &Tensor{Data: buf}, nil
}
