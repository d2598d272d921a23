// Package mask decodes segmentation mask images and normalizes their sample
// values to the binary {0, 255} domain expected by the scoring engine.
package mask

import (
	"image"
	"io"

	// Registered decoders for the image formats submissions arrive in.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// Grid is a single-channel image held as row-major 8-bit samples.
type Grid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrid allocates a zeroed width×height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the sample at (x, y). No bounds checking beyond the slice's own.
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Decode reads image bytes and returns their samples as a Grid. The image
// must decode as one of the registered formats and must be single-channel
// grayscale; name is used only in error messages.
func Decode(r io.Reader, name string) (*Grid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, score.Errorf(score.KindDecode, "could not decode image: %s", name)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, score.Errorf(score.KindChannel, "image %s is not single-channel (grayscale)", name)
	}

	b := gray.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	for y := 0; y < g.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+g.Width]
		copy(g.Pix[y*g.Width:(y+1)*g.Width], row)
	}
	return g, nil
}

// Normalize coerces the grid's sample domain to {0, 255} in place.
//
// Grids already within {0, 255} are left untouched. A binary grid whose high
// value is some other V is rescaled by v/V*255 and re-verified. Anything else
// is rejected; name is used only in error messages.
func (g *Grid) Normalize(name string) error {
	distinct := g.distinctValues()

	if subsetOfBinaryDomain(distinct) {
		return nil
	}

	var high uint8
	nonZero := 0
	for _, v := range distinct {
		if v != 0 {
			high = v
			nonZero++
		}
	}
	if nonZero != 1 {
		return score.Errorf(score.KindValueDomain, "image %s contains values other than 0 and 255", name)
	}

	for i, v := range g.Pix {
		g.Pix[i] = v / high * 255
	}
	if !subsetOfBinaryDomain(g.distinctValues()) {
		return score.Errorf(score.KindValueDomain, "image %s contains values other than 0 and 255", name)
	}
	return nil
}

func (g *Grid) distinctValues() []uint8 {
	var seen [256]bool
	for _, v := range g.Pix {
		seen[v] = true
	}
	var distinct []uint8
	for v, ok := range seen {
		if ok {
			distinct = append(distinct, uint8(v))
		}
	}
	return distinct
}

func subsetOfBinaryDomain(distinct []uint8) bool {
	for _, v := range distinct {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}
