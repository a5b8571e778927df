package face

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

const minFaceSide = 16

type BoundingBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Detection is one face found in an image.
type Detection struct {
	Encoding []float64
	Box      BoundingBox
}

// Encoder finds faces in an image and encodes each as a fixed-length vector.
// It returns model.ErrNoFace when the image contains none.
type Encoder interface {
	Encode(ctx context.Context, img image.Image) ([]Detection, error)
}

// HashEncoder is an offline stand-in for a face model. It treats the whole
// image as one face and derives the encoding from its pixels, so the same
// picture always yields the same vector and different pictures land far
// apart. Blank or tiny images contain no face.
type HashEncoder struct {
	Dimensions int
}

func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = 128
	}
	return &HashEncoder{Dimensions: dim}
}

func (e *HashEncoder) Encode(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() < minFaceSide || b.Dy() < minFaceSide {
		return nil, model.ErrNoFace
	}

	h := sha256.New()
	first := pixel(img, b.Min.X, b.Min.Y)
	uniform := true
	buf := make([]byte, 8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := pixel(img, x, y)
			if p != first {
				uniform = false
			}
			binary.LittleEndian.PutUint64(buf, p)
			h.Write(buf)
		}
	}
	if uniform {
		return nil, model.ErrNoFace
	}

	return []Detection{{
		Encoding: expand(h.Sum(nil), e.Dimensions),
		Box:      BoundingBox{Top: b.Min.Y, Right: b.Max.X, Bottom: b.Max.Y, Left: b.Min.X},
	}}, nil
}

func pixel(img image.Image, x, y int) uint64 {
	r, g, b, a := img.At(x, y).RGBA()
	return uint64(r)<<48 | uint64(g)<<32 | uint64(b)<<16 | uint64(a)
}

// expand stretches a digest into dim values in [-0.25, 0.25).
func expand(seed []byte, dim int) []float64 {
	out := make([]float64, 0, dim)
	var counter [4]byte
	for block := uint32(0); len(out) < dim; block++ {
		binary.LittleEndian.PutUint32(counter[:], block)
		sum := sha256.Sum256(append(append([]byte{}, seed...), counter[:]...))
		for i := 0; i+4 <= len(sum) && len(out) < dim; i += 4 {
			u := binary.LittleEndian.Uint32(sum[i:])
			out = append(out, float64(u)/float64(1<<32)*0.5-0.25)
		}
	}
	return out
}
