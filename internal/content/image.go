package content

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes png, jpeg, gif, bmp, tiff or webp data into tightly
// packed 8-bit RGBA with its origin at (0, 0).
func DecodeImage(r io.Reader) (*image.RGBA, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.Newf("%s image has no pixels", format)
	}

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == 4*bounds.Dx() {
		return rgba, nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, nil
}

func (r *Resolver) ReadImage(name string) (*image.RGBA, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, err
	}

	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", name)
	}
	return img, nil
}
