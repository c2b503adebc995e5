package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Icon is a window icon given either as a file path or raw encoded bytes.
type Icon struct {
	Path string
	Raw  []byte
}

func IconFromFile(path string) Icon { return Icon{Path: path} }

func IconFromBytes(b []byte) Icon { return Icon{Raw: b} }

// UnmarshalJSON accepts a path string or an array of byte values.
func (i *Icon) UnmarshalJSON(b []byte) error {
	var path string
	if err := json.Unmarshal(b, &path); err == nil {
		*i = Icon{Path: path}
		return nil
	}
	var raw []int
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("icon must be a file path or a byte array")
	}
	buf := make([]byte, len(raw))
	for n, v := range raw {
		if v < 0 || v > 255 {
			return fmt.Errorf("icon byte %d out of range: %d", n, v)
		}
		buf[n] = byte(v)
	}
	*i = Icon{Raw: buf}
	return nil
}

// DecodeIcon loads and decodes icon into an RGBA image. PNG, JPEG, GIF,
// BMP and WebP are supported.
func DecodeIcon(icon Icon) (*image.RGBA, error) {
	data := icon.Raw
	if icon.Path != "" {
		var err error
		data, err = os.ReadFile(icon.Path)
		if err != nil {
			return nil, fmt.Errorf("read icon %s: %w", icon.Path, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid icon: no image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid icon: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(rgba, image.Point{}, img, bounds, draw.Src, nil)
	return rgba, nil
}

// ScaleIcon resamples img to a size x size square.
func ScaleIcon(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
