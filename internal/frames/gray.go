package frames

import (
	"image"
	"image/color"
)

// Grayscale converts img to 8-bit luma using ITU-R BT.601 weights. A
// *image.Gray input is returned unchanged.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			src := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < b.Dx(); x++ {
				dst[x] = luma(uint32(src[x*4]), uint32(src[x*4+1]), uint32(src[x*4+2]))
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: luma(r>>8, g>>8, bl>>8)})
		}
	}
	return out
}

// luma computes round(0.299R + 0.587G + 0.114B) in fixed point.
func luma(r, g, b uint32) uint8 {
	y := (299*r + 587*g + 114*b + 500) / 1000
	if y > 255 {
		y = 255
	}
	return uint8(y)
}
