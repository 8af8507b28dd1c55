package frames

import (
	"image"
	"image/color"
	"testing"
)

func TestGrayscaleIdentityForGray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	if Grayscale(g) != g {
		t.Fatal("expected the same *image.Gray back")
	}
}

func TestGrayscaleBT601(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(2, 0, color.RGBA{B: 255, A: 255})
	img.Set(3, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	got := Grayscale(img)
	want := []uint8{76, 150, 29, 255}
	for i, w := range want {
		if got.Pix[i] != w {
			t.Fatalf("pixel %d = %d, want %d", i, got.Pix[i], w)
		}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.Set(0, 0, color.NRGBA{R: 255, A: 255})
	if Grayscale(nrgba).Pix[0] != 76 {
		t.Fatalf("generic path mismatch: %d", Grayscale(nrgba).Pix[0])
	}
}

func TestGrayscaleSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	got := Grayscale(sub)
	if got.Bounds().Dx() != 2 || got.Pix[0] != 255 || got.Pix[1] != 0 {
		t.Fatalf("unexpected sub-image conversion: %v", got.Pix)
	}
}
