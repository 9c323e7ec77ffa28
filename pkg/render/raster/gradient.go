package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// rampSize is the resolution of the gradient ramp before resampling.
const rampSize = 256

// LinearGradient returns a w×h image that blends from start to end.
//
// A 256-step ramp is generated top to bottom. For horizontal gradients the ramp
// is rotated 90 degrees so values grow left to right. The ramp is then
// resampled with a Lanczos filter to exactly w×h and each ramp value t/255 is
// mapped to the interpolated color.
func LinearGradient(w, h int, start, end color.NRGBA, vertical bool) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}

	ramp := image.NewGray(image.Rect(0, 0, rampSize, rampSize))
	for y := 0; y < rampSize; y++ {
		row := ramp.Pix[y*ramp.Stride : y*ramp.Stride+rampSize]
		for x := range row {
			row[x] = uint8(y)
		}
	}

	var src image.Image = ramp
	if !vertical {
		src = imaging.Rotate90(ramp)
	}
	resized := imaging.Resize(src, w, h, imaging.Lanczos)

	var lut [rampSize]color.NRGBA
	for i := range lut {
		lut[i] = Blend(start, end, float64(i)/(rampSize-1))
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// The ramp is gray, so the red channel carries the value.
			t := resized.Pix[y*resized.Stride+x*4]
			out.SetNRGBA(x, y, lut[t])
		}
	}
	return out
}
