package dicomgen

import (
	"image"
	"image/color"
	"math"
	randv2 "math/rand/v2"

	"github.com/suyashkumar/dicom/pkg/frame"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// newNoiseFrame generates a deterministic 16-bit grayscale frame: a radial
// intensity falloff with layered noise, seeded per image.
func newNoiseFrame(width, height int, seed uint64) *frame.NativeFrame[uint16] {
	nativeFrame := frame.NewNativeFrame[uint16](16, height, width, width*height, 1)
	rng := randv2.New(randv2.NewPCG(seed, seed))

	const baseValue, valueRange = 8192.0, 32768.0
	centerX, centerY := float64(width)/2, float64(height)/2
	maxDist := math.Sqrt(centerX*centerX + centerY*centerY)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			normalizedDist := math.Sqrt(dx*dx+dy*dy) / maxDist

			intensity := baseValue + (1.0-normalizedDist)*valueRange*0.3
			intensity += (rng.Float64() - 0.5) * valueRange * 0.3
			intensity += (rng.Float64() - 0.5) * valueRange * 0.15

			clamped := math.Max(0, math.Min(65535, intensity))
			nativeFrame.RawData[y*width+x] = uint16(clamped)
		}
	}
	return nativeFrame
}

// drawTextOverlay draws scaled white text with a black outline centered on
// a uint16 frame, so viewers can identify which synthesized row a file
// came from.
func drawTextOverlay(nativeFrame *frame.NativeFrame[uint16], width, height int, text string) {
	if text == "" {
		return
	}

	// Render the text small, then scale it to ~30% of the image width.
	face := basicfont.Face7x13
	baseWidth := font.MeasureString(face, text).Ceil()
	const baseHeight = 13

	textImg := image.NewRGBA(image.Rect(0, 0, baseWidth, baseHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(baseHeight)},
	}
	drawer.DrawString(text)

	scale := float64(width) * 0.3 / float64(baseWidth)
	if scale < 2.0 {
		scale = 2.0
	}
	scaledWidth := int(float64(baseWidth) * scale)
	scaledHeight := int(float64(baseHeight) * scale)

	scaledImg := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.BiLinear.Scale(scaledImg, scaledImg.Bounds(), textImg, textImg.Bounds(), draw.Over, nil)

	posX := (width - scaledWidth) / 2
	posY := (height - scaledHeight) / 2
	outline := scaledHeight / 10
	if outline < 3 {
		outline = 3
	}

	// Black outline first, then the white text on top.
	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			_, _, _, a := scaledImg.At(sx, sy).RGBA()
			if a == 0 {
				continue
			}
			for dy := -outline; dy <= outline; dy++ {
				for dx := -outline; dx <= outline; dx++ {
					if dx*dx+dy*dy > outline*outline {
						continue
					}
					setPixel(nativeFrame, width, height, posX+sx+dx, posY+sy+dy, 0)
				}
			}
		}
	}
	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			r, g, b, a := scaledImg.At(sx, sy).RGBA()
			if a == 0 {
				continue
			}
			brightness := uint16((r + g + b) / 3)
			setPixel(nativeFrame, width, height, posX+sx, posY+sy, brightness)
		}
	}
}

func setPixel(nativeFrame *frame.NativeFrame[uint16], width, height, x, y int, value uint16) {
	if x < 0 || x >= width || y < 0 || y >= height {
		return
	}
	nativeFrame.RawData[y*width+x] = value
}
