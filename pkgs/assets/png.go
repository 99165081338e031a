package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
)

// rectangleInset is the white margin, in pixels, around the filled rectangle.
const rectangleInset = 10

var namedColors = map[string]color.RGBA{
	"red":   {R: 0xff, A: 0xff},
	"green": {G: 0x80, A: 0xff},
	"blue":  {B: 0xff, A: 0xff},
	"black": {A: 0xff},
}

// RectanglePNG draws a white width×height canvas with a rectangle of the
// named colour inset by 10 pixels, and encodes it as PNG.
func RectanglePNG(width, height int, colorName string) ([]byte, error) {
	fill, ok := namedColors[strings.ToLower(colorName)]
	if !ok {
		return nil, fmt.Errorf("unknown colour %q", colorName)
	}
	if width <= 2*rectangleInset || height <= 2*rectangleInset {
		return nil, fmt.Errorf("image %dx%d too small", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	// The far edge at width-inset, height-inset is painted too.
	inner := image.Rect(rectangleInset, rectangleInset, width-rectangleInset+1, height-rectangleInset+1)
	draw.Draw(img, inner, &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Colors returns the colour names accepted by RectanglePNG for random
// selection.
func Colors() []string {
	return []string{"red", "blue", "green"}
}
