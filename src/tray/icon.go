package tray

import (
	"bytes"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"any-indicator/src/model"
	"any-indicator/src/overlay"
)

const iconSide = 32

// IconPNG renders the lit LED for palette as a square PNG.
func IconPNG(palette model.Palette) ([]byte, error) {
	led := overlay.Render(model.Large, palette, true, true)
	out := image.NewRGBA(image.Rect(0, 0, iconSide, iconSide))
	draw.CatmullRom.Scale(out, out.Bounds(), led, led.Bounds(), draw.Src, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Icon returns the tray icon in the format the platform tray expects.
func Icon(palette model.Palette) ([]byte, error) {
	data, err := IconPNG(palette)
	if err != nil {
		return nil, err
	}
	return platformIcon(data, iconSide), nil
}
