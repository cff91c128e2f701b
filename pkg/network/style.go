package network

import (
	"github.com/lucasb-eyer/go-colorful"
)

// PaletteSize is the number of component colors.
const PaletteSize = 9

// Palette lists the component colors by index.
var Palette = [PaletteSize]string{
	"#d0021c", // red
	"#f5a623", // orange
	"#f8e81d", // yellow
	"#7dd421", // lime
	"#417506", // green
	"#8a562b", // brown
	"#4990e2", // blue
	"#9013fe", // purple
	"#bd10e0", // magenta
}

const (
	plainFill    = "#ffffff"
	plainBorder  = "#b8b8b8"
	inputBorder  = "#00a343"
	outputBorder = "#f52418"
	white        = "#ffffff"
)

// ValidColor reports whether c indexes the palette.
func ValidColor(c int) bool { return c >= 0 && c < PaletteSize }

// Style holds presentation fields derived from a node's kind and color.
type Style struct {
	Fill            string
	Border          string
	HighlightFill   string
	HighlightBorder string
}

// StyleOf derives the presentation of n. It is recomputed on every call.
func StyleOf(n *Node) Style {
	switch n.Kind {
	case KindPlain:
		return Style{Fill: plainFill, Border: plainBorder, HighlightFill: shade(plainBorder, 0.85), HighlightBorder: plainBorder}
	case KindInput:
		return Style{Fill: shade(inputBorder, 0.85), Border: inputBorder, HighlightFill: shade(inputBorder, 0.6), HighlightBorder: inputBorder}
	case KindOutput:
		return Style{Fill: shade(outputBorder, 0.85), Border: outputBorder, HighlightFill: shade(outputBorder, 0.6), HighlightBorder: outputBorder}
	case KindComponent:
		base := Palette[0]
		if n.Component != nil && ValidColor(n.Component.Color) {
			base = Palette[n.Component.Color]
		}
		return Style{Fill: shade(base, 0.8), Border: base, HighlightFill: shade(base, 0.6), HighlightBorder: base}
	}
	return Style{Fill: plainFill, Border: plainBorder}
}

// shade blends hex toward white by t in [0, 1].
func shade(hex string, t float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	w, _ := colorful.Hex(white)
	return c.BlendRgb(w, t).Clamped().Hex()
}
