package core

// Color tags a screen cell or a well block. The zero value means "no color":
// an empty well cell, or the terminal's default foreground on a screen.
type Color uint8

const (
	ColorNone Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorPurple
	ColorPink
	ColorGray
	ColorShadow
	ColorLife
)

// ColorGarbage marks blocks inserted as Versus garbage. Rows containing it
// never count toward an attack.
const ColorGarbage = ColorGray

var colorNames = [...]string{
	ColorNone:    "none",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
	ColorOrange:  "orange",
	ColorPurple:  "purple",
	ColorPink:    "pink",
	ColorGray:    "gray",
	ColorShadow:  "shadow",
	ColorLife:    "life",
}

// String returns the color name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// Valid reports whether c is one of the defined tags.
func (c Color) Valid() bool {
	return int(c) < len(colorNames)
}
