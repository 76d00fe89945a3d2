package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses a hex color (#rgb, #rrggbb or #rrggbbaa, leading # optional)
// or "transparent". Anything else yields fallback.
func ParseColor(param string, fallback color.RGBA) color.RGBA {
	param = strings.TrimSpace(param)
	if param == "" {
		return fallback
	}
	if strings.EqualFold(param, "transparent") {
		return color.RGBA{}
	}

	param = strings.TrimPrefix(param, "#")
	if len(param) == 3 {
		param = string([]byte{param[0], param[0], param[1], param[1], param[2], param[2]})
	}
	if len(param) == 6 {
		param += "ff"
	}
	if len(param) != 8 {
		return fallback
	}

	v, err := strconv.ParseUint(param, 16, 32)
	if err != nil {
		return fallback
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// HexColor formats c as #rrggbb, the form CSS and color inputs expect.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
