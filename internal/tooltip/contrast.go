package tooltip

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrColorParse = errors.New("malformed label color")

const (
	TextBlack = "#000"
	TextWhite = "#fff"
)

// TextColorFor picks black or white text for a label whose background is the
// six-hex-digit colour hex, using WCAG 2.0 relative luminance
// (https://www.w3.org/TR/WCAG20/).
func TextColorFor(hex string) (string, error) {
	if len(hex) != 6 {
		return "", fmt.Errorf("%w: %q: want 6 hex digits", ErrColorParse, hex)
	}
	var ch [3]float64
	for i := range ch {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrColorParse, hex)
		}
		c := float64(v) / 255
		if c <= 0.03928 {
			c /= 12.92
		} else {
			c = math.Pow((c+0.055)/1.055, 2.4)
		}
		ch[i] = c
	}
	l := 0.2126*ch[0] + 0.7152*ch[1] + 0.0722*ch[2]
	if l > 0.179 {
		return TextBlack, nil
	}
	return TextWhite, nil
}
