package gpu

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB"}

var sizePrinter = message.NewPrinter(language.English)

// sizeWidth is the number of characters kept for the value part, decimal
// point included.
const sizeWidth = 6

// FormatSize renders a byte count in the largest binary unit up to GB that
// keeps the value at or above one. The value is truncated, not rounded, to
// sizeWidth characters ("1.5000 KB", "256.00 MB", "1023.9 KB").
// Values below 1 KB are printed as whole bytes.
func FormatSize(bytes uint64) string {
	if bytes < 1024 {
		return sizePrinter.Sprintf("%v B", number.Decimal(bytes, number.NoSeparator()))
	}
	v := float64(bytes)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	digits := 1
	for x := v; x >= 10; x /= 10 {
		digits++
	}
	scale := max(sizeWidth-digits-1, 1)
	pow := math.Pow10(scale)
	v = math.Trunc(v*pow) / pow
	return sizePrinter.Sprintf("%v %s",
		number.Decimal(v, number.Scale(scale), number.NoSeparator()), sizeUnits[unit])
}
