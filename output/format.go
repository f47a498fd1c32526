package output

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatNumber adds thousand separators to numbers
func FormatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// FormatValue prints a segment value with thousand separators and at most
// two decimals; whole numbers get none.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	rounded := v
	if math.Abs(v) < 1e13 {
		rounded = math.Round(v*100) / 100
	}
	if rounded == 0 {
		// avoid "-0"
		rounded = 0
	}
	return humanize.CommafWithDigits(rounded, 2)
}
