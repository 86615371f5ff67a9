package viewer

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// VALUE FORMATTING & SCALE CORRECTION
// =============================================================================

// Placeholder is the display value of a cell with no matching fact.
const Placeholder = "—"

// millionsThreshold is the magnitude above which the formatter scales raw
// monetary values down to millions for display.
const millionsThreshold = 1e6

// ValueFormatter formats raw fact values for display.
type ValueFormatter struct {
	// UseScaleHints applies negative decimals metadata: the raw value is
	// multiplied by 10^decimals before formatting and the formatter's own
	// millions scaling is suppressed for that cell, avoiding double-scaling.
	UseScaleHints bool
}

// NewValueFormatter creates a formatter with scale hints enabled.
func NewValueFormatter() *ValueFormatter {
	return &ValueFormatter{UseScaleHints: true}
}

// Format renders a raw numeric value using the optional decimals hint.
func (f *ValueFormatter) Format(raw float64, decimals *int) string {
	v := raw
	scaled := false
	if f.UseScaleHints && decimals != nil && *decimals < 0 {
		// Dividing by the positive power keeps exact results for the
		// common whole-thousands/millions cases.
		v = raw / math.Pow(10, float64(-*decimals))
		scaled = true
	}
	if !scaled && math.Abs(v) >= millionsThreshold {
		v = v / millionsThreshold
	}
	return formatAmount(v)
}

// formatAmount renders a number with thousands separators, negatives in
// parentheses per financial convention.
func formatAmount(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	var body string
	if v == math.Trunc(v) {
		body = addThousands(strconv.FormatFloat(v, 'f', 0, 64))
	} else {
		s := strconv.FormatFloat(v, 'f', 2, 64)
		parts := strings.SplitN(s, ".", 2)
		body = addThousands(parts[0]) + "." + parts[1]
	}

	if negative {
		return "(" + body + ")"
	}
	return body
}

func addThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
