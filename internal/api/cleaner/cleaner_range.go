package cleaner

import (
	"math"
	"strconv"
	"strings"
)

// Range is a derived numeric low/high pair. Both ends are set or neither is.
type Range struct {
	Low   float64
	High  float64
	Valid bool
}

func newRange(low, high float64) Range {
	return Range{Low: low, High: high, Valid: true}
}

// Cells renders the range as two cells, both empty when the range is null.
func (r Range) Cells() (string, string) {
	if !r.Valid {
		return "", ""
	}
	return formatNumber(r.Low), formatNumber(r.High)
}

var (
	// Markers for prices that depend on season or the bundled hotel.
	unpricedMarkers = []string{"浮动", "酒店", "另计", "咨询", "待定"}
	freeMarkers     = []string{"免费", "免票"}
	currencyTrimmer = strings.NewReplacer("元", "", "¥", "", "￥", "", " ", "", "/人", "")
)

// ParsePriceRange derives (low, high) from a ticket price cell. Marker text
// is checked before the free marker, so "免费(酒店另计)" stays null.
func ParsePriceRange(s string) Range {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}
	}
	for _, m := range unpricedMarkers {
		if strings.Contains(s, m) {
			return Range{}
		}
	}
	for _, m := range freeMarkers {
		if strings.Contains(s, m) {
			return newRange(0, 0)
		}
	}

	s = currencyTrimmer.Replace(s)
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return Range{}
		}
		low, errLow := strconv.ParseFloat(parts[0], 64)
		high, errHigh := strconv.ParseFloat(parts[1], 64)
		if errLow != nil || errHigh != nil || !finite(low) || !finite(high) || low > high {
			return Range{}
		}
		return newRange(low, high)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return Range{}
	}
	return newRange(v, v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseSpend derives the average-spend cell and its low/high band. It goes
// through ParsePriceRange: a single figure such as "¥80" is rounded to whole
// yuan and banded with SpendBand, a "50-100" range is kept as given and a
// free marker yields zero. Anything else leaves all three null.
func ParseSpend(s string) (string, Range) {
	r := ParsePriceRange(s)
	if !r.Valid || r.Low < 0 {
		return "", Range{}
	}
	if !strings.Contains(s, "-") {
		spend := int(math.RoundToEven(r.Low))
		return strconv.Itoa(spend), SpendBand(spend)
	}
	low, high := r.Cells()
	return low + "-" + high, r
}

const (
	spendLowFactor  = 0.8
	spendHighFactor = 1.8
)

// SpendBand is the displayed low/high band around an average spend.
func SpendBand(spend int) Range {
	return newRange(
		math.RoundToEven(float64(spend)*spendLowFactor),
		math.RoundToEven(float64(spend)*spendHighFactor),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
