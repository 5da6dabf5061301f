package tui

import (
	"strings"

	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/updater"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

func parse(n models.Numeric) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// USD formats a value as US dollars with cents, "-" when unknown.
func USD(n models.Numeric) string {
	f, ok := parse(n)
	if !ok {
		return "-"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + "$" + printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Percent formats a 24h change given in percent points, e.g. "2.35%".
func Percent(n models.Numeric) string {
	f, ok := parse(n)
	if !ok {
		return "-"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2))) + "%"
}

func Grouped(n models.Numeric) string {
	f, ok := parse(n)
	if !ok {
		return "-"
	}
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(0)))
}

// MaxSupply reports "Unlimited" for coins without a supply cap.
func MaxSupply(n models.Numeric, symbol string) string {
	if strings.TrimSpace(n.String()) == "" {
		return "Unlimited"
	}
	return Grouped(n) + " " + symbol
}

// SupplyRatio is circulating supply as a share of max supply, "N/A" for
// uncapped coins.
func SupplyRatio(supply, max models.Numeric) string {
	s, ok := parse(supply)
	m, okMax := parse(max)
	if !ok || !okMax || m == 0 {
		return "N/A"
	}
	return printer.Sprint(number.Decimal(s/m*100, number.MaxFractionDigits(2))) + "%"
}

func positive(n models.Numeric) bool {
	f, ok := parse(n)
	return ok && f > 0
}

// Sparkline draws the most recent points that fit in width, scaled to r.
func Sparkline(points []models.PricePoint, r updater.Range, width int) string {
	if width <= 0 || len(points) == 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := r.Max - r.Min
	var b strings.Builder
	for _, p := range points {
		f, ok := parse(models.Numeric(p.PriceUsd))
		if !ok {
			b.WriteRune(' ')
			continue
		}
		idx := len(sparkBlocks) / 2
		if span > 0 {
			idx = int((f - r.Min) / span * float64(len(sparkBlocks)-1))
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
