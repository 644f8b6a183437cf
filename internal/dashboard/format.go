package dashboard

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salesdash/internal/models"
)

const starGlyph = "⭐"

// FormatCurrency renders v as a thousands-grouped integer, truncating toward
// zero: 1234.99 becomes "1,234".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return message.NewPrinter(language.English).Sprintf("%d", int64(v))
}

// FormatRating renders a rating with one decimal.
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func StarGlyphs(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(starGlyph, n)
}

// CardsFor builds the display strings of the three summary cards.
func CardsFor(s models.Summary) models.Cards {
	return models.Cards{
		TotalSales:    "US $" + FormatCurrency(s.TotalSales),
		AverageSales:  "US $" + FormatCurrency(s.MeanSale),
		AverageRating: FormatRating(s.RatingRounded),
		Stars:         StarGlyphs(s.Stars),
	}
}
