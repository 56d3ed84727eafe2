package report

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/rentscout/engine/domain"
)

const nameWidth = 25

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func evMark(r domain.ResultRow) string {
	if r.Electric {
		return "⚡"
	}
	return ""
}

// shortName truncates to nameWidth runes plus "...".
func shortName(s string) string {
	rs := []rune(s)
	if len(rs) <= nameWidth {
		return s
	}
	return string(rs[:nameWidth]) + "..."
}

// RenderMarkdown renders the best deal, the top table and statistics.
func RenderMarkdown(r Report) string {
	var b strings.Builder
	b.WriteString("\n# 🚗 HERTZ CAR RENTAL PRICE RESULTS\n\n")

	if best := r.Best; best != nil {
		b.WriteString("## 🏆 BEST DEAL\n\n")
		fmt.Fprintf(&b, "**%s → %s** (%d days)  \n", best.Pickup, best.Return, best.Days)
		fmt.Fprintf(&b, "**%.2f %s** total | **%.2f %s/day**  \n", *best.TotalPrice, best.Currency, *best.PricePerDay, best.Currency)
		fmt.Fprintf(&b, "**Car:** %s%s (%s)  \n", evMark(*best), best.CarName, best.CarGroup)
		if best.Make != "" || best.Category != "" {
			fmt.Fprintf(&b, "**Make:** %s | **Category:** %s  \n", orNA(best.Make), orNA(best.Category))
		}
		fmt.Fprintf(&b, "**Type:** %s  \n", best.CarType)
		fmt.Fprintf(&b, "**Passengers:** %s | **Luggage:** %s  \n", best.Passengers, best.Luggage)
		fmt.Fprintf(&b, "**Transmission:** %s | **Fuel:** %s  \n", best.Transmission, best.Fuel)
		fmt.Fprintf(&b, "**Prepaid:** %s | **Rate Code:** %s  \n", yesNo(best.Prepaid), best.RateCode)
		if best.Discount != "" {
			fmt.Fprintf(&b, "**Discount:** %s  \n", best.Discount)
		}
		b.WriteString("\n---\n\n")
	}

	fmt.Fprintf(&b, "## 📊 TOP %d CHEAPEST OPTIONS (by price per day)\n\n", TopN)
	b.WriteString("| Rank | Pickup | Return | Days | Total Price | Price/Day | Car | Group | Prepaid |\n")
	b.WriteString("|------|--------|--------|------|-------------|-----------|-----|-------|----------|\n")
	for i, row := range r.Top {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | **%.2f %s** | **%.2f** | %s%s | %s | %s |\n",
			i+1, row.Pickup, row.Return, row.Days,
			*row.TotalPrice, row.Currency, *row.PricePerDay,
			evMark(row), shortName(row.CarName), row.CarGroup, yesNo(row.Prepaid))
	}
	b.WriteString("\n---\n\n")

	s := r.Stats
	b.WriteString("## 📈 STATISTICS\n\n")
	fmt.Fprintf(&b, "- **Total searches:** %d\n", s.Total)
	fmt.Fprintf(&b, "- **With prices:** %d\n", s.WithPrice)
	fmt.Fprintf(&b, "- **Without prices:** %d\n", s.WithoutPrice)
	if p := s.Priced; p != nil {
		fmt.Fprintf(&b, "- **Average total price:** %.2f %s\n", p.AvgTotal, p.Currency)
		fmt.Fprintf(&b, "- **Average price/day:** %.2f %s\n", p.AvgPerDay, p.Currency)
		fmt.Fprintf(&b, "- **Highest total:** %.2f %s\n", p.MaxTotal, p.Currency)
		fmt.Fprintf(&b, "- **Lowest total:** %.2f %s\n", p.MinTotal, p.Currency)
		fmt.Fprintf(&b, "- **Highest price/day:** %.2f %s\n", p.MaxPerDay, p.Currency)
		fmt.Fprintf(&b, "- **Lowest price/day:** %.2f %s\n", p.MinPerDay, p.Currency)
		fmt.Fprintf(&b, "- **Total savings potential:** %.2f %s (%.1f%%)\n", p.Savings, p.Currency, p.SavingsPercent)
	}

	b.WriteString("\n---\n\n")
	b.WriteString("_⚡ = Electric Vehicle_\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
