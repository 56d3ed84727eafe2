// Package report ranks search results and renders them as markdown, JSON
// and CSV.
package report

import (
	"math"
	"sort"

	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/pkg/fn"
)

// TopN is how many priced rows the report lists.
const TopN = 20

// MixedCurrency labels statistics over rows priced in several currencies.
const MixedCurrency = "mixed"

// Report is the ranked view of one run.
type Report struct {
	Rows  []domain.ResultRow `json:"rows"` // priced ascending by price/day, then unpriced
	Stats Stats              `json:"stats"`
	Best  *domain.ResultRow  `json:"best,omitempty"`
	Top   []domain.ResultRow `json:"top"`
}

// Stats summarizes a run. Priced is nil when no row has a price.
type Stats struct {
	Total        int         `json:"total"`
	WithPrice    int         `json:"with_price"`
	WithoutPrice int         `json:"without_price"`
	Priced       *PriceStats `json:"priced,omitempty"`
}

// PriceStats aggregates priced rows only.
type PriceStats struct {
	Currency       string  `json:"currency"`
	AvgTotal       float64 `json:"avg_total"`
	AvgPerDay      float64 `json:"avg_per_day"`
	MinTotal       float64 `json:"min_total"`
	MaxTotal       float64 `json:"max_total"`
	MinPerDay      float64 `json:"min_per_day"`
	MaxPerDay      float64 `json:"max_per_day"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Sort returns a copy of rows with priced rows ascending by price per day
// and unpriced rows after them. The sort is stable, so equal prices and
// unpriced rows keep their input order.
func Sort(rows []domain.ResultRow) []domain.ResultRow {
	out := append([]domain.ResultRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Priced() && b.Priced():
			return *a.PricePerDay < *b.PricePerDay
		case a.Priced():
			return true
		default:
			return false
		}
	})
	return out
}

// Summarize ranks rows and computes statistics. The input is not modified.
func Summarize(rows []domain.ResultRow) Report {
	sorted := Sort(rows)
	priced := fn.Filter(sorted, domain.ResultRow.Priced)

	r := Report{
		Rows: sorted,
		Stats: Stats{
			Total:        len(rows),
			WithPrice:    len(priced),
			WithoutPrice: len(rows) - len(priced),
			Priced:       priceStats(priced),
		},
		Top: priced[:min(TopN, len(priced))],
	}
	if len(priced) > 0 {
		best := priced[0]
		r.Best = &best
	}
	return r
}

func priceStats(priced []domain.ResultRow) *PriceStats {
	if len(priced) == 0 {
		return nil
	}
	totals := fn.Map(priced, func(r domain.ResultRow) float64 { return *r.TotalPrice })
	perDay := fn.Map(priced, func(r domain.ResultRow) float64 { return *r.PricePerDay })

	s := &PriceStats{
		Currency:  currencyLabel(priced),
		AvgTotal:  domain.RoundCents(mean(totals)),
		AvgPerDay: domain.RoundCents(mean(perDay)),
		MinTotal:  slicesMin(totals),
		MaxTotal:  slicesMax(totals),
		MinPerDay: slicesMin(perDay),
		MaxPerDay: slicesMax(perDay),
	}
	s.Savings = domain.RoundCents(s.MaxTotal - s.MinTotal)
	if s.MaxTotal > 0 {
		s.SavingsPercent = math.Round(s.Savings/s.MaxTotal*1000) / 10
	}
	return s
}

func currencyLabel(priced []domain.ResultRow) string {
	cs := fn.Unique(fn.Map(priced, func(r domain.ResultRow) string { return r.Currency }))
	if len(cs) == 1 {
		return cs[0]
	}
	return MixedCurrency
}

func mean(xs []float64) float64 {
	return fn.Reduce(xs, 0.0, func(acc, x float64) float64 { return acc + x }) / float64(len(xs))
}

func slicesMin(xs []float64) float64 {
	return fn.Reduce(xs[1:], xs[0], math.Min)
}

func slicesMax(xs []float64) float64 {
	return fn.Reduce(xs[1:], xs[0], math.Max)
}
