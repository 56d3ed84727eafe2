// Package combos enumerates the (pickup, return) date pairs a search tests.
package combos

import (
	"fmt"
	"time"

	"github.com/WessleyAI/rentscout/engine/domain"
)

// Generate parses the four dd/mm/yyyy bounds and enumerates every valid
// combination. A malformed bound fails with a *domain.ParseError.
func Generate(pickupStart, pickupEnd, returnStart, returnEnd string, minDays int) ([]domain.DateCombination, error) {
	bounds := [4]time.Time{}
	for i, s := range []string{pickupStart, pickupEnd, returnStart, returnEnd} {
		t, err := domain.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("combos: %w", err)
		}
		bounds[i] = t
	}
	return GenerateDates(bounds[0], bounds[1], bounds[2], bounds[3], minDays), nil
}

// GenerateDates enumerates combinations with pickup as the outer loop and
// return as the inner loop, both ascending and inclusive. A pair is kept iff
// the return is after the pickup and the trip lasts at least minDays.
// Empty or inverted ranges yield no combinations.
func GenerateDates(pickupStart, pickupEnd, returnStart, returnEnd time.Time, minDays int) []domain.DateCombination {
	pickupStart, pickupEnd = domain.Day(pickupStart), domain.Day(pickupEnd)
	returnStart, returnEnd = domain.Day(returnStart), domain.Day(returnEnd)

	out := []domain.DateCombination{}
	for p := pickupStart; !p.After(pickupEnd); p = p.AddDate(0, 0, 1) {
		for r := returnStart; !r.After(returnEnd); r = r.AddDate(0, 0, 1) {
			if !r.After(p) {
				continue
			}
			days := domain.DaysBetween(p, r)
			if days < minDays {
				continue
			}
			out = append(out, domain.DateCombination{Pickup: p, Return: r, Days: days})
		}
	}
	return out
}

