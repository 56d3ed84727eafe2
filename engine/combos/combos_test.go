package combos

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/WessleyAI/rentscout/engine/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_EndToEndExample(t *testing.T) {
	got, err := Generate("01/03/2026", "02/03/2026", "10/03/2026", "10/03/2026", 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 combinations, got %d: %v", len(got), got)
	}

	want := []struct {
		pickup, ret string
		days        int
	}{
		{"01/03/2026", "10/03/2026", 9},
		{"02/03/2026", "10/03/2026", 8},
	}
	for i, w := range want {
		if got[i].PickupString() != w.pickup || got[i].ReturnString() != w.ret || got[i].Days != w.days {
			t.Errorf("combination %d: got %s (%d days), want %s → %s (%d days)",
				i, got[i], got[i].Days, w.pickup, w.ret, w.days)
		}
	}
}

func TestGenerate_ParseError(t *testing.T) {
	_, err := Generate("01/03/2026", "31/02/2026", "10/03/2026", "10/03/2026", 7)
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	var pe *domain.ParseError
	if !errors.As(err, &pe) || pe.Input != "31/02/2026" {
		t.Fatalf("expected ParseError for the bad bound, got %v", err)
	}
}

func TestGenerateDates_SoundAndComplete(t *testing.T) {
	ps, pe := day(2026, 2, 9), day(2026, 2, 19)
	rs, re := day(2026, 2, 15), day(2026, 3, 18)

	for _, minDays := range []int{1, 5, 12, 30} {
		got := GenerateDates(ps, pe, rs, re, minDays)

		seen := make(map[[2]time.Time]bool)
		for _, c := range got {
			if !c.Return.After(c.Pickup) {
				t.Fatalf("minDays=%d: return not after pickup: %s", minDays, c)
			}
			if c.Days < minDays {
				t.Fatalf("minDays=%d: %s has only %d days", minDays, c, c.Days)
			}
			seen[[2]time.Time{c.Pickup, c.Return}] = true
		}

		// Brute-force every pair in range and check nothing valid was dropped.
		expected := 0
		for p := ps; !p.After(pe); p = p.AddDate(0, 0, 1) {
			for r := rs; !r.After(re); r = r.AddDate(0, 0, 1) {
				days := int(r.Sub(p).Hours() / 24)
				if r.After(p) && days >= minDays {
					expected++
					if !seen[[2]time.Time{p, r}] {
						t.Fatalf("minDays=%d: missing %s → %s", minDays, domain.FormatDate(p), domain.FormatDate(r))
					}
				}
			}
		}
		if expected != len(got) {
			t.Fatalf("minDays=%d: expected %d combinations, got %d", minDays, expected, len(got))
		}
	}
}

func TestGenerateDates_Order(t *testing.T) {
	got := GenerateDates(day(2026, 1, 1), day(2026, 1, 3), day(2026, 1, 5), day(2026, 1, 6), 1)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Pickup.Before(prev.Pickup) {
			t.Fatalf("pickup order broken at %d", i)
		}
		if cur.Pickup.Equal(prev.Pickup) && !cur.Return.After(prev.Return) {
			t.Fatalf("return order broken at %d", i)
		}
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(got))
	}
}

func TestGenerateDates_Deterministic(t *testing.T) {
	a := GenerateDates(day(2026, 5, 1), day(2026, 5, 10), day(2026, 5, 8), day(2026, 5, 25), 4)
	b := GenerateDates(day(2026, 5, 1), day(2026, 5, 10), day(2026, 5, 8), day(2026, 5, 25), 4)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different sequences")
	}
}

func TestGenerateDates_EmptyAndInverted(t *testing.T) {
	cases := []struct {
		name           string
		ps, pe, rs, re time.Time
	}{
		{"inverted pickup", day(2026, 3, 5), day(2026, 3, 1), day(2026, 3, 20), day(2026, 3, 25)},
		{"inverted return", day(2026, 3, 1), day(2026, 3, 5), day(2026, 3, 25), day(2026, 3, 20)},
		{"return before pickup", day(2026, 3, 10), day(2026, 3, 12), day(2026, 3, 1), day(2026, 3, 9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateDates(tc.ps, tc.pe, tc.rs, tc.re, 1)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %v", got)
			}
		})
	}
}

func TestGenerateDates_IgnoresTimeOfDay(t *testing.T) {
	p := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	r := time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC)
	got := GenerateDates(p, p, r, r, 7)
	if len(got) != 1 || got[0].Days != 7 {
		t.Fatalf("expected one 7-day combination, got %v", got)
	}
}
