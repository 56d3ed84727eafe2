package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/WessleyAI/rentscout/engine/domain"
)

func combo(day, days int) domain.DateCombination {
	p := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	return domain.DateCombination{Pickup: p, Return: p.AddDate(0, 0, days), Days: days}
}

func priced(day, days int, total float64, name string) domain.ResultRow {
	return domain.PricedRow(combo(day, days), domain.Offer{
		Price: total, Currency: "CHF", CarName: name, CarGroup: "C", SIPP: "CDMR",
	}, 200)
}

func failed(day int) domain.ResultRow {
	return domain.ErrorRow(combo(day, 3), "CHF", domain.HTTPFailure(500, "Internal Server Error", nil, false))
}

func TestSummarize_Savings(t *testing.T) {
	rows := []domain.ResultRow{
		priced(1, 1, 200, "A"),
		priced(2, 1, 120, "B"),
		priced(3, 1, 150, "C"),
	}
	r := Summarize(rows)

	p := r.Stats.Priced
	if p == nil {
		t.Fatal("expected price stats")
	}
	if p.Savings != 80 || p.SavingsPercent != 40 {
		t.Fatalf("expected 80.00 (40.0%%), got %.2f (%.1f%%)", p.Savings, p.SavingsPercent)
	}
	if p.MinTotal != 120 || p.MaxTotal != 200 || p.AvgTotal != 156.67 || p.Currency != "CHF" {
		t.Fatalf("unexpected stats: %+v", p)
	}
	md := RenderMarkdown(r)
	if !strings.Contains(md, "- **Total savings potential:** 80.00 CHF (40.0%)") {
		t.Fatalf("savings line missing:\n%s", md)
	}
}

func TestSummarize_Order(t *testing.T) {
	rows := []domain.ResultRow{
		failed(1),
		priced(2, 2, 100, "tie-first"), // 50/day
		priced(3, 4, 120, "cheapest"),  // 30/day
		failed(4),
		priced(5, 1, 50, "tie-second"), // 50/day
	}
	r := Summarize(rows)

	var got []string
	for _, row := range r.Rows {
		got = append(got, row.CarName+"@"+row.Pickup)
	}
	want := []string{
		"cheapest@03/03/2026",
		"tie-first@02/03/2026",
		"tie-second@05/03/2026",
		"N/A@01/03/2026",
		"N/A@04/03/2026",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
	if r.Best == nil || r.Best.CarName != "cheapest" {
		t.Fatalf("unexpected best: %+v", r.Best)
	}
	if r.Stats.Total != 5 || r.Stats.WithPrice != 3 || r.Stats.WithoutPrice != 2 {
		t.Fatalf("unexpected counts: %+v", r.Stats)
	}
	if rows[0].CarName != "N/A" || rows[2].CarName != "cheapest" {
		t.Fatal("input must not be reordered")
	}
}

func TestSummarize_NoPrices(t *testing.T) {
	r := Summarize([]domain.ResultRow{failed(1), failed(2)})
	if r.Stats.Priced != nil || r.Best != nil || len(r.Top) != 0 {
		t.Fatalf("expected no price stats, got %+v", r)
	}
	md := RenderMarkdown(r)
	if strings.Contains(md, "BEST DEAL") || strings.Contains(md, "Average") {
		t.Fatalf("no-price report should omit price sections:\n%s", md)
	}
	if !strings.Contains(md, "- **Without prices:** 2") {
		t.Fatalf("missing counts:\n%s", md)
	}

	empty := Summarize(nil)
	if empty.Stats.Total != 0 || empty.Stats.Priced != nil {
		t.Fatalf("unexpected stats for empty input: %+v", empty.Stats)
	}
}

func TestSummarize_MixedCurrency(t *testing.T) {
	eur := domain.PricedRow(combo(1, 2), domain.Offer{Price: 90, Currency: "EUR", CarName: "X"}, 200)
	r := Summarize([]domain.ResultRow{priced(2, 2, 100, "Y"), eur})
	if r.Stats.Priced.Currency != MixedCurrency {
		t.Fatalf("expected mixed, got %s", r.Stats.Priced.Currency)
	}
}

func TestRenderMarkdown_TopAndTruncation(t *testing.T) {
	var rows []domain.ResultRow
	for i := 1; i <= 25; i++ {
		rows = append(rows, priced(1, 1, float64(100+i), fmt.Sprintf("Car %02d", i)))
	}
	long := priced(2, 1, 50, "Mercedes-Benz E-Class Estate Automatic")
	long.Electric = true
	long.Discount = "10%"
	rows = append(rows, long)

	r := Summarize(rows)
	if len(r.Top) != TopN {
		t.Fatalf("expected %d top rows, got %d", TopN, len(r.Top))
	}
	md := RenderMarkdown(r)

	if !strings.Contains(md, "| 1 | 02/03/2026 | 03/03/2026 | 1 | **50.00 CHF** | **50.00** | ⚡Mercedes-Benz E-Class Est... | C | No |") {
		t.Fatalf("first table row wrong:\n%s", md)
	}
	if !strings.Contains(md, "**Discount:** 10%") || !strings.Contains(md, "**Car:** ⚡Mercedes-Benz E-Class Estate Automatic (C)") {
		t.Fatalf("best deal block wrong:\n%s", md)
	}
	if strings.Contains(md, "Car 20 |") || !strings.Contains(md, "Car 19 |") {
		t.Fatal("table should list exactly the 20 cheapest")
	}
	if !strings.HasSuffix(md, "_⚡ = Electric Vehicle_\n") {
		t.Fatal("missing legend")
	}
}

func TestShortName(t *testing.T) {
	if got := shortName("Škoda Octavia Combi Automatik"); got != "Škoda Octavia Combi Autom..." {
		t.Fatalf("got %q", got)
	}
	exact := strings.Repeat("x", 25)
	if shortName(exact) != exact {
		t.Fatal("25 runes should not be truncated")
	}
}

func TestWriteCSV(t *testing.T) {
	cheap := priced(1, 2, 80, `Fiat 500 "Dolcevita", or similar`)
	cheap.Status = 0
	cheap.Electric = true
	r := Summarize([]domain.ResultRow{failed(3), priced(2, 2, 100, "VW Golf"), cheap})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, r.Rows); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected header and 2 priced rows, got %d records", len(recs))
	}
	if strings.Join(recs[0], "|") != strings.Join(CSVHeader, "|") {
		t.Fatalf("header: %v", recs[0])
	}
	first := recs[1]
	if first[0] != "1" || first[4] != "80.00" || first[5] != "40.00" || first[7] != `Fiat 500 "Dolcevita", or similar` {
		t.Fatalf("first row: %v", first)
	}
	if first[17] != "Yes" || first[18] != "N/A" || first[15] != "No" {
		t.Fatalf("flags: %v", first)
	}
	if recs[2][0] != "2" || recs[2][18] != "200" {
		t.Fatalf("second row: %v", recs[2])
	}
}

func TestWriteJSON(t *testing.T) {
	rows := []domain.ResultRow{failed(1), priced(2, 2, 100, "VW Golf")}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, rows); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Fatal("expected indented output")
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0]["total_price"] != nil || got[1]["car_name"] != "VW Golf" {
		t.Fatalf("unexpected json: %v", got)
	}
	if got[0]["error"].(map[string]any)["kind"] != "http" {
		t.Fatalf("error not exported: %v", got[0])
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil || strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("nil rows should encode as [], got %q", buf.String())
	}
}
