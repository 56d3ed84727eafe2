package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/WessleyAI/rentscout/engine/domain"
)

// CSVHeader is the column layout of WriteCSV.
var CSVHeader = []string{
	"Rank", "Pickup", "Return", "Days", "Total Price", "Price/Day", "Currency",
	"Car Name", "Car Group", "SIPP", "Type", "Passengers", "Luggage",
	"Transmission", "Fuel", "Prepaid", "Rate Code", "EV", "Status",
}

// WriteJSON writes rows as an indented JSON array, in the given order.
func WriteJSON(w io.Writer, rows []domain.ResultRow) error {
	if rows == nil {
		rows = []domain.ResultRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("report: write json: %w", err)
	}
	return nil
}

// WriteCSV writes the priced rows of rows. Rank is the row's 1-based
// position in rows, which callers pass sorted.
func WriteCSV(w io.Writer, rows []domain.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	for i, r := range rows {
		if !r.Priced() {
			continue
		}
		status := "N/A"
		if r.Status != 0 {
			status = strconv.Itoa(r.Status)
		}
		rec := []string{
			strconv.Itoa(i + 1),
			r.Pickup,
			r.Return,
			strconv.Itoa(r.Days),
			strconv.FormatFloat(*r.TotalPrice, 'f', 2, 64),
			strconv.FormatFloat(*r.PricePerDay, 'f', 2, 64),
			r.Currency,
			r.CarName,
			r.CarGroup,
			r.SIPP,
			r.CarType,
			r.Passengers,
			r.Luggage,
			r.Transmission,
			r.Fuel,
			yesNo(r.Prepaid),
			r.RateCode,
			yesNo(r.Electric),
			status,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}
