// Package domain defines the core types shared by the rental price search
// engine: date combinations, search configuration, offers and result rows.
package domain

import "time"

// DateLayout is the textual form of calendar dates (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// DateCombination is one (pickup, return) pair under test.
type DateCombination struct {
	Pickup time.Time `json:"pickup"`
	Return time.Time `json:"return"`
	Days   int       `json:"days"`
}

// PickupString returns the pickup date as dd/mm/yyyy.
func (c DateCombination) PickupString() string { return FormatDate(c.Pickup) }

// ReturnString returns the return date as dd/mm/yyyy.
func (c DateCombination) ReturnString() string { return FormatDate(c.Return) }

func (c DateCombination) String() string {
	return c.PickupString() + " → " + c.ReturnString()
}

// SearchConfig holds everything needed to run one search. It is loaded once
// and never mutated while a run is in progress.
type SearchConfig struct {
	PickupStart string `json:"pickup_start"`
	PickupEnd   string `json:"pickup_end"`
	ReturnStart string `json:"return_start"`
	ReturnEnd   string `json:"return_end"`

	MinDays int           `json:"min_days"`
	Delay   time.Duration `json:"delay"`

	Endpoint           string `json:"endpoint"`
	PickupLocation     string `json:"pickup_location"`
	PickupLocationName string `json:"pickup_location_name"`
	ReturnLocation     string `json:"return_location,omitempty"`
	PickupTime         string `json:"pickup_time"`
	ReturnTime         string `json:"return_time"`
	Age                string `json:"age"`
	CDP                string `json:"cdp,omitempty"`
	RateQualifier      string `json:"rq,omitempty"`

	// DefaultCurrency is used when a quote carries no currency code.
	DefaultCurrency string `json:"default_currency"`
}

// Offer is the cheapest valid quote found in one pricing response.
type Offer struct {
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	CurrencyDefaulted bool    `json:"currency_defaulted,omitempty"`

	CarName      string `json:"car_name"`
	CarGroup     string `json:"car_group"`
	SIPP         string `json:"sipp"`
	CarType      string `json:"car_type"`
	Passengers   string `json:"passengers"`
	Luggage      string `json:"luggage"`
	Transmission string `json:"transmission"`
	Fuel         string `json:"fuel"`
	Electric     bool   `json:"electric"`

	Prepaid  bool   `json:"prepaid"`
	RateCode string `json:"rate_code"`
	Discount string `json:"discount,omitempty"`

	// Derived from CarName and SIPP.
	Make     string `json:"make,omitempty"`
	Category string `json:"category,omitempty"`
}

// ResultRow is one record per attempted combination, either priced or
// carrying an error.
type ResultRow struct {
	Pickup string `json:"pickup"`
	Return string `json:"return"`
	Days   int    `json:"days"`

	TotalPrice  *float64 `json:"total_price"`
	PricePerDay *float64 `json:"price_per_day"`
	Currency    string   `json:"currency"`

	CarName      string `json:"car_name"`
	CarGroup     string `json:"car_group,omitempty"`
	SIPP         string `json:"sipp,omitempty"`
	CarType      string `json:"car_type,omitempty"`
	Passengers   string `json:"passengers,omitempty"`
	Luggage      string `json:"luggage,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Fuel         string `json:"fuel,omitempty"`
	Electric     bool   `json:"electric,omitempty"`
	Prepaid      bool   `json:"prepaid,omitempty"`
	RateCode     string `json:"rate_code,omitempty"`
	Discount     string `json:"discount,omitempty"`
	Make         string `json:"make,omitempty"`
	Category     string `json:"category,omitempty"`

	Status     int    `json:"status,omitempty"`
	StatusText string `json:"status_text,omitempty"`

	Error *RowError `json:"error,omitempty"`
}

// Priced reports whether the row carries a price.
func (r ResultRow) Priced() bool { return r.TotalPrice != nil && r.PricePerDay != nil }

// PricedRow builds a priced row from a combination and its cheapest offer.
func PricedRow(c DateCombination, o Offer, status int) ResultRow {
	total := o.Price
	perDay := RoundCents(o.Price / float64(c.Days))
	return ResultRow{
		Pickup:       c.PickupString(),
		Return:       c.ReturnString(),
		Days:         c.Days,
		TotalPrice:   &total,
		PricePerDay:  &perDay,
		Currency:     o.Currency,
		CarName:      o.CarName,
		CarGroup:     o.CarGroup,
		SIPP:         o.SIPP,
		CarType:      o.CarType,
		Passengers:   o.Passengers,
		Luggage:      o.Luggage,
		Transmission: o.Transmission,
		Fuel:         o.Fuel,
		Electric:     o.Electric,
		Prepaid:      o.Prepaid,
		RateCode:     o.RateCode,
		Discount:     o.Discount,
		Make:         o.Make,
		Category:     o.Category,
		Status:       status,
	}
}

// ErrorRow builds an unpriced row carrying e.
func ErrorRow(c DateCombination, currency string, e *RowError) ResultRow {
	row := ResultRow{
		Pickup:   c.PickupString(),
		Return:   c.ReturnString(),
		Days:     c.Days,
		Currency: currency,
		CarName:  "N/A",
		Error:    e,
	}
	if e != nil {
		row.Status = e.Status
		row.StatusText = e.StatusText
	}
	return row
}
