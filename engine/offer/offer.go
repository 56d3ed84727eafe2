// Package offer finds the cheapest bookable quote in a pricing response.
package offer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/pkg/vehiclenlp"
)

// DefaultCurrency is assumed when neither the quote nor Options name one.
const DefaultCurrency = "CHF"

// Options tunes extraction.
type Options struct {
	DefaultCurrency string
}

// ExtractCheapest walks data.model.vehicles[].quotes[] and returns the
// lowest-priced valid quote, or nil if there is none. Ties keep the first
// quote encountered. Unexpected shapes are skipped, never fatal.
func ExtractCheapest(body any, opts Options) *domain.Offer {
	vehicles, ok := path(body, "data", "model", "vehicles").([]any)
	if !ok {
		return nil
	}

	var cheapest *domain.Offer
	for _, rawVehicle := range vehicles {
		vehicle, ok := rawVehicle.(map[string]any)
		if !ok {
			continue
		}
		quotes, ok := vehicle["quotes"].([]any)
		if !ok {
			continue
		}
		for _, rawQuote := range quotes {
			quote, ok := rawQuote.(map[string]any)
			if !ok || flag(quote["soldout"]) || flag(quote["unavailable"]) {
				continue
			}
			price, ok := parsePrice(quote["price"])
			if !ok || price <= 0 {
				continue
			}
			if cheapest == nil || price < cheapest.Price {
				cheapest = build(vehicle, quote, price, opts)
			}
		}
	}
	return cheapest
}

func build(vehicle, quote map[string]any, price float64, opts Options) *domain.Offer {
	o := &domain.Offer{
		Price:        price,
		Currency:     text(quote["currency"]),
		CarName:      text(vehicle["name"]),
		CarGroup:     text(vehicle["carGroup"]),
		SIPP:         text(vehicle["sipp"]),
		CarType:      text(vehicle["carTypeDisplay"]),
		Passengers:   text(vehicle["passengers"]),
		Luggage:      text(vehicle["luggage"]),
		Transmission: text(vehicle["transmission"]),
		Fuel:         text(vehicle["fuel"]),
		Electric:     flag(vehicle["ev"]),
		Prepaid:      flag(quote["prepaid"]),
		RateCode:     text(quote["rateCode"]),
		Discount:     text(quote["discountAmount"]),
	}
	if o.Currency == "" {
		o.Currency = opts.DefaultCurrency
		if o.Currency == "" {
			o.Currency = DefaultCurrency
		}
		o.CurrencyDefaulted = true
	}
	if o.CarName == "" {
		o.CarName = "Unknown"
	}
	if o.CarGroup == "" {
		o.CarGroup = "N/A"
	}
	o.Make = vehiclenlp.ExtractMake(o.CarName)
	o.Category = vehiclenlp.Category(o.SIPP)
	if _, ok := vehicle["ev"]; !ok {
		if s, err := vehiclenlp.DecodeSIPP(o.SIPP); err == nil {
			o.Electric = s.Electric()
		}
	}
	return o
}

func path(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

// numericPrefix matches the leading number of strings like "123.40 CHF".
var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

func parsePrice(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, true
	case json.Number:
		f, err := p.Float64()
		return f, err == nil
	case string:
		m := numericPrefix.FindString(strings.TrimSpace(p))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	}
	return 0, false
}

// flag treats 1 and true as set.
func flag(v any) bool {
	switch f := v.(type) {
	case bool:
		return f
	case float64:
		return f == 1
	case json.Number:
		return f.String() == "1"
	case string:
		return f == "1" || strings.EqualFold(f, "true")
	}
	return false
}

// text renders a scalar field. Zero values render as "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		if t.String() == "0" {
			return ""
		}
		return t.String()
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}
