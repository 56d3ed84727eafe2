package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// HH:MM on a 24-hour clock.
var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidateConfig checks a SearchConfig before a run starts. Date ranges are
// checked separately by the generator, which reports ParseError.
func ValidateConfig(c SearchConfig) error {
	if c.MinDays < 0 {
		return NewValidationError("min_days", fmt.Sprintf("%d", c.MinDays), ErrMinDays)
	}
	if c.Delay < 0 {
		return NewValidationError("delay", c.Delay.String(), ErrNegativeDelay)
	}

	if strings.TrimSpace(c.Endpoint) == "" {
		return NewValidationError("endpoint", c.Endpoint, ErrMissingField)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError("endpoint", c.Endpoint, ErrInvalidAddress)
	}

	if strings.TrimSpace(c.PickupLocation) == "" {
		return NewValidationError("pickup_location", c.PickupLocation, ErrMissingField)
	}

	for field, v := range map[string]string{"pickup_time": c.PickupTime, "return_time": c.ReturnTime} {
		if !clockRegex.MatchString(v) {
			return NewValidationError(field, v, ErrInvalidTime)
		}
	}
	return nil
}
