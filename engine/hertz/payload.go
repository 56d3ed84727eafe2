// Package hertz talks to the rental company's reservation pricing endpoint.
package hertz

import (
	"fmt"

	"github.com/WessleyAI/rentscout/engine/domain"
)

// DefaultEndpoint is the public reservation pricing endpoint.
const DefaultEndpoint = "https://www.hertz.com/rentacar/rest/hertz/v2/reservations/makeReservation"

// Payload is the JSON body of a pricing request.
type Payload struct {
	Metadata  Metadata  `json:"metadata"`
	Itinerary Itinerary `json:"itinerary"`
}

type Metadata struct {
	IsReviewModify bool `json:"isReviewModify"`
}

// Itinerary carries the search parameters. Fields the pricing endpoint
// expects but this tool never sets are sent as empty values.
type Itinerary struct {
	Age                   string `json:"age"`
	PickupLocationCode    string `json:"pickupLocationCode"`
	PickupLocationName    string `json:"pickupLocationName"`
	ReturnLocationCode    string `json:"returnLocationCode"`
	ReturnLocationName    string `json:"returnLocationName"`
	PickupDate            string `json:"pickupDate"`
	PickupTime            string `json:"pickupTime"`
	MilitaryClock         int    `json:"militaryClock"`
	ReturnDate            string `json:"returnDate"`
	ReturnTime            string `json:"returnTime"`
	VehicleType           string `json:"vehicleType"`
	CDP                   string `json:"cdp"`
	PC                    string `json:"pc"`
	RQ                    string `json:"rq"`
	CV                    string `json:"cv"`
	IT                    string `json:"it"`
	UseRewardPoints       string `json:"useRewardPoints"`
	KeepOriginalRateQuote string `json:"keepOriginalRateQuote"`
	FromLocationSearch    bool   `json:"fromLocationSearch"`
	CorporateRate         string `json:"corporateRate"`
	LastName              string `json:"lastName"`
	MemberNumber          string `json:"memberNumber"`
	AffiliateCallCount    int    `json:"affiliateCallCount"`
	AffiliateMemberID     string `json:"affiliateMemberID"`
	AffiliateMemberJoin   string `json:"affiliateMemberJoin"`
	CompanyID             string `json:"companyId"`
	PartnerCDPVerified    int    `json:"partnerCDPVerified"`
	CorpRate              string `json:"corpRate"`
	UseProfileCDP         string `json:"useProfileCDP"`
	OfficialTravel        string `json:"officialTravel"`
}

// Builder builds pricing payloads from a search config and a combination.
type Builder struct{}

// Build returns the Payload for one combination. A return location left
// empty means return to the pickup location.
func (Builder) Build(cfg domain.SearchConfig, c domain.DateCombination) (any, error) {
	if cfg.PickupLocation == "" {
		return nil, fmt.Errorf("hertz: build payload: %w", domain.NewValidationError("pickup_location", "", domain.ErrMissingField))
	}
	if c.Days <= 0 || !c.Return.After(c.Pickup) {
		return nil, fmt.Errorf("hertz: build payload: invalid combination %s", c)
	}
	return Payload{
		Itinerary: Itinerary{
			Age:                cfg.Age,
			PickupLocationCode: cfg.PickupLocation,
			PickupLocationName: cfg.PickupLocationName,
			ReturnLocationCode: cfg.ReturnLocation,
			PickupDate:         c.PickupString(),
			PickupTime:         cfg.PickupTime,
			MilitaryClock:      1,
			ReturnDate:         c.ReturnString(),
			ReturnTime:         cfg.ReturnTime,
			CDP:                cfg.CDP,
			RQ:                 cfg.RateQualifier,
			UseRewardPoints:    "N",
			OfficialTravel:     "off",
		},
	}, nil
}
