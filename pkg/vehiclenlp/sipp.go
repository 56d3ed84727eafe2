package vehiclenlp

import (
	"fmt"
	"strings"
)

// SIPP is a decoded four-letter ACRISS vehicle code such as "CDMR".
type SIPP struct {
	Code            string
	Category        string // e.g. "Compact"
	BodyType        string // e.g. "4-5 Door"
	Transmission    string // "Manual" or "Automatic"
	Drive           string // "Unspecified", "4WD" or "AWD"
	Fuel            string // e.g. "Diesel"
	AirConditioning bool
}

// Electric reports whether the fuel position denotes a battery electric car.
func (s SIPP) Electric() bool { return s.Fuel == "Electric" || s.Fuel == "Electric Plus" }

var sippCategory = map[byte]string{
	'M': "Mini", 'N': "Mini Elite",
	'E': "Economy", 'H': "Economy Elite",
	'C': "Compact", 'D': "Compact Elite",
	'I': "Intermediate", 'J': "Intermediate Elite",
	'S': "Standard", 'R': "Standard Elite",
	'F': "Fullsize", 'G': "Fullsize Elite",
	'P': "Premium", 'U': "Premium Elite",
	'L': "Luxury", 'W': "Luxury Elite",
	'O': "Oversize", 'X': "Special",
}

var sippBody = map[byte]string{
	'B': "2-3 Door", 'C': "2/4 Door", 'D': "4-5 Door",
	'W': "Wagon/Estate", 'V': "Passenger Van", 'L': "Limousine/Sedan",
	'S': "Sport", 'T': "Convertible", 'F': "SUV", 'J': "Open Air All Terrain",
	'X': "Special", 'P': "Pick up (single/extended cab) 2 door", 'Q': "Pick up (double cab) 4 door",
	'Z': "Special Offer Car", 'E': "Coupe", 'M': "Monospace", 'R': "Recreational Vehicle",
	'H': "Motor Home", 'Y': "2 Wheel Vehicle", 'N': "Roadster", 'G': "Crossover",
	'K': "Commercial Van/Truck",
}

var sippDrive = map[byte][2]string{
	'M': {"Manual", "Unspecified"},
	'N': {"Manual", "4WD"},
	'C': {"Manual", "AWD"},
	'A': {"Automatic", "Unspecified"},
	'B': {"Automatic", "4WD"},
	'D': {"Automatic", "AWD"},
}

type fuelAir struct {
	fuel string
	ac   bool
}

var sippFuel = map[byte]fuelAir{
	'R': {"Unspecified", true}, 'N': {"Unspecified", false},
	'D': {"Diesel", true}, 'Q': {"Diesel", false},
	'H': {"Hybrid", true}, 'I': {"Plug-in Hybrid", true},
	'E': {"Electric", true}, 'C': {"Electric Plus", true},
	'L': {"LPG/Compressed Gas", true}, 'S': {"LPG/Compressed Gas", false},
	'A': {"Hydrogen", true}, 'B': {"Hydrogen", false},
	'M': {"Multi Fuel", true}, 'F': {"Multi Fuel", false},
	'V': {"Petrol", true}, 'Z': {"Petrol", false},
	'U': {"Ethanol", true}, 'X': {"Ethanol", false},
}

// DecodeSIPP decodes an ACRISS code. Codes are case-insensitive and must be
// exactly four letters with every position known.
func DecodeSIPP(code string) (SIPP, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 4 {
		return SIPP{}, fmt.Errorf("vehiclenlp: sipp %q: want 4 letters", code)
	}
	cat, ok := sippCategory[c[0]]
	if !ok {
		return SIPP{}, fmt.Errorf("vehiclenlp: sipp %q: unknown category %q", code, c[0])
	}
	body, ok := sippBody[c[1]]
	if !ok {
		return SIPP{}, fmt.Errorf("vehiclenlp: sipp %q: unknown body type %q", code, c[1])
	}
	drive, ok := sippDrive[c[2]]
	if !ok {
		return SIPP{}, fmt.Errorf("vehiclenlp: sipp %q: unknown transmission %q", code, c[2])
	}
	fuel, ok := sippFuel[c[3]]
	if !ok {
		return SIPP{}, fmt.Errorf("vehiclenlp: sipp %q: unknown fuel %q", code, c[3])
	}
	return SIPP{
		Code:            c,
		Category:        cat,
		BodyType:        body,
		Transmission:    drive[0],
		Drive:           drive[1],
		Fuel:            fuel.fuel,
		AirConditioning: fuel.ac,
	}, nil
}

// Category returns the ACRISS category name for code, or "" when the code
// does not decode.
func Category(code string) string {
	s, err := DecodeSIPP(code)
	if err != nil {
		return ""
	}
	return s.Category
}
