// Package vehiclenlp extracts the make and model from rental fleet display
// names such as "VW Golf or similar" using an alias table and regex patterns.
package vehiclenlp

import (
	"regexp"
	"sort"
	"strings"
)

// VehicleMatch is the make/model pair found in a fleet name.
type VehicleMatch struct {
	Make  string // e.g. "Volkswagen"
	Model string // e.g. "Golf" (empty if unknown)
	Span  string // the matched text fragment
}

// makeAliases maps abbreviations and alternate spellings to canonical makes.
var makeAliases = map[string]string{
	"vw":            "Volkswagen",
	"volkswagen":    "Volkswagen",
	"merc":          "Mercedes-Benz",
	"mercedes":      "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"bmw":           "BMW",
	"mini":          "Mini",
	"audi":          "Audi",
	"skoda":         "Skoda",
	"škoda":         "Skoda",
	"seat":          "Seat",
	"cupra":         "Cupra",
	"opel":          "Opel",
	"vauxhall":      "Vauxhall",
	"peugeot":       "Peugeot",
	"citroen":       "Citroën",
	"citroën":       "Citroën",
	"renault":       "Renault",
	"dacia":         "Dacia",
	"fiat":          "Fiat",
	"jeep":          "Jeep",
	"alfa romeo":    "Alfa Romeo",
	"ford":          "Ford",
	"toyota":        "Toyota",
	"nissan":        "Nissan",
	"mazda":         "Mazda",
	"hyundai":       "Hyundai",
	"kia":           "Kia",
	"volvo":         "Volvo",
	"polestar":      "Polestar",
	"tesla":         "Tesla",
	"mg":            "MG",
	"byd":           "BYD",
	"chevrolet":     "Chevrolet",
	"chevy":         "Chevrolet",
	"land rover":    "Land Rover",
	"range rover":   "Land Rover",
	"jaguar":        "Jaguar",
	"porsche":       "Porsche",
	"suzuki":        "Suzuki",
	"mitsubishi":    "Mitsubishi",
	"honda":         "Honda",
	"lexus":         "Lexus",
	"smart":         "Smart",
}

// makeModels lists the models commonly seen in European rental fleets.
var makeModels = map[string][]string{
	"Volkswagen":    {"Polo", "Golf", "Golf Variant", "T-Roc", "T-Cross", "Tiguan", "Passat", "Passat Variant", "Touran", "Sharan", "Caddy", "Transporter", "ID.3", "ID.4", "ID.5", "ID. Buzz", "Up"},
	"Mercedes-Benz": {"A-Class", "B-Class", "C-Class", "E-Class", "S-Class", "CLA", "GLA", "GLB", "GLC", "GLE", "V-Class", "Vito", "Sprinter", "EQA", "EQB", "EQE"},
	"BMW":           {"1 Series", "2 Series", "3 Series", "5 Series", "X1", "X3", "X5", "i3", "i4", "iX1", "iX3"},
	"Mini":          {"Cooper", "Countryman", "Clubman"},
	"Audi":          {"A1", "A3", "A4", "A4 Avant", "A6", "Q2", "Q3", "Q5", "Q7", "Q4 e-tron", "e-tron"},
	"Skoda":         {"Fabia", "Scala", "Octavia", "Octavia Combi", "Superb", "Kamiq", "Karoq", "Kodiaq", "Enyaq"},
	"Seat":          {"Ibiza", "Leon", "Arona", "Ateca", "Tarraco"},
	"Cupra":         {"Born", "Formentor", "Leon"},
	"Opel":          {"Corsa", "Astra", "Insignia", "Mokka", "Crossland", "Grandland", "Zafira", "Vivaro"},
	"Peugeot":       {"208", "308", "2008", "3008", "5008", "e-208", "e-2008", "Rifter", "Traveller"},
	"Citroën":       {"C3", "C4", "C5 Aircross", "Berlingo", "SpaceTourer"},
	"Renault":       {"Clio", "Captur", "Megane", "Austral", "Arkana", "Zoe", "Kangoo", "Trafic"},
	"Dacia":         {"Sandero", "Duster", "Jogger", "Spring"},
	"Fiat":          {"500", "500X", "Panda", "Tipo", "Doblo", "Ducato"},
	"Jeep":          {"Renegade", "Compass", "Avenger"},
	"Ford":          {"Fiesta", "Focus", "Puma", "Kuga", "Mondeo", "Mustang Mach-E", "Galaxy", "Tourneo", "Transit"},
	"Toyota":        {"Aygo", "Yaris", "Yaris Cross", "Corolla", "C-HR", "RAV4", "Proace"},
	"Nissan":        {"Micra", "Juke", "Qashqai", "X-Trail", "Leaf"},
	"Mazda":         {"Mazda2", "Mazda3", "CX-3", "CX-30", "CX-5", "MX-5"},
	"Hyundai":       {"i10", "i20", "i30", "Bayon", "Kona", "Tucson", "Ioniq 5", "Ioniq 6"},
	"Kia":           {"Picanto", "Rio", "Ceed", "Stonic", "Niro", "Sportage", "EV6", "EV9"},
	"Volvo":         {"XC40", "XC60", "XC90", "V60", "V90", "EX30"},
	"Polestar":      {"Polestar 2", "2"},
	"Tesla":         {"Model 3", "Model Y", "Model S", "Model X"},
	"MG":            {"MG4", "ZS", "HS", "Marvel R"},
	"BYD":           {"Atto 3", "Dolphin", "Seal"},
	"Land Rover":    {"Range Rover Evoque", "Evoque", "Discovery Sport", "Defender"},
	"Jaguar":        {"E-Pace", "F-Pace", "I-Pace"},
	"Porsche":       {"Macan", "Cayenne", "Taycan", "911"},
	"Suzuki":        {"Swift", "Ignis", "Vitara", "S-Cross"},
	"Smart":         {"ForTwo", "ForFour", "#1"},
}

// modelByMake maps make_lower -> model_lower -> canonical model.
var modelByMake map[string]map[string]string

// makeRe matches any alias, longest first so "alfa romeo" beats "alfa".
var makeRe *regexp.Regexp

func init() {
	modelByMake = make(map[string]map[string]string)
	for make_, models := range makeModels {
		lower := strings.ToLower(make_)
		modelByMake[lower] = make(map[string]string)
		for _, m := range models {
			modelByMake[lower][strings.ToLower(m)] = m
		}
	}

	names := make([]string, 0, len(makeAliases))
	for alias := range makeAliases {
		names = append(names, regexp.QuoteMeta(alias))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	makeRe = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(` + strings.Join(names, "|") + `)(?:$|[^\pL\pN])`)
}

// Extract returns the first make mention in a fleet name and the model that
// follows it, or nil when no known make appears.
func Extract(name string) *VehicleMatch {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	loc := makeRe.FindStringSubmatchIndex(name)
	if loc == nil {
		return nil
	}
	makeStr := name[loc[2]:loc[3]]
	canonical := makeAliases[strings.ToLower(makeStr)]
	if canonical == "" {
		return nil
	}

	after := name[loc[3]:]
	model, modelEnd := findModel(canonical, after)
	spanEnd := loc[3]
	if model != "" {
		spanEnd += modelEnd
	}
	return &VehicleMatch{
		Make:  canonical,
		Model: model,
		Span:  strings.TrimSpace(name[loc[2]:spanEnd]),
	}
}

// ExtractMake returns the canonical make in name, or "".
func ExtractMake(name string) string {
	if m := Extract(name); m != nil {
		return m.Make
	}
	return ""
}

// findModel looks for a known model of make_ at the start of after.
func findModel(make_, after string) (model string, end int) {
	models, ok := modelByMake[strings.ToLower(make_)]
	if !ok {
		return "", 0
	}
	trimmed := strings.TrimLeft(after, " \t-")
	offset := len(after) - len(trimmed)
	lower := strings.ToLower(trimmed)

	// Longest first so "Golf Variant" beats "Golf".
	keys := make([]string, 0, len(models))
	for k := range models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if !strings.HasPrefix(lower, k) {
			continue
		}
		if n := len(k); n < len(lower) && isWordByte(lower[n]) {
			continue
		}
		return models[k], offset + len(k)
	}
	return "", 0
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
