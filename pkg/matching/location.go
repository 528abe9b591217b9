package matching

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalize"
)

// LocationPolicy selects how country and city signals combine.
type LocationPolicy string

const (
	// PolicyConjunctive requires country AND city when both sides carry a
	// city, falling back to country-only otherwise.
	PolicyConjunctive LocationPolicy = "conjunctive"
	// PolicyDisjunctive accepts on country OR city.
	PolicyDisjunctive LocationPolicy = "disjunctive"
)

// countryAliases maps spellings seen in lead and CRM data to canonical
// ISO 3166-1 alpha-2 codes. Unmapped values are compared literally.
var countryAliases = map[string]string{
	"pl":          "pl",
	"poland":      "pl",
	"polska":      "pl",
	"de":          "de",
	"germany":     "de",
	"deutschland": "de",
	"es":          "es",
	"spain":       "es",
	"espana":      "es",
	"hr":          "hr",
	"croatia":     "hr",
	"hrvatska":    "hr",
	"it":          "it",
	"italy":       "it",
	"italia":      "it",
}

// Location is the address portion of a lead or candidate.
type Location struct {
	Country string
	City    string
	Address string
}

// LocationResult is the outcome of a location comparison.
type LocationResult struct {
	OK             bool
	CountryMatched bool
	CityMatched    bool
	CityScore      float64
	Details        string
}

// LocationMatcher compares lead and candidate locations.
type LocationMatcher struct {
	scorer *Scorer

	// CityThreshold is the minimum fuzzy ratio for two city names to
	// count as the same city.
	CityThreshold float64
}

// NewLocationMatcher creates a location matcher with the default city
// threshold.
func NewLocationMatcher(scorer *Scorer) *LocationMatcher {
	return &LocationMatcher{
		scorer:        scorer,
		CityThreshold: 90,
	}
}

// CanonicalCountry maps a raw country value to its canonical code.
// Unknown values come back normalized but otherwise untouched.
func (m *LocationMatcher) CanonicalCountry(s string) string {
	key := strings.ToLower(strings.TrimSpace(normalize.StripDiacritics(s)))
	if code, ok := countryAliases[key]; ok {
		return code
	}
	return key
}

// CityScore is the fuzzy ratio of two normalized city names.
func (m *LocationMatcher) CityScore(a, b string) float64 {
	return m.scorer.Ratio(normalize.Text(a), normalize.Text(b))
}

// Match compares two locations under the given policy.
//
// Country comparison is neutral when either side is missing a country:
// absence cannot disprove a match. City comparison falls back to an
// address substring check when the candidate has an address but no city.
func (m *LocationMatcher) Match(lead, cand Location, policy LocationPolicy) LocationResult {
	res := LocationResult{}

	leadCountry := m.CanonicalCountry(lead.Country)
	candCountry := m.CanonicalCountry(cand.Country)
	countryKnown := leadCountry != "" && candCountry != ""
	res.CountryMatched = countryKnown && leadCountry == candCountry
	countryOK := res.CountryMatched || !countryKnown

	leadCity := normalize.Text(lead.City)
	candCity := normalize.Text(cand.City)
	bothCities := leadCity != "" && candCity != ""
	if bothCities {
		res.CityScore = m.scorer.Ratio(leadCity, candCity)
		res.CityMatched = res.CityScore >= m.CityThreshold
	} else if leadCity != "" && cand.Address != "" {
		// CRM deals often carry the city only inside the street address.
		if strings.Contains(normalize.Text(cand.Address), leadCity) {
			res.CityMatched = true
			res.CityScore = 100
		}
	}

	switch policy {
	case PolicyDisjunctive:
		res.OK = res.CountryMatched || res.CityMatched
	default:
		if bothCities {
			res.OK = countryOK && res.CityMatched
		} else {
			res.OK = countryOK
		}
	}

	res.Details = fmt.Sprintf("country=%s:%s city_score=%.1f policy=%s", leadCountry, candCountry, res.CityScore, policy)
	return res
}
