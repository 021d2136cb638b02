package tax

import "strings"

// Rate is one VAT band for a jurisdiction.
type Rate struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// Resolver returns the VAT bands that apply in a jurisdiction.
type Resolver interface {
	RatesFor(countryCode string) []Rate
}

// ratesByCountry is the static jurisdiction table. An unknown country code
// resolves to an empty set; picking a fallback rate is the caller's job.
var ratesByCountry = map[string][]Rate{
	"CH": {
		{Percent: 8.1, Label: "Standard rate"},
		{Percent: 2.6, Label: "Reduced rate"},
	},
	"DE": {
		{Percent: 19, Label: "Regelsteuersatz"},
		{Percent: 7, Label: "Ermäßigter Steuersatz"},
	},
	"AT": {
		{Percent: 20, Label: "Normalsteuersatz"},
		{Percent: 10, Label: "Ermäßigter Steuersatz"},
	},
	"FR": {
		{Percent: 20, Label: "Taux normal"},
		{Percent: 5.5, Label: "Taux réduit"},
	},
}

type tableResolver struct{}

// NewResolver returns the static table-backed resolver.
func NewResolver() Resolver { return tableResolver{} }

func (tableResolver) RatesFor(countryCode string) []Rate {
	rates, ok := ratesByCountry[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return nil
	}
	out := make([]Rate, len(rates))
	copy(out, rates)
	return out
}
