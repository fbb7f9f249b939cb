// Package history derives descriptive era context for a (time, place) pair.
// Everything here is pure: same inputs always yield the same string, no I/O.
package history

import (
	"strings"

	"chronoscope/pkg/model"
)

// regionRule appends a fragment when any of its keywords occurs in the
// location name (case-insensitive substring match).
type regionRule struct {
	keywords []string
	fragment string
}

// eraBand covers signed years in [from, to). Bands are ordered and
// non-overlapping; BCE years are negative on this axis.
type eraBand struct {
	from, to int
	base     string
	regions  []regionRule
}

const (
	minYear = -1 << 30
	maxYear = 1 << 30
)

var bands = []eraBand{
	{
		from: minYear, to: 500,
		base: "Ancient civilizations, early settlements, primitive architecture",
		regions: []regionRule{
			{[]string{"rome", "italy"}, "Roman Empire influence, classical architecture, forums and temples"},
			{[]string{"egypt"}, "Pharaonic era, pyramids, hieroglyphics, Nile civilization"},
			{[]string{"greece"}, "Classical Greek period, philosophy, democracy, marble temples"},
			{[]string{"china"}, "Ancient dynasties, Great Wall construction, silk road trade"},
		},
	},
	{
		from: 500, to: 1500,
		base: "Medieval era, castles and fortifications, feudal society",
		regions: []regionRule{
			{[]string{"europe"}, "Gothic architecture, knights, monasteries, walled cities"},
			{[]string{"england", "britain"}, "Norman conquest influence, medieval villages, stone churches"},
			{[]string{"middle east", "jerusalem"}, "Crusades era, Islamic golden age, ancient trade routes"},
		},
	},
	{
		from: 1500, to: 1800,
		base: "Renaissance and early modern period, exploration and discovery",
		regions: []regionRule{
			{[]string{"italy"}, "Renaissance art and architecture, merchant republics, baroque style"},
			{[]string{"america"}, "Colonial settlements, indigenous peoples, early European influence"},
			{[]string{"england", "london"}, "Tudor and Stuart periods, Shakespeare era, early industrialization"},
		},
	},
	{
		from: 1800, to: 1900,
		base: "Industrial revolution, steam power, rapid urbanization",
		regions: []regionRule{
			{[]string{"england", "london"}, "Victorian era, factories, gas lighting, cobblestone streets"},
			{[]string{"america", "united states"}, "Westward expansion, Civil War era, railroad construction"},
		},
	},
	{
		from: 1900, to: maxYear,
		base: "Modern era, technological advancement, contemporary architecture",
	},
}

// Sub-bands refine the modern era.
var modernBands = []eraBand{
	{from: 1900, to: 1950, base: "Early 20th century, World Wars impact, art deco style"},
	{from: 1950, to: 2000, base: "Post-war reconstruction, modernist architecture, automobile culture"},
	{from: 2000, to: maxYear, base: "Contemporary period, digital age, sustainable design"},
}

const fallback = "Historical period with period-appropriate architecture and daily life"

// ResolveContext maps a time selection and a location name to descriptive
// context fragments joined with ". ". BCE years classify as negative signed
// years, so 1 BCE and 1 CE sit on the same side of every band boundary.
func ResolveContext(t model.TimeSelection, locationName string) string {
	year := t.SignedYear()
	lower := strings.ToLower(locationName)

	var fragments []string
	for _, b := range bands {
		if year < b.from || year >= b.to {
			continue
		}
		fragments = append(fragments, b.base)
		for _, r := range b.regions {
			for _, kw := range r.keywords {
				if strings.Contains(lower, kw) {
					fragments = append(fragments, r.fragment)
					break
				}
			}
		}
		break
	}

	if year >= 1900 {
		for _, b := range modernBands {
			if year >= b.from && year < b.to {
				fragments = append(fragments, b.base)
				break
			}
		}
	}

	if len(fragments) == 0 {
		return fallback
	}
	return strings.Join(fragments, ". ")
}
