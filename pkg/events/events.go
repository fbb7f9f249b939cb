// Package events holds the curated catalog of notable historical moments
// used to pre-fill a scene. The catalog is read-only reference data.
package events

import (
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"chronoscope/pkg/model"
)

var catalog = []model.NotableEvent{
	// Halloween-themed events
	{
		ID:   "salem-witch-trials-1692",
		Name: "Salem Witch Trials",
		Description: "The infamous witch trials in colonial Massachusetts, where mass hysteria " +
			"led to the execution of 20 people accused of witchcraft.",
		Location: model.Coordinates{Latitude: 42.5195, Longitude: -70.8967, Name: "Salem, Massachusetts"},
		Time:     model.TimeSelection{Year: 1692, Month: 6, Era: model.EraCE, DisplayName: "June 1692 CE"},
		Tags:     []string{"halloween", "colonial", "witch-trials", "america"},
	},
	{
		ID:   "whitechapel-ripper-1888",
		Name: "Jack the Ripper Era",
		Description: "The dark streets of Whitechapel during the infamous Jack the Ripper " +
			"murders that terrorized Victorian London.",
		Location: model.Coordinates{Latitude: 51.5194, Longitude: -0.0601, Name: "Whitechapel, London"},
		Time:     model.TimeSelection{Year: 1888, Month: 9, Era: model.EraCE, DisplayName: "September 1888 CE"},
		Tags:     []string{"halloween", "victorian", "london", "mystery"},
	},
	{
		ID:   "bran-castle-medieval",
		Name: "Dracula's Castle",
		Description: "Bran Castle in Transylvania during medieval times, the legendary " +
			"inspiration for Bram Stoker's Dracula.",
		Location: model.Coordinates{Latitude: 45.515, Longitude: 25.3673, Name: "Bran Castle, Romania"},
		Time:     model.TimeSelection{Year: 1450, Era: model.EraCE, DisplayName: "1450 CE"},
		Tags:     []string{"halloween", "medieval", "castle", "dracula", "romania"},
	},
	{
		ID:   "day-of-dead-origins",
		Name: "Day of the Dead Origins",
		Description: "Ancient Aztec celebration honoring the dead, the precursor to modern " +
			"Día de los Muertos traditions.",
		Location: model.Coordinates{Latitude: 19.4326, Longitude: -99.1332, Name: "Tenochtitlan (Mexico City)"},
		Time:     model.TimeSelection{Year: 1400, Era: model.EraCE, DisplayName: "1400 CE"},
		Tags:     []string{"halloween", "aztec", "mexico", "celebration", "ancient"},
	},
	{
		ID:   "edinburgh-vaults-1780",
		Name: "Edinburgh's Haunted Vaults",
		Description: "The underground vaults beneath Edinburgh's South Bridge, home to the " +
			"city's poorest residents and now considered one of the most haunted locations in Scotland.",
		Location: model.Coordinates{Latitude: 55.9486, Longitude: -3.1864, Name: "Edinburgh, Scotland"},
		Time:     model.TimeSelection{Year: 1780, Era: model.EraCE, DisplayName: "1780 CE"},
		Tags:     []string{"halloween", "scotland", "underground", "haunted"},
	},
	{
		ID:   "paris-catacombs-1785",
		Name: "Catacombs of Paris",
		Description: "The ossuary beneath Paris streets, where millions of skeletal remains " +
			"were transferred from overflowing cemeteries.",
		Location: model.Coordinates{Latitude: 48.8338, Longitude: 2.3324, Name: "Paris, France"},
		Time:     model.TimeSelection{Year: 1785, Era: model.EraCE, DisplayName: "1785 CE"},
		Tags:     []string{"halloween", "paris", "catacombs", "underground"},
	},
	{
		ID:   "black-death-london-1348",
		Name: "Black Death in London",
		Description: "London during the devastating bubonic plague pandemic, with plague " +
			"doctors in their distinctive beaked masks treating the afflicted.",
		Location: model.Coordinates{Latitude: 51.5074, Longitude: -0.1278, Name: "London, England"},
		Time:     model.TimeSelection{Year: 1348, Era: model.EraCE, DisplayName: "1348 CE"},
		Tags:     []string{"halloween", "plague", "medieval", "london", "pandemic"},
	},
	{
		ID:   "egyptian-mummification-1250bce",
		Name: "Ancient Egyptian Mummification",
		Description: "The sacred process of mummification in ancient Egypt, preparing " +
			"pharaohs for their journey to the afterlife.",
		Location: model.Coordinates{Latitude: 25.7189, Longitude: 32.6573, Name: "Valley of the Kings, Egypt"},
		Time:     model.TimeSelection{Year: 1250, Era: model.EraBCE, DisplayName: "1250 BCE"},
		Tags:     []string{"halloween", "ancient", "egypt", "mummification", "pharaoh"},
	},

	// Ancient civilizations
	{
		ID:   "rome-colosseum-80ce",
		Name: "Colosseum Opening",
		Description: "The grand opening of the Flavian Amphitheatre in Rome, with 100 days " +
			"of spectacular games and gladiatorial combat.",
		Location: model.Coordinates{Latitude: 41.8902, Longitude: 12.4922, Name: "Rome, Italy"},
		Time:     model.TimeSelection{Year: 80, Era: model.EraCE, DisplayName: "80 CE"},
		Tags:     []string{"ancient", "rome", "architecture", "gladiators"},
	},
	{
		ID:   "great-pyramid-construction-2560bce",
		Name: "Great Pyramid Construction",
		Description: "The construction of the Great Pyramid of Giza, one of the Seven " +
			"Wonders of the Ancient World.",
		Location: model.Coordinates{Latitude: 29.9792, Longitude: 31.1342, Name: "Giza, Egypt"},
		Time:     model.TimeSelection{Year: 2560, Era: model.EraBCE, DisplayName: "2560 BCE"},
		Tags:     []string{"ancient", "egypt", "architecture", "wonder"},
	},
	{
		ID:   "parthenon-construction-432bce",
		Name: "Parthenon Completion",
		Description: "The completion of the Parthenon temple on the Athenian Acropolis, " +
			"dedicated to the goddess Athena.",
		Location: model.Coordinates{Latitude: 37.9715, Longitude: 23.7267, Name: "Athens, Greece"},
		Time:     model.TimeSelection{Year: 432, Era: model.EraBCE, DisplayName: "432 BCE"},
		Tags:     []string{"ancient", "greece", "architecture", "temple"},
	},
	{
		ID:   "great-wall-construction-220bce",
		Name: "Great Wall of China",
		Description: "The unification and expansion of defensive walls into the Great Wall " +
			"during the Qin Dynasty.",
		Location: model.Coordinates{Latitude: 40.4319, Longitude: 116.5704, Name: "Badaling, China"},
		Time:     model.TimeSelection{Year: 220, Era: model.EraBCE, DisplayName: "220 BCE"},
		Tags:     []string{"ancient", "china", "architecture", "defense"},
	},

	// Medieval period
	{
		ID:   "viking-lindisfarne-793",
		Name: "Viking Raid on Lindisfarne",
		Description: "The first major Viking raid on the monastery of Lindisfarne, marking " +
			"the beginning of the Viking Age.",
		Location: model.Coordinates{Latitude: 55.6689, Longitude: -1.7975, Name: "Lindisfarne, England"},
		Time:     model.TimeSelection{Year: 793, Era: model.EraCE, DisplayName: "793 CE"},
		Tags:     []string{"medieval", "viking", "raid", "monastery"},
	},
	{
		ID:   "battle-hastings-1066",
		Name: "Battle of Hastings",
		Description: "The decisive Norman victory over the Anglo-Saxons that changed the " +
			"course of English history.",
		Location: model.Coordinates{Latitude: 50.9115, Longitude: 0.4915, Name: "Hastings, England"},
		Time: model.TimeSelection{Year: 1066, Month: 10, Day: 14, Era: model.EraCE,
			DisplayName: "October 14, 1066 CE"},
		Tags: []string{"medieval", "battle", "norman", "england"},
	},
	{
		ID:   "silk-road-peak-1200",
		Name: "Silk Road at Its Peak",
		Description: "The bustling trade routes of the Silk Road during the Mongol Empire, " +
			"connecting East and West.",
		Location: model.Coordinates{Latitude: 39.9042, Longitude: 116.4074, Name: "Beijing, China"},
		Time:     model.TimeSelection{Year: 1200, Era: model.EraCE, DisplayName: "1200 CE"},
		Tags:     []string{"medieval", "trade", "silk-road", "mongol"},
	},

	// Renaissance
	{
		ID:   "florence-renaissance-1450",
		Name: "Florence Renaissance",
		Description: "Florence at the height of the Renaissance, with artists like " +
			"Botticelli and architects like Brunelleschi transforming the city.",
		Location: model.Coordinates{Latitude: 43.7696, Longitude: 11.2558, Name: "Florence, Italy"},
		Time:     model.TimeSelection{Year: 1450, Era: model.EraCE, DisplayName: "1450 CE"},
		Tags:     []string{"renaissance", "art", "florence", "italy"},
	},
	{
		ID:   "constantinople-fall-1453",
		Name: "Fall of Constantinople",
		Description: "The Ottoman conquest of Constantinople, marking the end of the " +
			"Byzantine Empire and the Middle Ages.",
		Location: model.Coordinates{Latitude: 41.0082, Longitude: 28.9784, Name: "Istanbul (Constantinople), Turkey"},
		Time: model.TimeSelection{Year: 1453, Month: 5, Day: 29, Era: model.EraCE,
			DisplayName: "May 29, 1453 CE"},
		Tags: []string{"renaissance", "siege", "ottoman", "byzantine"},
	},

	// Age of Exploration
	{
		ID:   "columbus-landing-1492",
		Name: "Columbus's Landing",
		Description: "Christopher Columbus landing in the Americas, initiating European " +
			"exploration of the New World.",
		Location: model.Coordinates{Latitude: 24.0, Longitude: -74.5, Name: "San Salvador, Bahamas"},
		Time: model.TimeSelection{Year: 1492, Month: 10, Day: 12, Era: model.EraCE,
			DisplayName: "October 12, 1492 CE"},
		Tags: []string{"exploration", "columbus", "americas", "discovery"},
	},
	{
		ID:          "machu-picchu-peak-1500",
		Name:        "Machu Picchu at Its Peak",
		Description: "The Incan citadel of Machu Picchu during its prime, before Spanish conquest.",
		Location:    model.Coordinates{Latitude: -13.1631, Longitude: -72.545, Name: "Machu Picchu, Peru"},
		Time:        model.TimeSelection{Year: 1500, Era: model.EraCE, DisplayName: "1500 CE"},
		Tags:        []string{"inca", "peru", "architecture", "pre-columbian"},
	},

	// Industrial Revolution
	{
		ID:   "london-industrial-1850",
		Name: "Industrial Revolution London",
		Description: "Victorian London at the height of the Industrial Revolution, with " +
			"factories, steam engines, and rapid urbanization.",
		Location: model.Coordinates{Latitude: 51.5074, Longitude: -0.1278, Name: "London, England"},
		Time:     model.TimeSelection{Year: 1850, Era: model.EraCE, DisplayName: "1850 CE"},
		Tags:     []string{"industrial", "victorian", "london", "technology"},
	},

	// Modern history
	{
		ID:   "moon-landing-1969",
		Name: "Apollo 11 Moon Landing",
		Description: "The historic moment when humanity first set foot on the Moon at the " +
			"Sea of Tranquility.",
		Location: model.Coordinates{Latitude: 0.6744, Longitude: 23.4731, Name: "Sea of Tranquility, Moon"},
		Time: model.TimeSelection{Year: 1969, Month: 7, Day: 20, Era: model.EraCE,
			DisplayName: "July 20, 1969 CE"},
		Tags: []string{"modern", "space", "moon", "apollo", "nasa"},
	},
}

// All returns the full catalog.
func All() []model.NotableEvent {
	out := make([]model.NotableEvent, len(catalog))
	copy(out, catalog)
	return out
}

// ByID returns the event with the given ID, or false.
func ByID(id string) (model.NotableEvent, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return model.NotableEvent{}, false
}

// Random picks one event using the provided source. A nil source uses the
// shared global generator.
func Random(rng *rand.Rand) model.NotableEvent {
	if rng == nil {
		return catalog[rand.Intn(len(catalog))]
	}
	return catalog[rng.Intn(len(catalog))]
}

// WithTag returns all events carrying the tag.
func WithTag(tag string) []model.NotableEvent {
	var out []model.NotableEvent
	for _, e := range catalog {
		for _, t := range e.Tags {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Nearest returns up to limit events ordered by great-circle distance from
// the given coordinates.
func Nearest(coords model.Coordinates, limit int) []model.NotableEvent {
	if limit <= 0 || limit > len(catalog) {
		limit = len(catalog)
	}

	origin := orb.Point{coords.Longitude, coords.Latitude}
	type scored struct {
		event model.NotableEvent
		dist  float64
	}
	list := make([]scored, 0, len(catalog))
	for _, e := range catalog {
		p := orb.Point{e.Location.Longitude, e.Location.Latitude}
		list = append(list, scored{event: e, dist: geo.DistanceHaversine(origin, p)})
	}
	// Stable keeps catalog order for events at the same coordinates.
	sort.SliceStable(list, func(i, j int) bool { return list[i].dist < list[j].dist })

	out := make([]model.NotableEvent, 0, limit)
	for _, s := range list[:limit] {
		out = append(out, s.event)
	}
	return out
}
