package scoring

// Habitat bounds the conditions under which a fishing spot stays safe.
// Ocean presets are keyed by shoreline structure, freshwater presets by
// body type; wave limits on freshwater bodies are wind-chop estimates.
type Habitat struct {
	Name          string
	MaxWindSpeed  float64
	MaxGustSpeed  float64
	MaxWaveHeight float64
}

// DefaultHabitat is used when no preset matches the configured name.
const DefaultHabitat = "rocky_point"

var habitatPresets = map[string]Habitat{
	"open_beach": {
		Name:          "Open Sandy Beach",
		MaxWindSpeed:  25,
		MaxGustSpeed:  40,
		MaxWaveHeight: 2.0,
	},
	"rocky_point": {
		Name:          "Rocky Point/Reef",
		MaxWindSpeed:  30,
		MaxGustSpeed:  45,
		MaxWaveHeight: 3.0,
	},
	"harbour": {
		Name:          "Harbour/Breakwater",
		MaxWindSpeed:  35,
		MaxGustSpeed:  50,
		MaxWaveHeight: 1.5,
	},
	"reef": {
		Name:          "Offshore Reef",
		MaxWindSpeed:  20,
		MaxGustSpeed:  35,
		MaxWaveHeight: 2.5,
	},
	"lake": {
		Name:          "Lake",
		MaxWindSpeed:  25,
		MaxGustSpeed:  40,
		MaxWaveHeight: 0.5,
	},
	"river": {
		Name:          "River",
		MaxWindSpeed:  30,
		MaxGustSpeed:  45,
		MaxWaveHeight: 0.3,
	},
	"pond": {
		Name:          "Pond",
		MaxWindSpeed:  35,
		MaxGustSpeed:  50,
		MaxWaveHeight: 0.2,
	},
	"reservoir": {
		Name:          "Reservoir",
		MaxWindSpeed:  25,
		MaxGustSpeed:  40,
		MaxWaveHeight: 0.5,
	},
}

// HabitatFor resolves a preset name, falling back to rocky_point.
func HabitatFor(name string) Habitat {
	if h, ok := habitatPresets[name]; ok {
		return h
	}
	return habitatPresets[DefaultHabitat]
}
