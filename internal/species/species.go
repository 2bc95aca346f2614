// Package species loads the embedded fish species catalog and resolves
// per-species scoring profiles with a safe fallback when a requested
// species is unknown.
package species

import (
	_ "embed"
	"encoding/json"
	"sort"
	"sync"

	errs "github.com/fishcast/fishcast-go/internal/errors"
)

//go:embed species_profiles.json
var embeddedProfiles []byte

// FallbackVersion marks a catalog built from the hardcoded fallback
// profile rather than the embedded JSON.
const FallbackVersion = "1.0.0-fallback"

// FallbackSpeciesID is returned when no requested species resolves.
const FallbackSpeciesID = "general_mixed"

// Profile describes how a single species responds to conditions. Ocean
// fields (tide, light, waves) are zero-valued for freshwater species.
type Profile struct {
	ID                 string    `json:"-"`
	Name               string    `json:"name"`
	WaterType          string    `json:"water_type"`
	TempRange          []float64 `json:"temp_range"`
	OptimalTempRange   []float64 `json:"optimal_temp_range"`
	IdealCloud         *float64  `json:"ideal_cloud"`
	PrefersLowPressure bool      `json:"prefers_low_pressure"`
	ActiveMonths       []int     `json:"active_months"`
	BestTide           string    `json:"best_tide"`
	LightPreference    string    `json:"light_preference"`
	CloudBonus         float64   `json:"cloud_bonus"`
	WavePreference     string    `json:"wave_preference"`
	WaveBonus          bool      `json:"wave_bonus"`
}

// TempMin returns the lower survivable temperature bound.
func (p Profile) TempMin() float64 { return rangeAt(p.TempRange, 0, 0) }

// TempMax returns the upper survivable temperature bound.
func (p Profile) TempMax() float64 { return rangeAt(p.TempRange, 1, 30) }

// OptimalMin returns the lower bound of the preferred temperature band.
func (p Profile) OptimalMin() float64 { return rangeAt(p.OptimalTempRange, 0, 15) }

// OptimalMax returns the upper bound of the preferred temperature band.
func (p Profile) OptimalMax() float64 { return rangeAt(p.OptimalTempRange, 1, 25) }

// ActiveInMonth reports whether month (1..12) falls in the species'
// active season. An empty month list means always active.
func (p Profile) ActiveInMonth(month int) bool {
	if len(p.ActiveMonths) == 0 {
		return true
	}
	for _, m := range p.ActiveMonths {
		if m == month {
			return true
		}
	}
	return false
}

func rangeAt(r []float64, idx int, def float64) float64 {
	if idx < len(r) {
		return r[idx]
	}
	return def
}

// Region groups species profiles by geography.
type Region struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Species     map[string]Profile `json:"species"`
}

// Catalog holds every region's profiles with fallback resolution.
type Catalog struct {
	Version string            `json:"version"`
	Regions map[string]Region `json:"regions"`
}

var (
	loadOnce    sync.Once
	loadedCat   *Catalog
	loadedErr   error
	fallbackCat = fallbackCatalog()
)

// Load parses the embedded catalog once. On a parse failure it returns
// the hardcoded fallback catalog alongside the error so callers can
// keep operating.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		cat := &Catalog{}
		if err := json.Unmarshal(embeddedProfiles, cat); err != nil {
			loadedErr = errs.New(err).
				Component("species").
				Category(errs.CategoryFileParsing).
				Context("operation", "load_species_catalog").
				Build()
			loadedCat = fallbackCat
			return
		}
		for rid, region := range cat.Regions {
			for sid, prof := range region.Species {
				prof.ID = sid
				cat.Regions[rid].Species[sid] = prof
			}
		}
		loadedCat = cat
	})
	return loadedCat, loadedErr
}

func fallbackCatalog() *Catalog {
	fb := Fallback()
	return &Catalog{
		Version: FallbackVersion,
		Regions: map[string]Region{
			"global": {
				Name:    "Global",
				Species: map[string]Profile{fb.ID: fb},
			},
		},
	}
}

// Fallback returns the profile used when a species cannot be resolved.
func Fallback() Profile {
	return Profile{
		ID:               FallbackSpeciesID,
		Name:             "General mixed fishing",
		WaterType:        "any",
		TempRange:        []float64{5, 30},
		OptimalTempRange: []float64{15, 25},
		IdealCloud:       floatPtr(50),
		ActiveMonths:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		BestTide:         "moving",
		LightPreference:  "dawn_dusk",
		CloudBonus:       0.5,
		WavePreference:   "moderate",
	}
}

func floatPtr(v float64) *float64 { return &v }

// Get looks up a species by id, preferring the named region and then
// searching every other region in stable order.
func (c *Catalog) Get(id, preferredRegion string) (Profile, bool) {
	if id == "" {
		return Profile{}, false
	}
	if region, ok := c.Regions[preferredRegion]; ok {
		if prof, ok := region.Species[id]; ok {
			return prof, true
		}
	}
	for _, rid := range c.regionIDs() {
		if rid == preferredRegion {
			continue
		}
		if prof, ok := c.Regions[rid].Species[id]; ok {
			return prof, true
		}
	}
	return Profile{}, false
}

// GetProfile resolves a species id to a profile, returning the general
// fallback profile when the id is unknown.
func (c *Catalog) GetProfile(id, preferredRegion string) Profile {
	if prof, ok := c.Get(id, preferredRegion); ok {
		return prof
	}
	return Fallback()
}

// ByRegion returns the profiles of one region sorted by species id.
func (c *Catalog) ByRegion(regionID string) []Profile {
	region, ok := c.Regions[regionID]
	if !ok {
		return nil
	}
	out := make([]Profile, 0, len(region.Species))
	for _, prof := range region.Species {
		out = append(out, prof)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) regionIDs() []string {
	ids := make([]string, 0, len(c.Regions))
	for id := range c.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve maps the configured species ids to profiles, substituting the
// fallback profile when none resolve so scoring always has a target.
func (c *Catalog) Resolve(ids []string, preferredRegion string) []Profile {
	var out []Profile
	for _, id := range ids {
		if prof, ok := c.Get(id, preferredRegion); ok {
			out = append(out, prof)
		}
	}
	if len(out) == 0 {
		out = append(out, Fallback())
	}
	return out
}

// Aggregate combines several profiles into one scoring target by
// averaging their temperature bounds. Tide, light and wave preferences
// come from the first profile since they do not average meaningfully.
func Aggregate(profiles []Profile) Profile {
	if len(profiles) == 0 {
		return Fallback()
	}
	if len(profiles) == 1 {
		return profiles[0]
	}
	agg := profiles[0]
	agg.ID = "aggregate"
	agg.Name = "Aggregate target"
	var tMin, tMax, oMin, oMax float64
	months := map[int]bool{}
	for _, p := range profiles {
		tMin += p.TempMin()
		tMax += p.TempMax()
		oMin += p.OptimalMin()
		oMax += p.OptimalMax()
		for _, m := range p.ActiveMonths {
			months[m] = true
		}
	}
	n := float64(len(profiles))
	agg.TempRange = []float64{tMin / n, tMax / n}
	agg.OptimalTempRange = []float64{oMin / n, oMax / n}
	agg.ActiveMonths = make([]int, 0, len(months))
	for m := 1; m <= 12; m++ {
		if months[m] {
			agg.ActiveMonths = append(agg.ActiveMonths, m)
		}
	}
	return agg
}
