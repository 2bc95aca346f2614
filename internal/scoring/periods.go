package scoring

import "fmt"

// Period is a named slice of a day. EndHour 24 means midnight of the
// next day; a period with EndHour < StartHour wraps past midnight.
type Period struct {
	Name      string
	StartHour int
	EndHour   int
}

// Hours renders the period's display range, e.g. "06:00-12:00".
func (p Period) Hours() string {
	return fmt.Sprintf("%02d:00-%02d:00", p.StartHour, p.EndHour)
}

// Wraps reports whether the period crosses midnight.
func (p Period) Wraps() bool { return p.EndHour < p.StartHour }

// Contains reports whether local hour h falls inside the period.
func (p Period) Contains(h int) bool {
	if p.Wraps() {
		return h >= p.StartHour || h < p.EndHour
	}
	return h >= p.StartHour && h < p.EndHour
}

// Ocean days split into four fixed six-hour blocks; night covers the
// coming early morning and is always kept for "today".
var oceanPeriods = []Period{
	{Name: "morning", StartHour: 6, EndHour: 12},
	{Name: "afternoon", StartHour: 12, EndHour: 18},
	{Name: "evening", StartHour: 18, EndHour: 24},
	{Name: "night", StartHour: 0, EndHour: 6},
}

// Freshwater days end earlier; the night block wraps midnight.
var freshwaterPeriods = []Period{
	{Name: "morning", StartHour: 6, EndHour: 12},
	{Name: "afternoon", StartHour: 12, EndHour: 18},
	{Name: "evening", StartHour: 18, EndHour: 22},
	{Name: "night", StartHour: 22, EndHour: 6},
}

// OceanPeriods returns the ocean full-day period set.
func OceanPeriods() []Period { return oceanPeriods }

// FreshwaterPeriods returns the freshwater full-day period set.
func FreshwaterPeriods() []Period { return freshwaterPeriods }
