// Package lifesupport estimates daily consumable needs for a habitat crew.
package lifesupport

import "strconv"

// Per-person daily consumption rates.
const (
	OxygenKgPerDay = 0.84 // kg O2
	WaterLPerDay   = 2.5  // liters
	FoodKgPerDay   = 0.62 // kg dry mass
)

// Estimate holds daily consumption figures for a crew.
type Estimate struct {
	Crew   int     `json:"crew"`
	Oxygen float64 `json:"oxygen"` // kg/day
	Water  float64 `json:"water"`  // L/day
	Food   float64 `json:"food"`   // kg/day
}

// ForCrew computes the daily consumption estimate for crew people.
// Negative crew counts are treated as zero.
func ForCrew(crew int) Estimate {
	if crew < 0 {
		crew = 0
	}
	c := float64(crew)
	return Estimate{
		Crew:   crew,
		Oxygen: c * OxygenKgPerDay,
		Water:  c * WaterLPerDay,
		Food:   c * FoodKgPerDay,
	}
}

// Display is the two-decimal string form of an estimate, ready for the
// sidebar readout.
type Display struct {
	Oxygen string `json:"oxygen"`
	Water  string `json:"water"`
	Food   string `json:"food"`
}

// Display formats each figure with exactly two decimal places.
func (e Estimate) Display() Display {
	return Display{
		Oxygen: format2(e.Oxygen),
		Water:  format2(e.Water),
		Food:   format2(e.Food),
	}
}

func format2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
